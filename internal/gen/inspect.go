package gen

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/spec"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/schema"
)

// InspectType synthesizes one type specification, written as if inside declaring, and
// returns its schema in Swagger 2.0 form.
func (g *Gen) InspectType(ctx context.Context, config *Config, declaring, typeSpec string) (*spec.Schema, error) {
	if config.Debugger != nil {
		g.debug = config.Debugger
	}

	orc, scr, err := g.prepare(config)
	if err != nil {
		return nil, err
	}
	if _, err := scr.Scrape(ctx, g.root(config)); err != nil {
		return nil, err
	}

	sch, err := orc.InspectType(ctx, scr, declaring, typeSpec)
	if err != nil {
		return nil, err
	}
	return schema.ToSwagger(sch), nil
}

// InspectHandler synthesizes the operation of one handler, named as Type.Method or as a
// function. A scraped endpoint of that handler lends its route, tags and security.
func (g *Gen) InspectHandler(ctx context.Context, config *Config, handler string) (*openapi3.Operation, error) {
	if config.Debugger != nil {
		g.debug = config.Debugger
	}

	orc, scr, err := g.prepare(config)
	if err != nil {
		return nil, err
	}
	specs, err := scr.Scrape(ctx, g.root(config))
	if err != nil {
		return nil, err
	}

	endpoint := findEndpoint(specs, handler)
	if endpoint == nil {
		callback, err := ParseHandler(handler)
		if err != nil {
			return nil, err
		}
		endpoint = &domain.Endpoint{ID: "/", Callback: callback}
	}

	op, err := orc.InspectHandler(ctx, scr, endpoint)
	if err != nil {
		return nil, err
	}
	return op.ToOpenAPI(), nil
}

func findEndpoint(specs []*domain.Specification, handler string) *domain.Endpoint {
	for _, s := range specs {
		for _, endpoint := range s.Endpoints {
			if endpoint.Callback.String() == handler {
				return endpoint
			}
		}
	}
	return nil
}

// ParseHandler splits a handler name into its callback. The last path element holds
// "pkg.Type.Method" for methods and "pkg.Func" for functions.
func ParseHandler(handler string) (domain.Callback, error) {
	base := handler[strings.LastIndex(handler, "/")+1:]
	switch strings.Count(base, ".") {
	case 1:
		return domain.Callback{Method: handler}, nil
	case 2:
		dot := strings.LastIndex(handler, ".")
		return domain.Callback{Type: handler[:dot], Method: handler[dot+1:]}, nil
	default:
		return domain.Callback{}, fmt.Errorf("invalid handler %q, expected pkg.Type.Method or pkg.Func", handler)
	}
}
