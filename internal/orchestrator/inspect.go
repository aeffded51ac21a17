package orchestrator

import (
	"context"
	"fmt"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/parser/operation"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/scraper"
)

// InspectType synthesizes a single type specification as written inside declaring.
// Notices go to the configured observer.
func (s *Service) InspectType(ctx context.Context, scr scraper.Scraper, declaring, typeSpec string) (*schema.Schema, error) {
	r := newRun(s.config.Observer)
	p, err := s.pipeline(ctx, scr, r)
	if err != nil {
		return nil, err
	}

	sch, _ := p.types.Synthesize(declaring, typeSpec, nil, false)
	if sch == nil {
		return nil, fmt.Errorf("type %q has no schema", typeSpec)
	}
	return sch, nil
}

// InspectHandler synthesizes the operation of a single endpoint without assembling a
// document around it.
func (s *Service) InspectHandler(ctx context.Context, scr scraper.Scraper, endpoint *domain.Endpoint) (*operation.Operation, error) {
	r := newRun(s.config.Observer)
	r.endpoint = endpoint

	p, err := s.pipeline(ctx, scr, r)
	if err != nil {
		return nil, err
	}

	method, err := p.introspector.Method(endpoint.Callback.Type, endpoint.Callback.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", endpoint.Callback, err)
	}
	return p.operations.Synthesize(endpoint, method)
}
