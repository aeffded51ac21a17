package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/introspect/source"
	"github.com/griffnb/core-openapi/internal/loader"
	"github.com/griffnb/core-openapi/internal/parser/base"
	"github.com/griffnb/core-openapi/internal/registry"
)

// DefaultVersion is the version of handlers without @Version.
const DefaultVersion = "v1"

var (
	routerPattern          = regexp.MustCompile(`^(/[\w./\-{}\(\)+:$~]*)[[:blank:]]+\[(\w+)]`)
	securityPairSepPattern = regexp.MustCompile(`\|\||&&`)

	validMethods = map[string]bool{
		"GET": true, "POST": true, "PUT": true, "DELETE": true,
		"PATCH": true, "HEAD": true, "OPTIONS": true,
	}
)

// ErrNotScraped is returned by Introspector before Scrape ran.
var ErrNotScraped = errors.New("sources have not been scraped")

// Annotations scrapes Go sources. General API comments (@title, @version, @server,
// @securityDefinitions.*) declare specifications; functions and methods documented with
// @Router become their endpoints:
//
//	// GetUser returns one user.
//	// @Router  /users/{id} [get]
//	// @Tags    users
//	// @Security Token
//	// @Version v1
//	// @Wrapper Envelope data
//	// @return models.User
//	func (c *Users) GetUser(id int) {}
type Annotations struct {
	// DefaultVersion applies to handlers without @Version, DefaultVersion when empty
	DefaultVersion string

	// MarkdownFileDir holds the files of @description.markdown and @tag.description.markdown
	MarkdownFileDir string

	LoaderOptions []loader.Option
	SourceOptions []source.Option
	Debug         Debugger

	registry *registry.Service
}

// Debugger provides debug logging interface.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// handler is the annotation set of one documented function.
type handler struct {
	routes   []route
	tags     []string
	security []string
	version  string
	wrapper  *domain.ResultWrapper
}

type route struct {
	path   string
	method string
}

// Scrape loads and indexes the Go packages under root and lists their specifications.
func (a *Annotations) Scrape(ctx context.Context, root string) ([]*domain.Specification, error) {
	debug := a.debugger()

	options := append([]loader.Option{loader.WithDebugger(debug)}, a.LoaderOptions...)
	result, err := loader.NewService(options...).Load(ctx, []string{root})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", root, err)
	}

	reg := registry.NewService()
	reg.SetDebugger(debug)
	reg.Collect(result)
	a.registry = reg

	return a.specifications(reg)
}

// Introspector implements IntrospectorProvider over the scraped sources.
func (a *Annotations) Introspector(context.Context) (introspect.Introspector, error) {
	if a.registry == nil {
		return nil, ErrNotScraped
	}
	return source.New(a.registry, a.SourceOptions...), nil
}

func (a *Annotations) specifications(reg *registry.Service) ([]*domain.Specification, error) {
	debug := a.debugger()
	info := base.NewService()
	info.SetDebugger(debug)
	info.SetMarkdownFileDir(a.MarkdownFileDir)

	var specs []*domain.Specification
	byVersion := make(map[string]*domain.Specification)
	add := func(spec *domain.Specification) error {
		if _, ok := byVersion[spec.Version]; ok {
			return fmt.Errorf("version %q is described twice", spec.Version)
		}
		byVersion[spec.Version] = spec
		specs = append(specs, spec)
		return nil
	}

	packages := reg.AllPackages()

	// Step 1: General API info
	for _, pkg := range packages {
		for _, file := range pkg.Files {
			found, err := info.ParseFile(file.AST)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file.Path, err)
			}
			for _, spec := range found {
				if spec.Version == "" {
					spec.Version = a.defaultVersion()
				}
				if err := add(spec); err != nil {
					return nil, fmt.Errorf("%s: %w", file.Path, err)
				}
			}
		}
	}

	// Step 2: Handlers
	for _, pkg := range packages {
		for _, file := range pkg.Files {
			for _, fn := range functions(pkg, file) {
				h := a.parseHandler(fn)
				if h == nil {
					continue
				}

				spec, ok := byVersion[h.version]
				if !ok {
					spec = &domain.Specification{Version: h.version}
					_ = add(spec)
				}

				tags := h.tags
				if len(tags) == 0 {
					tags = []string{cases.Title(language.English).String(pkg.Name)}
				}

				for _, r := range h.routes {
					spec.Endpoints = append(spec.Endpoints, &domain.Endpoint{
						ID:              r.path,
						HTTPMethod:      r.method,
						Callback:        callback(pkg, fn),
						Tags:            tags,
						SecuritySchemes: h.security,
						ResultWrapper:   h.wrapper,
					})
				}
				debug.Printf("Annotations: %s has %d routes in %s", fn.Name, len(h.routes), h.version)
			}
		}
	}

	return specs, nil
}

// functions lists the documented functions and methods of a file in source order.
func functions(pkg *registry.Package, file *registry.File) []*registry.FuncDecl {
	var out []*registry.FuncDecl
	for _, fn := range pkg.Funcs {
		if fn.File == file && fn.Decl.Doc != nil {
			out = append(out, fn)
		}
	}
	for _, methods := range pkg.Methods {
		for _, fn := range methods {
			if fn.File == file && fn.Decl.Doc != nil {
				out = append(out, fn)
			}
		}
	}
	sortByPosition(out)
	return out
}

func sortByPosition(fns []*registry.FuncDecl) {
	sort.Slice(fns, func(i, j int) bool {
		return fns[i].Decl.Pos() < fns[j].Decl.Pos()
	})
}

func callback(pkg *registry.Package, fn *registry.FuncDecl) domain.Callback {
	if fn.Receiver == "" {
		return domain.Callback{Method: pkg.Path + "." + fn.Name}
	}
	return domain.Callback{Type: pkg.Path + "." + fn.Receiver, Method: fn.Name}
}

// parseHandler reads the routing annotations of a function. It returns nil for
// functions without a valid @Router.
func (a *Annotations) parseHandler(fn *registry.FuncDecl) *handler {
	h := &handler{version: a.defaultVersion()}

	for _, line := range strings.Split(fn.Decl.Doc.Text(), "\n") {
		fields := base.FieldsByAnySpace(line, 2)
		if len(fields) == 0 {
			continue
		}
		var lineRemainder string
		if len(fields) > 1 {
			lineRemainder = fields[1]
		}

		switch strings.ToLower(fields[0]) {
		case "@router":
			r, err := parseRouter(lineRemainder)
			if err != nil {
				a.debugger().Printf("Annotations: %s: %v", fn.Name, err)
				continue
			}
			h.routes = append(h.routes, r)
		case "@tags":
			h.tags = append(h.tags, parseTags(lineRemainder)...)
		case "@security":
			h.security = append(h.security, parseSecurity(lineRemainder)...)
		case "@version":
			if lineRemainder != "" {
				h.version = lineRemainder
			}
		case "@wrapper":
			wrapper := strings.Fields(lineRemainder)
			if len(wrapper) != 2 {
				a.debugger().Printf("Annotations: %s: @Wrapper needs a type and a property", fn.Name)
				continue
			}
			h.wrapper = &domain.ResultWrapper{WrapperType: wrapper[0], ResultingProperty: wrapper[1]}
		}
	}

	if len(h.routes) == 0 {
		return nil
	}
	return h
}

// parseRouter parses the @router annotation
func parseRouter(line string) (route, error) {
	matches := routerPattern.FindStringSubmatch(line)
	if len(matches) != 3 {
		return route{}, fmt.Errorf("can not parse router comment \"%s\"", line)
	}

	method := strings.ToUpper(matches[2])
	if !validMethods[method] {
		return route{}, fmt.Errorf("invalid HTTP method: %s", method)
	}
	return route{path: matches[1], method: method}, nil
}

// parseTags parses a comma-separated list of tags
func parseTags(line string) []string {
	var tags []string
	for _, tag := range strings.Split(line, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseSecurity lists the scheme ids of a security line such as "Token || ApiKey".
// Scopes in brackets are dropped.
func parseSecurity(line string) []string {
	var ids []string
	for _, option := range securityPairSepPattern.Split(line, -1) {
		option = strings.TrimSpace(option)
		if left := strings.Index(option, "["); left != -1 {
			option = strings.TrimSpace(option[:left])
		}
		if option != "" {
			ids = append(ids, option)
		}
	}
	return ids
}

func (a *Annotations) defaultVersion() string {
	if a.DefaultVersion == "" {
		return DefaultVersion
	}
	return a.DefaultVersion
}

func (a *Annotations) debugger() Debugger {
	if a.Debug == nil {
		return noOpDebugger{}
	}
	return a.Debug
}
