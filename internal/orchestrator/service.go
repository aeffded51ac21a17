// Package orchestrator assembles OpenAPI documents. It asks a scraper for the
// specifications of an application, wires the introspection, naming and synthesis
// services for one run, and turns every endpoint into an operation of its
// specification's document.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/parser/operation"
	"github.com/griffnb/core-openapi/internal/resolver"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/scraper"
	"github.com/griffnb/core-openapi/internal/synth"
)

// ErrNoIntrospector is returned when neither the configuration nor the scraper supplies
// an introspector.
var ErrNoIntrospector = errors.New("no introspector configured")

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Config holds orchestrator configuration options. Scraper capabilities are applied on
// top of it for each run.
type Config struct {
	// Root is handed to the scraper
	Root string

	// Introspector reads handlers and classes. When nil the scraper must provide one.
	Introspector introspect.Introspector

	Settings             Settings
	Rules                []synth.Rule
	CommonParameters     map[string]string
	Formats              schema.Formats
	AlternativeResponses map[int]string
	Extractors           []operation.Registration

	// Filter selects the specifications to generate, all of them when nil
	Filter func(spec *domain.Specification) bool

	// Observer receives the event stream
	Observer domain.Observer

	Debug Debugger
}

// Result is the document generated for one specification.
type Result struct {
	// ID is the specification's version
	ID       string
	Title    string
	Document *openapi3.T
}

// Service generates documents.
type Service struct {
	config *Config
}

// New creates a new orchestrator service with the given configuration.
func New(config *Config) *Service {
	if config == nil {
		config = &Config{}
	}
	if config.Debug == nil {
		config.Debug = noOpDebugger{}
	}
	if config.Observer == nil {
		config.Observer = domain.Observers(nil)
	}
	return &Service{config: config}
}

// pipeline holds the services wired for one run.
type pipeline struct {
	introspector introspect.Introspector
	names        *resolver.Service
	types        *synth.TypeService
	classes      *synth.ClassService
	operations   *operation.Service
}

// Generate scrapes the application and builds one document per specification.
// Specifications and their endpoints are processed in order. A failing endpoint is
// reported and left out of its document; only configuration errors and cancellation of
// ctx abort the run.
func (s *Service) Generate(ctx context.Context, scr scraper.Scraper) ([]Result, error) {
	r := newRun(s.config.Observer)
	r.emit(domain.Event{Kind: domain.RunStarted})
	defer r.emit(domain.Event{Kind: domain.RunFinished})

	s.config.Debug.Printf("Orchestrator: Starting run %s", r.id)

	// Step 1: Scrape specifications
	specs, err := scr.Scrape(ctx, s.config.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", s.config.Root, err)
	}
	s.config.Debug.Printf("Orchestrator: Step 1 - Scraped %d specifications", len(specs))

	// Step 2: Wire services
	p, err := s.pipeline(ctx, scr, r)
	if err != nil {
		return nil, err
	}

	// Step 3: Assemble documents
	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		if s.config.Filter != nil && !s.config.Filter(spec) {
			s.config.Debug.Printf("Orchestrator: Skipping specification %s", spec.Version)
			continue
		}
		doc, err := s.assemble(ctx, r, p, spec)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{ID: spec.Version, Title: spec.DisplayTitle(), Document: doc})
	}

	s.config.Debug.Printf("Orchestrator: Generated %d documents", len(results))
	return results, nil
}

// pipeline builds fresh caches and services for a run, letting the scraper's
// capabilities extend the configuration.
func (s *Service) pipeline(ctx context.Context, scr scraper.Scraper, r *run) (*pipeline, error) {
	settings := s.config.Settings
	if provider, ok := scr.(scraper.SettingsProvider); ok {
		if err := settings.Apply(provider.Settings()); err != nil {
			return nil, err
		}
	}

	backend := s.config.Introspector
	if backend == nil {
		provider, ok := scr.(scraper.IntrospectorProvider)
		if !ok {
			return nil, ErrNoIntrospector
		}
		var err error
		if backend, err = provider.Introspector(ctx); err != nil {
			return nil, fmt.Errorf("failed to create introspector: %w", err)
		}
	}

	rules := append([]synth.Rule(nil), s.config.Rules...)
	if provider, ok := scr.(scraper.RulesProvider); ok {
		rules = append(rules, provider.Rules()...)
	}

	p := &pipeline{introspector: introspect.NewCache(backend)}
	p.names = resolver.NewService(p.introspector)
	p.types, p.classes = synth.NewServices(p.introspector, p.names,
		synth.WithRules(rules...),
		synth.WithNotifier(r),
		synth.WithDebugger(s.config.Debug),
	)

	options := []operation.Option{
		operation.WithSettings(settings.Settings),
		operation.WithExtractors(s.config.Extractors...),
		operation.WithCommonParameters(s.config.CommonParameters),
		operation.WithFormats(s.config.Formats),
		operation.WithAlternativeResponses(s.config.AlternativeResponses),
		operation.WithNotifier(r),
		operation.WithDebugger(s.config.Debug),
	}
	if provider, ok := scr.(scraper.ExtractorProvider); ok {
		options = append(options, operation.WithExtractors(provider.Extractors(p.introspector, p.classes)...))
	}
	if provider, ok := scr.(scraper.CommonParametersProvider); ok {
		options = append(options, operation.WithCommonParameters(provider.CommonParameters()))
	}
	if provider, ok := scr.(scraper.CustomFormatsProvider); ok {
		options = append(options, operation.WithFormats(provider.CustomFormats()))
	}
	if provider, ok := scr.(scraper.AlternativeResponsesProvider); ok {
		options = append(options, operation.WithAlternativeResponses(provider.AlternativeResponses()))
	}
	p.operations = operation.NewService(p.introspector, p.names, p.types, options...)

	s.config.Debug.Printf("Orchestrator: Step 2 - Wired services (body=%t, rewrite=%t, path=%t, rules=%d)",
		settings.TreatComplexArgumentsAsBody, settings.RewriteGetWithBodyToPost, settings.ExtractPathParameters, len(rules))
	return p, nil
}

// assemble builds the document of one specification.
func (s *Service) assemble(ctx context.Context, r *run, p *pipeline, spec *domain.Specification) (*openapi3.T, error) {
	r.spec = spec
	defer func() { r.spec = nil }()

	r.emit(domain.Event{Kind: domain.SpecificationStarted})
	s.config.Debug.Printf("Orchestrator: Specification %s with %d endpoints", spec.Version, len(spec.Endpoints))

	doc := newDocument(spec)
	summary := &domain.Summary{}

	for _, endpoint := range spec.Endpoints {
		if endpoint == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.endpoint = endpoint
		r.emit(domain.Event{Kind: domain.PathStarted})

		trace, err := s.endpoint(r, p, spec, doc, endpoint)
		switch {
		case err == nil:
			summary.Succeeded++
		case errors.Is(err, schema.ErrUnknownTarget), errors.Is(err, ErrUnknownSetting):
			r.endpoint = nil
			return nil, err
		default:
			summary.Failed++
			r.notice(domain.LevelError, fmt.Sprintf("%s:%s: %v", spec.Version, endpoint.ID, err), trace)
		}

		r.emit(domain.Event{Kind: domain.PathFinished})
		r.endpoint = nil
	}

	setSecuritySchemes(doc, spec)

	if summary.Failed > 0 {
		r.Notify(domain.LevelImportant, fmt.Sprintf("%d paths generated, %d errors", summary.Succeeded, summary.Failed))
	} else {
		r.Notify(domain.LevelSuccess, fmt.Sprintf("%d paths generated", summary.Succeeded))
	}
	r.emit(domain.Event{Kind: domain.SpecificationFinished, Summary: summary})

	return doc, nil
}
