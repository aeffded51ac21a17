// Package operation turns one scraped endpoint and the handler behind it into an operation:
// summary and description from the handler's documentation, security requirements,
// responses wrapped in the endpoint's envelope, query parameters and the request body.
package operation

import (
	"fmt"
	"net/http"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/parser/docblock"
	"github.com/griffnb/core-openapi/internal/resolver"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/synth"
)

// Debugger provides debug logging interface.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Settings switch the optional stages of operation synthesis.
type Settings struct {
	// TreatComplexArgumentsAsBody turns non-primitive handler arguments into request body properties
	TreatComplexArgumentsAsBody bool

	// RewriteGetWithBodyToPost turns a GET operation with a request body into a POST one.
	// When off, the body of a GET operation is dropped.
	RewriteGetWithBodyToPost bool

	// ExtractPathParameters moves parameters named by "{name}" placeholders of the path to the path
	ExtractPathParameters bool
}

// Service synthesizes operations.
type Service struct {
	introspector introspect.Introspector
	resolver     *resolver.Service
	types        *synth.TypeService

	settings         Settings
	extractors       []Registration
	commonParameters map[string]string
	formats          schema.Formats
	alternatives     map[int]string

	notifier domain.Notifier
	debug    Debugger
}

// Option configures the service.
type Option func(*Service)

// WithSettings sets the stage switches.
func WithSettings(settings Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithExtractors registers argument extractors; the first matching one handles an argument.
func WithExtractors(registrations ...Registration) Option {
	return func(s *Service) {
		s.extractors = append(s.extractors, registrations...)
	}
}

// WithCommonParameters sets the descriptions used for parameters documented without one.
func WithCommonParameters(descriptions map[string]string) Option {
	return func(s *Service) {
		for name, description := range descriptions {
			s.commonParameters[name] = description
		}
	}
}

// WithFormats registers custom formats for @paramFormat.
func WithFormats(formats schema.Formats) Option {
	return func(s *Service) {
		for name, format := range formats {
			s.formats[name] = format
		}
	}
}

// WithAlternativeResponses adds a response of the given type for each status code to
// every operation.
func WithAlternativeResponses(responses map[int]string) Option {
	return func(s *Service) {
		for code, typeSpec := range responses {
			s.alternatives[code] = typeSpec
		}
	}
}

// WithNotifier sets where notices go.
func WithNotifier(n domain.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithDebugger sets the trace output.
func WithDebugger(d Debugger) Option {
	return func(s *Service) {
		if d != nil {
			s.debug = d
		}
	}
}

// NewService creates an operation synthesizer. Class references in types are resolved by
// names and described by the class service types is wired to.
func NewService(in introspect.Introspector, names *resolver.Service, types *synth.TypeService, options ...Option) *Service {
	s := &Service{
		introspector:     in,
		resolver:         names,
		types:            types,
		commonParameters: make(map[string]string),
		formats:          make(schema.Formats),
		alternatives:     make(map[int]string),
		notifier:         domain.Discard,
		debug:            noOpDebugger{},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Synthesize builds the operation of endpoint, served by method. Problems with the
// documentation are reported as notices; the returned error means the endpoint could not
// be synthesized at all.
func (s *Service) Synthesize(endpoint *domain.Endpoint, method *introspect.MethodInfo) (*Operation, error) {
	if endpoint == nil || method == nil {
		return nil, fmt.Errorf("operation: endpoint and method are required")
	}

	location := endpoint.Callback.String()
	doc := docblock.Parse(method.Doc)
	s.debug.Printf("operation: %s %s served by %s", endpoint.Method(), endpoint.ID, location)

	op := &Operation{
		ID:      endpoint.OperationID(),
		Path:    endpoint.ID,
		Method:  endpoint.Method(),
		Summary: doc.Summary,
		Tags:    append([]string(nil), endpoint.Tags...),
	}

	// Step 1: Description and external documentation
	s.describe(op, doc, location)

	// Step 2: Security requirements
	for _, id := range endpoint.SecuritySchemes {
		op.Security = append(op.Security, map[string][]string{id: {}})
	}

	// Step 3: Responses
	s.responses(op, endpoint, method, doc, location)

	// Step 4: Parameters and request body
	if err := s.arguments(op, method, doc, location); err != nil {
		return nil, err
	}

	// Step 5: GET with a request body
	if op.RequestBody != nil && op.Method == http.MethodGet {
		if s.settings.RewriteGetWithBodyToPost {
			op.Method = http.MethodPost
			s.notifier.Notify(domain.LevelInfo, fmt.Sprintf("%s: GET %s has a request body, rewritten to POST", location, endpoint.ID))
		} else {
			op.RequestBody = nil
			s.notifier.Notify(domain.LevelInfo, fmt.Sprintf("%s: GET %s has a request body, body dropped", location, endpoint.ID))
		}
	}

	// Step 6: Path parameters
	if s.settings.ExtractPathParameters {
		extractPathParameters(op)
	}

	return op, nil
}

func (s *Service) invalidTag(err error, location string) {
	s.notifier.Notify(domain.LevelError, fmt.Sprintf("%s: %v", location, err))
}
