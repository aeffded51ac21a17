package orchestrator

import (
	"fmt"
	"runtime/debug"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/griffnb/core-openapi/internal/domain"
)

// run tags events with the run ID and with the specification and endpoint being
// processed. It is the notifier of every service wired for the run.
type run struct {
	id       string
	observer domain.Observer

	spec     *domain.Specification
	endpoint *domain.Endpoint
}

func newRun(observer domain.Observer) *run {
	return &run{id: uuid.NewString(), observer: observer}
}

func (r *run) emit(event domain.Event) {
	event.RunID = r.id
	if event.Specification == nil {
		event.Specification = r.spec
	}
	if event.Endpoint == nil {
		event.Endpoint = r.endpoint
	}
	r.observer.Observe(event)
}

// Notify implements domain.Notifier.
func (r *run) Notify(level domain.Level, message string) {
	r.notice(level, message, "")
}

func (r *run) notice(level domain.Level, message, trace string) {
	r.emit(domain.Event{Kind: domain.Notice, Level: level, Message: message, Trace: trace})
}

// endpoint synthesizes one endpoint into doc. A panic is turned into an error; the
// returned trace locates the failure.
func (s *Service) endpoint(r *run, p *pipeline, spec *domain.Specification, doc *openapi3.T, endpoint *domain.Endpoint) (trace string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			trace = string(debug.Stack())
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	for _, scheme := range endpoint.SecurityDefinitions {
		if spec.EnsureSecurityScheme(scheme) {
			s.config.Debug.Printf("Orchestrator: Added security scheme %s for %s", scheme.ID, endpoint.ID)
		}
	}
	for _, id := range endpoint.SecuritySchemes {
		if !spec.HasSecurityScheme(id) {
			r.Notify(domain.LevelWarning, fmt.Sprintf("%s:%s: security scheme %q is not declared", spec.Version, endpoint.ID, id))
		}
	}

	method, err := p.introspector.Method(endpoint.Callback.Type, endpoint.Callback.Method)
	if err != nil {
		return string(debug.Stack()), fmt.Errorf("failed to introspect %s: %w", endpoint.Callback, err)
	}

	op, err := p.operations.Synthesize(endpoint, method)
	if err != nil {
		return string(debug.Stack()), err
	}

	if err := addOperation(doc, op); err != nil {
		return string(debug.Stack()), err
	}
	return "", nil
}
