// Package scraper discovers the specifications and endpoints of an application.
//
// A Scraper only lists routes and the handlers behind them; everything else the generator
// needs from the application is optional and offered through the provider interfaces
// below, which the orchestrator checks for with type assertions.
package scraper

import (
	"context"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/parser/operation"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/synth"
)

// Scraper lists the specifications of the application rooted at root.
type Scraper interface {
	Scrape(ctx context.Context, root string) ([]*domain.Specification, error)
}

// SettingsProvider changes generator settings by key before synthesis starts.
type SettingsProvider interface {
	Settings() map[string]bool
}

// ExtractorProvider registers argument extractors. They are consulted in order.
type ExtractorProvider interface {
	Extractors(in introspect.Introspector, classes *synth.ClassService) []operation.Registration
}

// CommonParametersProvider describes parameters documented without a description.
type CommonParametersProvider interface {
	CommonParameters() map[string]string
}

// CustomFormatsProvider registers formats usable with @paramFormat.
type CustomFormatsProvider interface {
	CustomFormats() schema.Formats
}

// RulesProvider registers class describing rules.
type RulesProvider interface {
	Rules() []synth.Rule
}

// AlternativeResponsesProvider adds responses by status code to every operation.
type AlternativeResponsesProvider interface {
	AlternativeResponses() map[int]string
}

// IntrospectorProvider supplies the backend handlers and classes are read from.
type IntrospectorProvider interface {
	Introspector(ctx context.Context) (introspect.Introspector, error)
}
