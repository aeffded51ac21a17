package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/introspect/manifest"
)

// ErrNoIntrospection is returned when an endpoint manifest describes neither inline code
// nor an introspection file.
var ErrNoIntrospection = errors.New("manifest has no introspection")

// ManifestFile is an endpoint manifest: the specifications with their routes, optional
// generator settings, and the code behind the routes, inline or in a separate
// introspection manifest.
type ManifestFile struct {
	Specifications       []ManifestSpecification `yaml:"specifications"`
	Settings             map[string]bool         `yaml:"settings"`
	CommonParameters     map[string]string       `yaml:"commonParameters"`
	AlternativeResponses map[int]string          `yaml:"alternativeResponses"`

	// Introspection is the path of an introspection manifest, relative to this file
	Introspection string         `yaml:"introspection"`
	Code          *manifest.File `yaml:"code"`
}

// ManifestSpecification lists one specification.
type ManifestSpecification struct {
	Version         string                  `yaml:"version"`
	Title           string                  `yaml:"title"`
	Description     string                  `yaml:"description"`
	ExternalDocs    *domain.ExternalDocs    `yaml:"externalDocs"`
	Tags            []domain.Tag            `yaml:"tags"`
	Servers         []domain.Server         `yaml:"servers"`
	SecuritySchemes []domain.SecurityScheme `yaml:"securitySchemes"`
	Endpoints       []ManifestEndpoint      `yaml:"endpoints"`
}

// ManifestEndpoint lists one route.
type ManifestEndpoint struct {
	Path                string                  `yaml:"path"`
	Method              string                  `yaml:"method"`
	Handler             ManifestHandler         `yaml:"handler"`
	Tags                []string                `yaml:"tags"`
	Security            []string                `yaml:"security"`
	SecurityDefinitions []domain.SecurityScheme `yaml:"securityDefinitions"`
	Wrapper             *ManifestWrapper        `yaml:"wrapper"`

	// Result overrides the documented return type
	Result string `yaml:"result"`
}

// ManifestHandler names a method of a type, or a function when Type is empty.
type ManifestHandler struct {
	Type   string `yaml:"type"`
	Method string `yaml:"method"`
}

// ManifestWrapper is the response envelope of an endpoint.
type ManifestWrapper struct {
	Type     string `yaml:"type"`
	Property string `yaml:"property"`
}

// Manifest scrapes an endpoint manifest.
type Manifest struct {
	// Path of the manifest, the scraped root when empty
	Path string

	file *ManifestFile
	dir  string
}

// Scrape reads the manifest and lists its specifications.
func (m *Manifest) Scrape(_ context.Context, root string) ([]*domain.Specification, error) {
	path := m.Path
	if path == "" {
		path = root
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	file, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.file = file
	m.dir = filepath.Dir(path)

	return file.specifications()
}

// ParseManifest decodes an endpoint manifest.
func ParseManifest(data []byte) (*ManifestFile, error) {
	var file ManifestFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &file, nil
}

func (f *ManifestFile) specifications() ([]*domain.Specification, error) {
	specs := make([]*domain.Specification, 0, len(f.Specifications))
	for i, s := range f.Specifications {
		if s.Version == "" {
			return nil, fmt.Errorf("specification #%d has no version", i+1)
		}
		spec := &domain.Specification{
			Version:         s.Version,
			Title:           s.Title,
			Description:     s.Description,
			ExternalDocs:    s.ExternalDocs,
			Tags:            s.Tags,
			Servers:         s.Servers,
			SecuritySchemes: s.SecuritySchemes,
		}

		for j, e := range s.Endpoints {
			if e.Path == "" || e.Handler.Method == "" {
				return nil, fmt.Errorf("%s: endpoint #%d needs a path and a handler", s.Version, j+1)
			}
			endpoint := &domain.Endpoint{
				ID:                  e.Path,
				HTTPMethod:          e.Method,
				Callback:            domain.Callback{Type: e.Handler.Type, Method: e.Handler.Method},
				Tags:                e.Tags,
				SecuritySchemes:     e.Security,
				SecurityDefinitions: e.SecurityDefinitions,
			}
			if e.Wrapper != nil {
				endpoint.ResultWrapper = &domain.ResultWrapper{WrapperType: e.Wrapper.Type, ResultingProperty: e.Wrapper.Property}
			}
			if e.Result != "" {
				endpoint.Result = &domain.ResultOverride{Type: e.Result}
			}
			spec.Endpoints = append(spec.Endpoints, endpoint)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Settings implements SettingsProvider.
func (m *Manifest) Settings() map[string]bool {
	if m.file == nil {
		return nil
	}
	return m.file.Settings
}

// CommonParameters implements CommonParametersProvider.
func (m *Manifest) CommonParameters() map[string]string {
	if m.file == nil {
		return nil
	}
	return m.file.CommonParameters
}

// AlternativeResponses implements AlternativeResponsesProvider.
func (m *Manifest) AlternativeResponses() map[int]string {
	if m.file == nil {
		return nil
	}
	return m.file.AlternativeResponses
}

// Introspector implements IntrospectorProvider with the manifest's inline code or its
// introspection file.
func (m *Manifest) Introspector(context.Context) (introspect.Introspector, error) {
	var (
		backend *manifest.Backend
		err     error
	)
	switch {
	case m.file == nil:
		return nil, ErrNotScraped
	case m.file.Code != nil:
		backend, err = manifest.New(m.file.Code)
	case m.file.Introspection != "":
		path := m.file.Introspection
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.dir, path)
		}
		backend, err = manifest.Load(path)
	default:
		return nil, ErrNoIntrospection
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}
