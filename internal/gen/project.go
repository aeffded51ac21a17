package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/griffnb/core-openapi/internal/orchestrator"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/synth"
)

// DefaultProjectFile is the location the generator looks for project settings.
const DefaultProjectFile = "core-openapi.yaml"

// Project holds the per-project generator settings read from the project file.
//
//	settings:
//	  treatComplexArgumentsAsBody: true
//	commonParameters:
//	  page: Page number, starting at 1
//	formats:
//	  uuid:
//	    type: string
//	    description: An RFC 4122 identifier
//	rules:
//	  - base: example.com/shop/models.Resource
//	    options:
//	      publicProperties: false
//	      virtualFamilies: [{tag: attribute}]
//	ignoredTypes: [example.com/shop/auth.Session]
type Project struct {
	Settings             map[string]bool   `yaml:"settings"`
	CommonParameters     map[string]string `yaml:"commonParameters"`
	Formats              schema.Formats    `yaml:"formats"`
	Rules                []synth.Rule      `yaml:"rules"`
	AlternativeResponses map[int]string    `yaml:"alternativeResponses"`

	// IgnoredTypes are handler parameter types skipped in addition to the defaults
	IgnoredTypes []string `yaml:"ignoredTypes"`
}

// LoadProject reads a project file. A missing DefaultProjectFile yields an empty project.
func LoadProject(path string) (*Project, error) {
	if path == "" {
		return &Project{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Don't bother reporting if the default file is missing; assume there are no settings
		if path == DefaultProjectFile && os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("could not open project file: %w", err)
	}

	var project Project
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&project); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: failed to parse project file: %w", path, err)
	}
	return &project, nil
}

// apply copies the project settings into an orchestrator configuration.
func (p *Project) apply(config *orchestrator.Config) error {
	if err := config.Settings.Apply(p.Settings); err != nil {
		return err
	}
	config.CommonParameters = p.CommonParameters
	config.Formats = p.Formats
	config.Rules = p.Rules
	config.AlternativeResponses = p.AlternativeResponses
	return nil
}
