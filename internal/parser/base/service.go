// Package base parses the general API information of an application: the comment block
// carrying @title, @version, servers, tags and security definitions. Every such block
// describes one specification.
package base

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/griffnb/core-openapi/internal/domain"
)

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Service handles parsing of general API information from comments
type Service struct {
	markdownFileDir string
	debug           Debugger
}

// NewService creates a new base parser service
func NewService() *Service {
	return &Service{debug: noOpDebugger{}}
}

// SetMarkdownFileDir sets the directory for markdown files
func (s *Service) SetMarkdownFileDir(dir string) {
	s.markdownFileDir = dir
}

// SetDebugger sets the debugger for logging
func (s *Service) SetDebugger(debug Debugger) {
	if debug != nil {
		s.debug = debug
	}
}

// ParseGeneralInfo parses one general API comment into a specification without endpoints.
func (s *Service) ParseGeneralInfo(comments []string) (*domain.Specification, error) {
	spec := &domain.Specification{}
	previousAttribute := ""
	var tag *domain.Tag

	for line := 0; line < len(comments); line++ {
		commentLine := strings.TrimSpace(comments[line])
		if len(commentLine) == 0 {
			continue
		}
		fields := FieldsByAnySpace(commentLine, 2)

		attribute := fields[0]
		var value string
		if len(fields) > 1 {
			value = fields[1]
		}

		switch attr := strings.ToLower(attribute); attr {
		case "@version":
			spec.Version = value

		case "@title":
			spec.Title = value

		case "@description":
			if previousAttribute == attribute {
				spec.Description = AppendDescription(spec.Description, value)
				continue
			}
			spec.Description = value

		case "@description.markdown":
			content, err := s.getMarkdownForTag("api")
			if err != nil {
				return nil, err
			}
			spec.Description = string(content)

		case "@server":
			server := FieldsByAnySpace(value, 2)
			if len(server) == 0 {
				return nil, fmt.Errorf("%s needs a url", attribute)
			}
			entry := domain.Server{URL: server[0]}
			if len(server) > 1 {
				entry.Description = server[1]
			}
			spec.Servers = append(spec.Servers, entry)

		case "@tag.name":
			spec.Tags = append(spec.Tags, domain.Tag{Name: value})
			tag = &spec.Tags[len(spec.Tags)-1]

		case "@tag.description":
			if tag != nil {
				tag.Description = value
			}

		case "@tag.description.markdown":
			if tag != nil {
				content, err := s.getMarkdownForTag(tag.Name)
				if err != nil {
					return nil, err
				}
				tag.Description = string(content)
			}

		case "@tag.docs.url":
			if tag != nil {
				tag.ExternalDocs = value
			}

		case "@securitydefinitions.basic", "@securitydefinitions.bearer", "@securitydefinitions.apikey",
			"@securitydefinitions.oauth2.application", "@securitydefinitions.oauth2.implicit",
			"@securitydefinitions.oauth2.password", "@securitydefinitions.oauth2.accesscode",
			"@securitydefinitions.openidconnect":
			scheme, err := s.parseSecurityDefinition(attribute, comments, &line)
			if err != nil {
				return nil, err
			}
			scheme.ID = value
			if !spec.EnsureSecurityScheme(scheme) {
				return nil, fmt.Errorf("security scheme %q is defined twice", value)
			}

		case "@externaldocs.description", "@externaldocs.url":
			if spec.ExternalDocs == nil {
				spec.ExternalDocs = new(domain.ExternalDocs)
			}
			switch attr {
			case "@externaldocs.description":
				spec.ExternalDocs.Description = value
			case "@externaldocs.url":
				spec.ExternalDocs.URL = value
			}
		}

		previousAttribute = attribute
	}

	return spec, nil
}

// ParseFile parses every general API comment of a file.
func (s *Service) ParseFile(file *ast.File) ([]*domain.Specification, error) {
	var specs []*domain.Specification
	for _, group := range file.Comments {
		comments := strings.Split(group.Text(), "\n")
		if !IsGeneralAPIComment(comments) {
			continue
		}

		spec, err := s.ParseGeneralInfo(comments)
		if err != nil {
			return nil, err
		}
		s.debug.Printf("Base: general API info for version %q", spec.Version)
		specs = append(specs, spec)
	}
	return specs, nil
}
