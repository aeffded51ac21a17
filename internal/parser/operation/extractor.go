package operation

import (
	"fmt"

	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/synth"
)

// Entry is a parameter or a request body property contributed by an extractor.
// Exactly one of Parameter and Property is set.
type Entry struct {
	Name      string
	Parameter *schema.Parameter
	Property  *schema.Schema

	// Required marks a body property as required; parameters carry their own flag
	Required bool
}

// Extractor turns a handler argument of a framework-specific class (a request object
// carrying validation rules, for instance) into parameters or body properties.
type Extractor interface {
	Extract(method *introspect.MethodInfo, param introspect.ParamInfo) ([]Entry, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(method *introspect.MethodInfo, param introspect.ParamInfo) ([]Entry, error)

// Extract calls f.
func (f ExtractorFunc) Extract(method *introspect.MethodInfo, param introspect.ParamInfo) ([]Entry, error) {
	return f(method, param)
}

// Predicate decides whether an extractor handles arguments of a class.
type Predicate func(class string) bool

// Registration pairs a predicate with the extractor it selects.
type Registration struct {
	Match     Predicate
	Extractor Extractor
}

// SubclassOf matches base and every class embedding it.
func SubclassOf(in introspect.Introspector, base string) Predicate {
	return func(class string) bool {
		return class != "" && introspect.IsSubclassOf(in, class, base)
	}
}

// ClassExtractor spreads the properties of the argument's class over the operation:
// primitive properties become parameters, the others body properties. It fits handlers
// that bind query strings or forms into a struct.
type ClassExtractor struct {
	Classes *synth.ClassService

	// In is the location of the produced parameters, query when empty
	In string
}

// Extract describes the argument's class and returns one entry per property.
func (e ClassExtractor) Extract(_ *introspect.MethodInfo, param introspect.ParamInfo) ([]Entry, error) {
	if param.Class == "" {
		return nil, fmt.Errorf("argument %q has no class", param.Name)
	}

	described := e.Classes.DescribeClass(param.Class)
	if described == nil {
		return nil, nil
	}

	in := e.In
	if in == "" {
		in = schema.InQuery
	}

	entries := make([]Entry, 0, len(described.Properties))
	for _, prop := range described.Properties {
		if prop.Schema == nil {
			continue
		}
		required := described.IsRequired(prop.Name)

		if isPrimitive(prop.Schema) {
			entries = append(entries, Entry{
				Name: prop.Name,
				Parameter: &schema.Parameter{
					Name:        prop.Name,
					In:          in,
					Description: prop.Schema.Description,
					Required:    required && !prop.Schema.Nullable,
					Deprecated:  prop.Schema.Deprecated,
					Schema:      prop.Schema,
				},
			})
			continue
		}
		entries = append(entries, Entry{Name: prop.Name, Property: prop.Schema, Required: required})
	}
	return entries, nil
}

// isPrimitive reports whether a schema is a scalar or an array of scalars.
func isPrimitive(s *schema.Schema) bool {
	if s.Type == schema.ARRAY && s.Items != nil {
		return isPrimitive(s.Items)
	}
	return schema.IsSimplePrimitiveType(s.Type)
}
