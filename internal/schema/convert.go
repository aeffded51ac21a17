package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/spec"
)

// ToOpenAPI converts a schema tree to the OpenAPI 3 model. Every node is inlined.
func ToOpenAPI(s *Schema) *openapi3.Schema {
	if s == nil {
		return nil
	}

	out := &openapi3.Schema{
		Type:        s.Type,
		Format:      s.Format,
		Description: s.Description,
		Enum:        s.Enum,
		Default:     s.Default,
		Example:     s.Example,
		Nullable:    s.Nullable,
		Deprecated:  s.Deprecated,
		Required:    s.Required,
	}

	if s.Items != nil {
		out.Items = openapi3.NewSchemaRef("", ToOpenAPI(s.Items))
	}
	if len(s.Properties) > 0 {
		out.Properties = make(openapi3.Schemas, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = openapi3.NewSchemaRef("", ToOpenAPI(orEmpty(p.Schema)))
		}
	}
	for _, alt := range s.OneOf {
		out.OneOf = append(out.OneOf, openapi3.NewSchemaRef("", ToOpenAPI(alt)))
	}
	for _, part := range s.AllOf {
		out.AllOf = append(out.AllOf, openapi3.NewSchemaRef("", ToOpenAPI(part)))
	}
	return out
}

// ParameterToOpenAPI converts a parameter to the OpenAPI 3 model.
func ParameterToOpenAPI(p *Parameter) *openapi3.Parameter {
	out := &openapi3.Parameter{
		Name:        p.Name,
		In:          p.In,
		Description: p.Description,
		Required:    p.Required,
		Deprecated:  p.Deprecated,
		Example:     p.Example,
	}
	if p.Schema != nil {
		out.Schema = openapi3.NewSchemaRef("", ToOpenAPI(p.Schema))
	}
	return out
}

// ToSwagger converts a schema tree to the Swagger 2 model. Swagger 2 has no deprecated
// flag, so it is carried as the x-deprecated extension.
func ToSwagger(s *Schema) *spec.Schema {
	if s == nil {
		return nil
	}

	out := &spec.Schema{
		SchemaProps: spec.SchemaProps{
			Format:      s.Format,
			Description: s.Description,
			Enum:        s.Enum,
			Default:     s.Default,
			Nullable:    s.Nullable,
			Required:    s.Required,
		},
		SwaggerSchemaProps: spec.SwaggerSchemaProps{
			Example: s.Example,
		},
	}
	if s.Type != "" {
		out.Type = spec.StringOrArray{s.Type}
	}
	if s.Deprecated {
		out.AddExtension("x-deprecated", true)
	}

	if s.Items != nil {
		out.Items = &spec.SchemaOrArray{Schema: ToSwagger(s.Items)}
	}
	if len(s.Properties) > 0 {
		out.Properties = make(spec.SchemaProperties, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = *ToSwagger(orEmpty(p.Schema))
		}
	}
	for _, alt := range s.OneOf {
		out.OneOf = append(out.OneOf, *ToSwagger(alt))
	}
	for _, part := range s.AllOf {
		out.AllOf = append(out.AllOf, *ToSwagger(part))
	}
	return out
}

func orEmpty(s *Schema) *Schema {
	if s == nil {
		return &Schema{}
	}
	return s
}
