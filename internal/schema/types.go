// Package schema holds the inline schema tree produced by synthesis and converts it to the
// OpenAPI 3 and Swagger 2 object models.
package schema

import (
	"github.com/mohae/deepcopy"
)

const (
	// ARRAY represent a array value.
	ARRAY = "array"
	// OBJECT represent a object value.
	OBJECT = "object"
	// BOOLEAN represent a boolean value.
	BOOLEAN = "boolean"
	// INTEGER represent a integer value.
	INTEGER = "integer"
	// NUMBER represent a number value.
	NUMBER = "number"
	// STRING represent a string value.
	STRING = "string"
)

// IsSimplePrimitiveType determines whether the type name is a simple primitive type.
func IsSimplePrimitiveType(typeName string) bool {
	switch typeName {
	case STRING, NUMBER, INTEGER, BOOLEAN:
		return true
	}
	return false
}

// Schema is one node of a schema tree. Every node is owned by exactly one parent.
type Schema struct {
	Type        string
	Format      string
	Description string
	Items       *Schema
	// Properties keep declaration order
	Properties []Property
	Required   []string
	Enum       []interface{}
	Example    interface{}
	Default    interface{}
	Nullable   bool
	Deprecated bool
	OneOf      []*Schema
	AllOf      []*Schema
}

// Property is a named object property.
type Property struct {
	Name   string
	Schema *Schema
}

func (*Schema) container() {}

// PrimitiveSchema builds a schema of one type.
func PrimitiveSchema(schemaType string) *Schema {
	return &Schema{Type: schemaType}
}

// ArraySchema builds an array of items.
func ArraySchema(items *Schema) *Schema {
	return &Schema{Type: ARRAY, Items: items}
}

// ObjectSchema builds an object with the given properties.
func ObjectSchema(props ...Property) *Schema {
	return &Schema{Type: OBJECT, Properties: props}
}

// OneOfSchema combines alternatives.
func OneOfSchema(alternatives ...*Schema) *Schema {
	return &Schema{OneOf: alternatives}
}

// Property returns the schema of a named property.
func (s *Schema) Property(name string) (*Schema, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// SetProperty replaces a property in place or appends it.
func (s *Schema) SetProperty(name string, prop *Schema) {
	for i := range s.Properties {
		if s.Properties[i].Name == name {
			s.Properties[i].Schema = prop
			return
		}
	}
	s.Properties = append(s.Properties, Property{Name: name, Schema: prop})
}

// AddRequired appends names not yet listed as required.
func (s *Schema) AddRequired(names ...string) {
	for _, name := range names {
		if !contains(s.Required, name) {
			s.Required = append(s.Required, name)
		}
	}
}

// IsRequired reports whether name is listed as required.
func (s *Schema) IsRequired(name string) bool {
	return contains(s.Required, name)
}

// DeepCopy returns a tree that shares nothing with s.
func (s *Schema) DeepCopy() *Schema {
	if s == nil {
		return nil
	}
	return deepcopy.Copy(s).(*Schema)
}

// MergeSchema copies the set fields of src onto dst.
func MergeSchema(dst *Schema, src *Schema) *Schema {
	if src == nil {
		return dst
	}
	if len(src.Type) > 0 {
		dst.Type = src.Type
	}
	if len(src.Format) > 0 {
		dst.Format = src.Format
	}
	if len(src.Description) > 0 {
		dst.Description = src.Description
	}
	if src.Items != nil {
		dst.Items = src.Items
	}
	for _, p := range src.Properties {
		dst.SetProperty(p.Name, p.Schema)
	}
	dst.AddRequired(src.Required...)
	if len(src.Enum) > 0 {
		dst.Enum = src.Enum
	}
	if src.Example != nil {
		dst.Example = src.Example
	}
	if src.Default != nil {
		dst.Default = src.Default
	}
	if src.Nullable {
		dst.Nullable = src.Nullable
	}
	if src.Deprecated {
		dst.Deprecated = src.Deprecated
	}
	if len(src.OneOf) > 0 {
		dst.OneOf = src.OneOf
	}
	if len(src.AllOf) > 0 {
		dst.AllOf = src.AllOf
	}
	return dst
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
