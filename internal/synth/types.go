package synth

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/resolver"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/typespec"
)

var timeType = reflect.TypeOf(time.Time{})

// TypeService synthesizes schemas from type specifications.
type TypeService struct {
	resolver *resolver.Service
	classes  *ClassService
	notifier domain.Notifier
	debug    Debugger
}

// Synthesize builds the schema of typeSpec as written in declaring's documentation.
// It returns nil when there is nothing to describe ("", "void", an unknown class) and
// reports whether the type accepts null; nullable seeds that flag.
func (s *TypeService) Synthesize(declaring, typeSpec string, def interface{}, nullable bool) (*schema.Schema, bool) {
	if strings.TrimSpace(typeSpec) == "" {
		return nil, nullable
	}

	node, err := typespec.Parse(typeSpec)
	if err != nil {
		s.notifier.Notify(domain.LevelError, fmt.Sprintf("%s: %v", declaring, err))
		return nil, nullable
	}
	return s.synthesizeNode(declaring, node, def, nullable)
}

// SynthesizeAs is Synthesize delivering the schema in the shape of target.
func (s *TypeService) SynthesizeAs(declaring, typeSpec string, def interface{}, nullable bool, target schema.Target) (schema.Container, bool, error) {
	sch, nullable := s.Synthesize(declaring, typeSpec, def, nullable)
	container, err := schema.Wrap(sch, target)
	if err != nil {
		return nil, nullable, err
	}
	return container, nullable, nil
}

// SynthesizeValue describes a live value: structs through their class, slices through
// their first element, anything else through its Go type.
func (s *TypeService) SynthesizeValue(declaring string, v interface{}) *schema.Schema {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			sch, _ := s.Synthesize(declaring, introspect.ReflectTypeSpec(rv.Type()), nil, false)
			return sch
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if introspect.ClassName(rv.Interface()) != "" && rv.Type() != timeType {
			return s.classes.DescribeInstance(rv.Interface())
		}
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() != reflect.Uint8 && rv.Len() > 0 {
			items := s.SynthesizeValue(declaring, rv.Index(0).Interface())
			if items == nil {
				return nil
			}
			return schema.ArraySchema(items)
		}
	}

	sch, _ := s.Synthesize(declaring, introspect.ReflectTypeSpec(rv.Type()), nil, false)
	return sch
}

func (s *TypeService) synthesizeNode(declaring string, node typespec.Node, def interface{}, nullable bool) (*schema.Schema, bool) {
	var sch *schema.Schema

	switch n := node.(type) {
	case *typespec.Nullable:
		if n.NullOnly {
			s.notifier.Notify(domain.LevelWarning, fmt.Sprintf("%s: type \"null\" is read as a nullable string", declaring))
		}
		return s.synthesizeNode(declaring, n.Elem, def, true)

	case *typespec.Union:
		var branches []*schema.Schema
		for _, member := range n.Members {
			if branch, _ := s.synthesizeNode(declaring, member, def, false); branch != nil {
				branches = append(branches, branch)
			}
		}
		switch len(branches) {
		case 0:
			return nil, nullable
		case 1:
			sch = branches[0]
		default:
			sch = schema.OneOfSchema(branches...)
		}

	case *typespec.ArrayOf:
		items, _ := s.synthesizeNode(declaring, n.Elem, nil, false)
		if items == nil {
			return nil, nullable
		}
		sch = schema.ArraySchema(items)
		if enum := sliceValues(def); len(enum) > 0 {
			sch.Enum = enum
		}

	case *typespec.Scalar:
		sch = scalarSchema(n.Name)
		if sch == nil {
			return nil, nullable
		}
		if !isEmpty(def) {
			sch.Default = def
		}

	case *typespec.Abstract:
		if n.Name == "array" {
			sch = schema.ArraySchema(schema.PrimitiveSchema(schema.OBJECT))
		} else {
			sch = schema.PrimitiveSchema(schema.OBJECT)
		}

	case *typespec.Named:
		name := s.resolver.Resolve(declaring, n.Name)
		s.debug.Printf("Synth: %s resolved to %s in %s", n.Name, name, declaring)
		sch = s.classes.DescribeClass(name)
		if sch == nil {
			return nil, nullable
		}
	}

	sch.Nullable = nullable
	return sch, nullable
}

// scalarSchema maps a scalar keyword to its schema; void has none.
func scalarSchema(keyword string) *schema.Schema {
	switch strings.ToLower(keyword) {
	case "int", "integer":
		return schema.PrimitiveSchema(schema.INTEGER)
	case "float", "double":
		return &schema.Schema{Type: schema.NUMBER, Format: "float"}
	case "bool", "boolean", "true", "false":
		return schema.PrimitiveSchema(schema.BOOLEAN)
	case "string", "null":
		return schema.PrimitiveSchema(schema.STRING)
	}
	return nil
}

func sliceValues(v interface{}) []interface{} {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	values := make([]interface{}, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values
}

// isEmpty reports whether a default value carries nothing worth documenting.
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return rv.IsZero()
}
