package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownTarget is returned when a schema is requested in a shape the synthesizer
// cannot build. It signals a programming error.
var ErrUnknownTarget = errors.New("unknown schema target")

// Target selects the shape a synthesized schema is delivered in.
type Target int

const (
	// TargetSchema is the bare schema.
	TargetSchema Target = iota
	// TargetParameter is an operation parameter with the schema nested under it.
	TargetParameter
	// TargetProperty is a fresh schema carrying every field of the synthesized one.
	TargetProperty
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetSchema:
		return "schema"
	case TargetParameter:
		return "parameter"
	case TargetProperty:
		return "property"
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// Container is a *Schema or a *Parameter.
type Container interface {
	container()
}

// Parameter is an operation parameter.
type Parameter struct {
	Name        string
	In          string
	Description string
	Required    bool
	Deprecated  bool
	Example     interface{}
	Schema      *Schema
}

func (*Parameter) container() {}

// Parameter locations.
const (
	InQuery = "query"
	InPath  = "path"
)

// Wrap delivers s in the shape of target. A nil schema yields a nil container.
// Parameters are not required until the caller decides so.
func Wrap(s *Schema, target Target) (Container, error) {
	switch target {
	case TargetSchema:
		if s == nil {
			return nil, nil
		}
		return s, nil
	case TargetParameter:
		if s == nil {
			return nil, nil
		}
		return &Parameter{
			Description: s.Description,
			Deprecated:  s.Deprecated,
			Example:     s.Example,
			Schema:      s,
		}, nil
	case TargetProperty:
		if s == nil {
			return nil, nil
		}
		return MergeSchema(&Schema{}, s), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
}
