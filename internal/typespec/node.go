// Package typespec parses doc-comment type specifications such as "?int", "User[]|null"
// or "(int|string)[]" into a small tagged AST.
package typespec

import "strings"

// Kind classifies a type specification for parameter placement.
// The order matters: a union takes the maximum over its members.
type Kind int

const (
	// Primitive is a scalar type
	Primitive Kind = iota
	// ComplexAbstract is a bare array, object or mixed
	ComplexAbstract
	// Complex is a named class
	Complex
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Primitive:
		return "PRIMITIVE"
	case ComplexAbstract:
		return "COMPLEX_ABSTRACT"
	case Complex:
		return "COMPLEX"
	default:
		return "UNKNOWN"
	}
}

// Node is one element of a parsed type specification.
type Node interface {
	// Kind classifies the node
	Kind() Kind

	// String renders the node back into the type grammar
	String() string

	node()
}

// Scalar is a scalar keyword. Name holds the lower-cased keyword as written (e.g., "int", "double").
type Scalar struct {
	Name string
}

// Abstract is a complex-abstract keyword: array, object, stdClass or mixed.
type Abstract struct {
	Name string
}

// Named is a class reference, not yet resolved against imports.
type Named struct {
	Name string
}

// ArrayOf is the "[]" suffix.
type ArrayOf struct {
	Elem Node
}

// Union holds two or more non-null alternatives in declaration order.
type Union struct {
	Members []Node
}

// Nullable marks its element as accepting null.
type Nullable struct {
	Elem Node

	// NullOnly is set when the whole specification was the literal "null",
	// which is read as a nullable string.
	NullOnly bool
}

func (*Scalar) node()   {}
func (*Abstract) node() {}
func (*Named) node()    {}
func (*ArrayOf) node()  {}
func (*Union) node()    {}
func (*Nullable) node() {}

func (*Scalar) Kind() Kind   { return Primitive }
func (*Abstract) Kind() Kind { return ComplexAbstract }
func (*Named) Kind() Kind    { return Complex }
func (n *ArrayOf) Kind() Kind {
	return n.Elem.Kind()
}
func (n *Nullable) Kind() Kind {
	return n.Elem.Kind()
}

// Kind is the maximum kind over the members.
func (n *Union) Kind() Kind {
	kind := Primitive
	for _, member := range n.Members {
		if k := member.Kind(); k > kind {
			kind = k
		}
	}
	return kind
}

func (n *Scalar) String() string   { return n.Name }
func (n *Abstract) String() string { return n.Name }
func (n *Named) String() string    { return n.Name }

func (n *ArrayOf) String() string {
	switch n.Elem.(type) {
	case *Union, *Nullable:
		return "(" + n.Elem.String() + ")[]"
	}
	return n.Elem.String() + "[]"
}

func (n *Union) String() string {
	parts := make([]string, 0, len(n.Members))
	for _, member := range n.Members {
		parts = append(parts, member.String())
	}
	return strings.Join(parts, "|")
}

func (n *Nullable) String() string {
	if n.NullOnly {
		return "null"
	}
	return n.Elem.String() + "|null"
}

// Unwrap strips a Nullable wrapper and reports whether one was present.
func Unwrap(n Node) (Node, bool) {
	if nullable, ok := n.(*Nullable); ok {
		return nullable.Elem, true
	}
	return n, false
}
