package typespec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every parse error.
var ErrInvalid = errors.New("invalid type specification")

var scalarKeywords = map[string]struct{}{
	"void":    {},
	"null":    {},
	"string":  {},
	"bool":    {},
	"boolean": {},
	"int":     {},
	"integer": {},
	"float":   {},
	"double":  {},
	"true":    {},
	"false":   {},
}

var abstractKeywords = map[string]string{
	"array":    "array",
	"object":   "object",
	"stdclass": "stdClass",
	"mixed":    "mixed",
}

// IsScalarKeyword reports whether name is a scalar keyword, ignoring case.
func IsScalarKeyword(name string) bool {
	_, ok := scalarKeywords[strings.ToLower(name)]
	return ok
}

// Parse parses a type specification.
//
// Grammar:
//
//	union   := member ('|' member)*
//	member  := '?'? primary ('[' ']')*
//	primary := name | '(' union ')'
//
// Null members and '?' sigils are folded into a Nullable wrapper around the remaining
// alternative (or around a Union when two or more remain).
func Parse(src string) (Node, error) {
	p := &parser{src: src}
	p.skipSpace()
	if p.eof() {
		return nil, fmt.Errorf("%w: empty", ErrInvalid)
	}

	members, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}

	if len(members) == 1 && members[0].isNull && !members[0].optional {
		return &Nullable{Elem: &Scalar{Name: "string"}, NullOnly: true}, nil
	}
	return p.fold(members)
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

// Classify parses src and returns its kind.
func Classify(src string) (Kind, error) {
	n, err := Parse(src)
	if err != nil {
		return Primitive, err
	}
	return n.Kind(), nil
}

// Members splits src on the '|' separators that are not nested in parentheses. Members
// are trimmed; empty ones are kept so that the caller can report them.
func Members(src string) []string {
	var members []string
	depth, start := 0, 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				members = append(members, strings.TrimSpace(src[start:i]))
				start = i + 1
			}
		}
	}
	return append(members, strings.TrimSpace(src[start:]))
}

type member struct {
	node     Node
	isNull   bool
	optional bool
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %q at offset %d: %s", ErrInvalid, p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseUnion() ([]member, error) {
	var members []member
	for {
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		members = append(members, m)

		p.skipSpace()
		if p.peek() != '|' {
			return members, nil
		}
		p.pos++
	}
}

func (p *parser) parseMember() (member, error) {
	p.skipSpace()
	var m member
	if p.peek() == '?' {
		m.optional = true
		p.pos++
		p.skipSpace()
	}

	switch p.peek() {
	case '(':
		p.pos++
		inner, err := p.parseUnion()
		if err != nil {
			return m, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return m, p.errorf("missing ')'")
		}
		p.pos++
		m.node, err = p.fold(inner)
		if err != nil {
			return m, err
		}
	default:
		name := p.parseName()
		if name == "" {
			return m, p.errorf("empty member")
		}
		m.node = nodeForName(name)
		if s, ok := m.node.(*Scalar); ok && s.Name == "null" {
			m.isNull = true
		}
	}

	for {
		p.skipSpace()
		if p.peek() != '[' {
			break
		}
		p.pos++
		p.skipSpace()
		if p.peek() != ']' {
			return m, p.errorf("missing ']'")
		}
		p.pos++
		m.node = &ArrayOf{Elem: m.node}
		m.isNull = false
	}
	return m, nil
}

func (p *parser) parseName() string {
	start := p.pos
	for !p.eof() {
		switch p.src[p.pos] {
		case '|', '?', '(', ')', '[', ']', ' ', '\t':
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func nodeForName(name string) Node {
	lower := strings.ToLower(name)
	if _, ok := scalarKeywords[lower]; ok {
		return &Scalar{Name: lower}
	}
	if canonical, ok := abstractKeywords[lower]; ok {
		return &Abstract{Name: canonical}
	}
	return &Named{Name: name}
}

// fold removes null members, flattens nested unions and wraps the result in Nullable when needed.
func (p *parser) fold(members []member) (Node, error) {
	nullable := false
	var alternatives []Node
	seen := make(map[string]struct{})

	add := func(n Node) {
		key := n.String()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		alternatives = append(alternatives, n)
	}

	for _, m := range members {
		if m.optional {
			nullable = true
		}
		if m.isNull {
			nullable = true
			continue
		}
		n, wasNullable := Unwrap(m.node)
		if wasNullable {
			nullable = true
		}
		if union, ok := n.(*Union); ok {
			for _, inner := range union.Members {
				add(inner)
			}
			continue
		}
		add(n)
	}

	var result Node
	switch len(alternatives) {
	case 0:
		return nil, p.errorf("union has no non-null alternative")
	case 1:
		result = alternatives[0]
	default:
		result = &Union{Members: alternatives}
	}

	if nullable {
		return &Nullable{Elem: result}, nil
	}
	return result, nil
}
