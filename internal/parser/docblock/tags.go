package docblock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTag is wrapped when a tag is present but cannot be parsed.
var ErrInvalidTag = errors.New("invalid tag")

// Param is a "@param type $name description" tag. The same shape serves "@property".
type Param struct {
	Type        string
	Name        string
	Description string
}

// ParseParam parses the content of a @param or @property tag. The type may be omitted.
// A type written as "$other" refers to another property ("@property $items $list").
func ParseParam(tag Tag) (Param, error) {
	fields := strings.Fields(tag.Content)
	if len(fields) == 0 {
		return Param{}, invalid(tag, "missing variable name")
	}

	var p Param
	rest := fields
	if !strings.HasPrefix(fields[0], "$") || (len(fields) > 1 && isVariable(fields[1])) {
		p.Type = fields[0]
		rest = fields[1:]
	}
	if len(rest) == 0 || !strings.HasPrefix(rest[0], "$") || len(rest[0]) < 2 {
		return Param{}, invalid(tag, "missing variable name")
	}
	p.Name = strings.TrimPrefix(rest[0], "$")
	p.Description = restAfter(tag.Content, len(fields)-len(rest)+1)
	return p, nil
}

// Var is a "@var type [$name] description" tag.
type Var struct {
	Type        string
	Description string
}

// ParseVar parses a @var tag.
func ParseVar(tag Tag) (Var, error) {
	fields := strings.Fields(tag.Content)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "$") {
		return Var{}, invalid(tag, "missing type")
	}
	skip := 1
	if len(fields) > 1 && strings.HasPrefix(fields[1], "$") {
		skip = 2
	}
	return Var{Type: fields[0], Description: restAfter(tag.Content, skip)}, nil
}

// Return is a "@return type description" tag.
type Return struct {
	Type        string
	Description string
}

// ParseReturn parses a @return tag.
func ParseReturn(tag Tag) (Return, error) {
	fields := strings.Fields(tag.Content)
	if len(fields) == 0 {
		return Return{}, invalid(tag, "missing type")
	}
	return Return{Type: fields[0], Description: restAfter(tag.Content, 1)}, nil
}

// Throws is a "@throws type code description" tag declaring an alternative response.
type Throws struct {
	Type        string
	Code        int
	Description string
}

// ParseThrows parses a @throws tag.
func ParseThrows(tag Tag) (Throws, error) {
	fields := strings.Fields(tag.Content)
	if len(fields) < 2 {
		return Throws{}, invalid(tag, "expected \"type code\"")
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil || code < 100 || code > 599 {
		return Throws{}, invalid(tag, "malformed status code %q", fields[1])
	}
	return Throws{Type: fields[0], Code: code, Description: restAfter(tag.Content, 2)}, nil
}

// Link is a "@link url description" tag.
type Link struct {
	URL         string
	Description string
}

// ParseLink parses a @link tag.
func ParseLink(tag Tag) (Link, error) {
	fields := strings.Fields(tag.Content)
	if len(fields) == 0 {
		return Link{}, invalid(tag, "missing url")
	}
	if !strings.Contains(fields[0], "://") && !strings.HasPrefix(fields[0], "/") {
		return Link{}, invalid(tag, "malformed url %q", fields[0])
	}
	return Link{URL: fields[0], Description: restAfter(tag.Content, 1)}, nil
}

// NamedValue is a "$name value" tag used by enum, example, format and default tags.
type NamedValue struct {
	Name  string
	Value string
}

// ParseNamedValue splits the content on its first space.
func ParseNamedValue(tag Tag) (NamedValue, error) {
	content := strings.TrimSpace(tag.Content)
	idx := strings.IndexAny(content, " \t")
	if idx < 0 {
		return NamedValue{}, invalid(tag, "expected \"$name value\"")
	}
	name := strings.TrimPrefix(content[:idx], "$")
	if name == "" {
		return NamedValue{}, invalid(tag, "missing variable name")
	}
	return NamedValue{Name: name, Value: strings.TrimSpace(content[idx+1:])}, nil
}

// SplitEnum splits an enum value list on "|".
func SplitEnum(value string) []string {
	parts := strings.Split(value, "|")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

// restAfter returns the content following the first n whitespace-separated fields,
// preserving inner spacing and line breaks.
func restAfter(content string, n int) string {
	rest := strings.TrimSpace(content)
	for i := 0; i < n && rest != ""; i++ {
		idx := strings.IndexAny(rest, " \t\n")
		if idx < 0 {
			return ""
		}
		rest = strings.TrimSpace(rest[idx:])
	}
	return rest
}

func invalid(tag Tag, format string, args ...interface{}) error {
	return fmt.Errorf("%w @%s on line %d: %s", ErrInvalidTag, tag.Name, tag.Line, fmt.Sprintf(format, args...))
}

func isVariable(field string) bool {
	return len(field) > 1 && strings.HasPrefix(field, "$")
}
