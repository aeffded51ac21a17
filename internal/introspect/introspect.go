// Package introspect defines what the synthesis core needs to know about the inspected code:
// classes (named struct types), their properties, handler methods and their parameters,
// import tables and constants. Backends live in the source and manifest sub-packages.
package introspect

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a class, method or constant cannot be located.
var ErrNotFound = errors.New("not found")

// Introspector answers structural questions about the inspected code.
type Introspector interface {
	// Class returns the description of a fully qualified class name.
	Class(name string) (*ClassInfo, error)

	// Method returns a method of class, or the package-level function named by method
	// when class is empty.
	Method(class, method string) (*MethodInfo, error)

	// Imports returns the import declarations of the unit declaring name.
	Imports(declaring string) ([]Import, error)

	// Constant resolves a constant. When scope is non-empty, name is looked up next to
	// the declaration of scope; otherwise name is fully qualified.
	Constant(scope, name string) (interface{}, error)
}

// Import is one import declaration.
type Import struct {
	// Path is the imported namespace (e.g., "github.com/acme/api/models")
	Path string

	// Alias is the explicit alias, empty when none was written
	Alias string

	// Name is the name the namespace declares for itself, empty when unknown
	Name string
}

// LocalName returns the name the import is referred to by.
func (i Import) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	if i.Name != "" {
		return i.Name
	}
	return LastSegment(i.Path)
}

// ClassInfo describes a class.
type ClassInfo struct {
	// Name is the fully qualified name
	Name string

	// Doc is the raw documentation comment
	Doc string

	// Parents holds the fully qualified names of directly embedded or extended classes
	Parents []string

	// Properties in declaration order, own properties before inherited ones
	Properties []PropertyInfo
}

// Property returns the named property.
func (c *ClassInfo) Property(name string) (PropertyInfo, bool) {
	for _, p := range c.Properties {
		if p.Name == name || p.Field == name {
			return p, true
		}
	}
	return PropertyInfo{}, false
}

// PropertyInfo describes one member of a class.
type PropertyInfo struct {
	// Name is the serialized name
	Name string

	// Field is the member name in source, when it differs from Name
	Field string

	// Doc is the raw documentation comment
	Doc string

	// Public is false for members that are not serialized
	Public bool

	// Type is the declared type as a type specification, empty when unknown
	Type string

	// Default is the declared default value, nil when none
	Default interface{}

	// Declaring is the class that declares the member, empty for the described class itself
	Declaring string
}

// MethodInfo describes a handler method or function.
type MethodInfo struct {
	// Declaring is the class (or function name) name resolution happens against
	Declaring string

	// Name of the method
	Name string

	// Doc is the raw documentation comment
	Doc string

	// Params in declaration order
	Params []ParamInfo
}

// ParamInfo describes one formal parameter.
type ParamInfo struct {
	Name string

	// Type is the declared type as a type specification, empty when unknown
	Type string

	// Class is the fully qualified declared class, empty for non-class types
	Class string

	// Optional is set for parameters that may be omitted
	Optional bool

	// HasDefault is set when Default or DefaultConstant is meaningful
	HasDefault bool

	// Default is a literal default value
	Default interface{}

	// DefaultConstant is a constant reference such as "self::Limit" or "paging.DefaultSize"
	DefaultConstant string
}

// Namespace returns the namespace part of a fully qualified name: everything before the
// first '.' that follows the last '/'. "github.com/acme/api/models.User" yields
// "github.com/acme/api/models".
func Namespace(name string) string {
	ns, _ := SplitName(name)
	return ns
}

// SplitName splits a fully qualified name into namespace and local name.
func SplitName(name string) (string, string) {
	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	if dot < 0 {
		return "", name
	}
	dot += slash + 1
	return name[:dot], name[dot+1:]
}

// LastSegment returns the last '/'-separated segment of a namespace.
func LastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// IsSubclassOf reports whether class equals base or embeds it, directly or transitively.
func IsSubclassOf(in Introspector, class, base string) bool {
	seen := make(map[string]struct{})
	var walk func(name string) bool
	walk = func(name string) bool {
		if name == base {
			return true
		}
		if _, ok := seen[name]; ok {
			return false
		}
		seen[name] = struct{}{}

		info, err := in.Class(name)
		if err != nil {
			return false
		}
		for _, parent := range info.Parents {
			if walk(parent) {
				return true
			}
		}
		return false
	}
	return walk(class)
}
