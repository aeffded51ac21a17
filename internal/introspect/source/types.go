package source

import (
	"go/ast"
	"reflect"

	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/registry"
)

// maxUnderlyingDepth bounds how far named non-struct types are followed.
const maxUnderlyingDepth = 8

// wellKnownTypes maps library types to the type specification they serialize as.
var wellKnownTypes = map[string]string{
	"time.Time":                             "string",
	"time.Duration":                         "int",
	"encoding/json.RawMessage":              "mixed",
	"encoding/json.Number":                  "float",
	"github.com/google/uuid.UUID":           "string",
	"github.com/shopspring/decimal.Decimal": "float",
	"math/big.Int":                          "int",
	"math/big.Float":                        "float",
	"net/url.URL":                           "string",
}

var basicTypes = map[string]string{
	"bool":       "bool",
	"string":     "string",
	"int":        "int",
	"int8":       "int",
	"int16":      "int",
	"int32":      "int",
	"int64":      "int",
	"uint":       "int",
	"uint8":      "int",
	"uint16":     "int",
	"uint32":     "int",
	"uint64":     "int",
	"uintptr":    "int",
	"byte":       "int",
	"rune":       "int",
	"float32":    "float",
	"float64":    "float",
	"complex64":  "mixed",
	"complex128": "mixed",
	"any":        "mixed",
	"error":      "string",
}

func isBasic(name string) bool {
	_, ok := basicTypes[name]
	return ok
}

func lookupTag(raw, key string) string {
	return reflect.StructTag(raw).Get(key)
}

// qualifiedName returns "importpath.Type" for a named type expression, the bare name for
// predeclared types, and "" for anything else. Pointers are dereferenced.
func (b *Backend) qualifiedName(expr ast.Expr, file *registry.File) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return b.qualifiedName(t.X, file)
	case *ast.ParenExpr:
		return b.qualifiedName(t.X, file)
	case *ast.IndexExpr:
		return b.qualifiedName(t.X, file)
	case *ast.IndexListExpr:
		return b.qualifiedName(t.X, file)
	case *ast.Ident:
		if isBasic(t.Name) {
			if _, declared := file.Package.Types[t.Name]; !declared {
				return t.Name
			}
		}
		return file.Package.Path + "." + t.Name
	case *ast.SelectorExpr:
		pkgIdent, ok := t.X.(*ast.Ident)
		if !ok {
			return ""
		}
		pkgPath, ok := b.registry.ResolvePackage(file, pkgIdent.Name)
		if !ok {
			return ""
		}
		return pkgPath + "." + t.Sel.Name
	}
	return ""
}

// typeSpec renders a Go type expression as a type specification.
func (b *Backend) typeSpec(expr ast.Expr, file *registry.File, depth int) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return introspect.NullableSpec(b.typeSpec(t.X, file, depth))
	case *ast.ParenExpr:
		return b.typeSpec(t.X, file, depth)
	case *ast.Ellipsis:
		return introspect.ArraySpec(b.typeSpec(t.Elt, file, depth))
	case *ast.ArrayType:
		if ident, ok := t.Elt.(*ast.Ident); ok && (ident.Name == "byte" || ident.Name == "uint8") {
			return "string"
		}
		return introspect.ArraySpec(b.typeSpec(t.Elt, file, depth))
	case *ast.MapType:
		return "object"
	case *ast.StructType:
		return "object"
	case *ast.InterfaceType:
		return "mixed"
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr:
		return b.namedSpec(b.qualifiedName(t, file), depth)
	}
	return "mixed"
}

// namedSpec renders a named type. Structs keep their name; other named types render as
// their underlying type.
func (b *Backend) namedSpec(name string, depth int) string {
	if name == "" {
		return "mixed"
	}
	if spec, ok := basicTypes[name]; ok {
		return spec
	}
	if spec, ok := wellKnownTypes[name]; ok {
		return spec
	}

	pkgPath, typeName := introspect.SplitName(name)
	decl, ok := b.registry.FindType(pkgPath, typeName)
	if !ok {
		return name
	}
	if _, isStruct := decl.Spec.Type.(*ast.StructType); isStruct {
		return name
	}
	if depth >= maxUnderlyingDepth {
		return "mixed"
	}

	// type Admin User keeps the class name so it is described as a class
	if under := b.qualifiedName(decl.Spec.Type, decl.File); under != "" && !isBasic(under) {
		if underDecl, ok := b.registry.FindType(introspect.SplitName(under)); ok {
			if _, isStruct := underDecl.Spec.Type.(*ast.StructType); isStruct {
				return name
			}
		}
	}
	return b.typeSpec(decl.Spec.Type, decl.File, depth+1)
}
