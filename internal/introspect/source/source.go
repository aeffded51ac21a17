// Package source implements introspect.Introspector over Go source code.
//
// Classes are named struct types ("importpath.Type"), parents are embedded structs,
// properties are struct fields named by their json tag, and handlers are methods or
// package-level functions. Go has no parameter defaults, so handler docs may declare them
// with "@default $name value" where value is a literal or a constant reference.
package source

import (
	"context"
	"fmt"
	"go/ast"
	"strconv"
	"strings"

	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/loader"
	"github.com/griffnb/core-openapi/internal/parser/docblock"
	"github.com/griffnb/core-openapi/internal/registry"
)

// DefaultIgnoredTypes are handler parameter types injected by web frameworks.
var DefaultIgnoredTypes = []string{
	"context.Context",
	"net/http.Request",
	"net/http.ResponseWriter",
	"github.com/gin-gonic/gin.Context",
	"github.com/labstack/echo/v4.Context",
	"github.com/gofiber/fiber/v2.Ctx",
}

// Backend reads classes and handlers from an indexed registry.
type Backend struct {
	registry *registry.Service
	ignored  map[string]struct{}
}

// Option configures a Backend.
type Option func(*Backend)

// WithIgnoredTypes replaces the handler parameter types that are skipped.
func WithIgnoredTypes(types []string) Option {
	return func(b *Backend) {
		b.ignored = toSet(types)
	}
}

// New creates a backend over reg.
func New(reg *registry.Service, options ...Option) *Backend {
	b := &Backend{
		registry: reg,
		ignored:  toSet(DefaultIgnoredTypes),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Load loads and indexes dirs, then returns a backend over them.
func Load(ctx context.Context, dirs []string, loaderOptions []loader.Option, options ...Option) (*Backend, error) {
	result, err := loader.NewService(loaderOptions...).Load(ctx, dirs)
	if err != nil {
		return nil, err
	}
	reg := registry.NewService()
	reg.Collect(result)
	return New(reg, options...), nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Class implements introspect.Introspector.
func (b *Backend) Class(name string) (*introspect.ClassInfo, error) {
	pkgPath, typeName := introspect.SplitName(name)
	decl, ok := b.registry.FindType(pkgPath, typeName)
	if !ok {
		return nil, fmt.Errorf("class %s: %w", name, introspect.ErrNotFound)
	}

	info := &introspect.ClassInfo{Name: name, Doc: decl.Doc.Text()}

	switch t := decl.Spec.Type.(type) {
	case *ast.StructType:
		b.collectFields(info, t, decl.File)
	case *ast.Ident, *ast.SelectorExpr:
		// type Admin User: describe through the named struct
		parent := b.qualifiedName(t, decl.File)
		if _, err := b.Class(parent); err != nil {
			return nil, fmt.Errorf("class %s is not a struct: %w", name, introspect.ErrNotFound)
		}
		info.Parents = append(info.Parents, parent)
	default:
		return nil, fmt.Errorf("class %s is not a struct: %w", name, introspect.ErrNotFound)
	}

	b.inheritProperties(info, map[string]struct{}{name: {}})
	return info, nil
}

func (b *Backend) collectFields(info *introspect.ClassInfo, st *ast.StructType, file *registry.File) {
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			if parent := b.qualifiedName(field.Type, file); parent != "" {
				info.Parents = append(info.Parents, parent)
			}
			continue
		}

		doc := joinDocs(field.Doc.Text(), field.Comment.Text())
		spec := b.typeSpec(field.Type, file, 0)
		for _, ident := range field.Names {
			name, serialized := introspect.SerializedName(ident.Name, tagValue(field.Tag, "json"))
			prop := introspect.PropertyInfo{
				Name:   name,
				Doc:    doc,
				Public: serialized && ident.IsExported(),
				Type:   spec,
			}
			if name != ident.Name {
				prop.Field = ident.Name
			}
			info.Properties = append(info.Properties, prop)
		}
	}
}

// inheritProperties appends the properties of embedded structs that are not shadowed.
func (b *Backend) inheritProperties(info *introspect.ClassInfo, visiting map[string]struct{}) {
	seen := make(map[string]struct{}, len(info.Properties))
	for _, p := range info.Properties {
		seen[p.Name] = struct{}{}
	}

	for _, parentName := range info.Parents {
		if _, ok := visiting[parentName]; ok {
			continue
		}
		visiting[parentName] = struct{}{}
		parent, err := b.Class(parentName)
		if err != nil {
			continue
		}
		for _, p := range parent.Properties {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			if p.Declaring == "" {
				p.Declaring = parentName
			}
			info.Properties = append(info.Properties, p)
		}
	}
}

// Method implements introspect.Introspector.
func (b *Backend) Method(class, method string) (*introspect.MethodInfo, error) {
	if class == "" {
		pkgPath, funcName := introspect.SplitName(method)
		fn, ok := b.registry.FindFunc(pkgPath, funcName)
		if !ok {
			return nil, fmt.Errorf("function %s: %w", method, introspect.ErrNotFound)
		}
		return b.methodInfo(method, fn), nil
	}

	fn, ok := b.findMethod(class, method, map[string]struct{}{})
	if !ok {
		return nil, fmt.Errorf("method %s.%s: %w", class, method, introspect.ErrNotFound)
	}
	return b.methodInfo(class, fn), nil
}

// findMethod looks in the type itself, then in embedded types for promoted methods.
func (b *Backend) findMethod(class, method string, visiting map[string]struct{}) (*registry.FuncDecl, bool) {
	if _, ok := visiting[class]; ok {
		return nil, false
	}
	visiting[class] = struct{}{}

	pkgPath, typeName := introspect.SplitName(class)
	if fn, ok := b.registry.FindMethod(pkgPath, typeName, method); ok {
		return fn, true
	}

	info, err := b.Class(class)
	if err != nil {
		return nil, false
	}
	for _, parent := range info.Parents {
		if fn, ok := b.findMethod(parent, method, visiting); ok {
			return fn, true
		}
	}
	return nil, false
}

func (b *Backend) methodInfo(declaring string, fn *registry.FuncDecl) *introspect.MethodInfo {
	doc := fn.Decl.Doc.Text()
	info := &introspect.MethodInfo{
		Declaring: declaring,
		Name:      fn.Name,
		Doc:       doc,
	}
	defaults := parseDefaults(doc)

	params := fn.Decl.Type.Params
	if params == nil {
		return info
	}
	for _, field := range params.List {
		typeExpr := field.Type
		variadic := false
		if ellipsis, ok := typeExpr.(*ast.Ellipsis); ok {
			variadic = true
			typeExpr = ellipsis.Elt
		}

		qualified := b.qualifiedName(typeExpr, fn.File)
		if _, ok := b.ignored[qualified]; ok {
			continue
		}

		spec := b.typeSpec(typeExpr, fn.File, 0)
		if variadic {
			spec = introspect.ArraySpec(spec)
		}
		class := ""
		if qualified != "" && !isBasic(qualified) {
			class = qualified
		}

		for _, ident := range field.Names {
			if ident.Name == "_" {
				continue
			}
			param := introspect.ParamInfo{
				Name:     ident.Name,
				Type:     spec,
				Class:    class,
				Optional: variadic,
			}
			if value, ok := defaults[ident.Name]; ok {
				param.Optional = true
				param.HasDefault = true
				param.Default, param.DefaultConstant = parseDefaultValue(value)
			}
			info.Params = append(info.Params, param)
		}
	}
	return info
}

// Imports implements introspect.Introspector.
func (b *Backend) Imports(declaring string) ([]introspect.Import, error) {
	file, ok := b.fileOf(declaring)
	if !ok {
		return nil, fmt.Errorf("declaration %s: %w", declaring, introspect.ErrNotFound)
	}

	var imports []introspect.Import
	for _, imp := range b.registry.Imports(file) {
		imports = append(imports, introspect.Import{Path: imp.Path, Alias: imp.Alias, Name: imp.Name})
	}
	return imports, nil
}

func (b *Backend) fileOf(declaring string) (*registry.File, bool) {
	pkgPath, local := introspect.SplitName(declaring)
	if decl, ok := b.registry.FindType(pkgPath, local); ok {
		return decl.File, true
	}
	if fn, ok := b.registry.FindFunc(pkgPath, local); ok {
		return fn.File, true
	}
	return nil, false
}

// Constant implements introspect.Introspector.
func (b *Backend) Constant(scope, name string) (interface{}, error) {
	pkgPath, constName := introspect.Namespace(scope), name
	if scope == "" {
		pkgPath, constName = introspect.SplitName(name)
	}
	value, ok := b.registry.ConstValue(pkgPath, constName)
	if !ok {
		return nil, fmt.Errorf("constant %s: %w", name, introspect.ErrNotFound)
	}
	return value, nil
}

func joinDocs(parts ...string) string {
	var docs []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			docs = append(docs, p)
		}
	}
	return strings.Join(docs, "\n")
}

func tagValue(tag *ast.BasicLit, key string) string {
	if tag == nil {
		return ""
	}
	raw, err := strconv.Unquote(tag.Value)
	if err != nil {
		return ""
	}
	return lookupTag(raw, key)
}

// parseDefaults reads "@default $name value" tags.
func parseDefaults(doc string) map[string]string {
	defaults := make(map[string]string)
	for _, tag := range docblock.Parse(doc).TagsByName("default") {
		nv, err := docblock.ParseNamedValue(tag)
		if err != nil {
			continue
		}
		defaults[nv.Name] = nv.Value
	}
	return defaults
}

// parseDefaultValue returns a literal value, or the text as a constant reference.
func parseDefaultValue(text string) (interface{}, string) {
	text = strings.TrimSpace(text)
	switch strings.ToLower(text) {
	case "null", "nil":
		return nil, ""
	case "true":
		return true, ""
	case "false":
		return false, ""
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return int(i), ""
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, ""
	}
	if s, err := strconv.Unquote(text); err == nil {
		return s, ""
	}
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var list []interface{}
		for _, item := range strings.Split(text[1:len(text)-1], ",") {
			if item = strings.TrimSpace(item); item != "" {
				value, _ := parseDefaultValue(item)
				if value == nil {
					value = item
				}
				list = append(list, value)
			}
		}
		return list, ""
	}
	return nil, text
}
