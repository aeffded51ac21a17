// Package registry indexes loaded Go files by package: type, function, method and constant
// declarations, and the imports of every file.
package registry

import (
	"go/ast"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/griffnb/core-openapi/internal/loader"
)

// Debugger provides debug logging interface.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Service holds the package index.
type Service struct {
	packages map[string]*Package
	debug    Debugger
}

// Package is the index of one Go package.
type Package struct {
	// Path is the import path
	Path string

	// Name is the declared package name
	Name string

	Files   []*File
	Types   map[string]*TypeDecl
	Funcs   map[string]*FuncDecl
	Methods map[string]map[string]*FuncDecl
	Consts  map[string]*ConstDecl
}

// File is one source file of a package.
type File struct {
	Path    string
	AST     *ast.File
	Package *Package
}

// TypeDecl is a named type declaration.
type TypeDecl struct {
	Name string
	Spec *ast.TypeSpec
	// Doc is the type's own doc comment, or the declaration's when the type is declared alone
	Doc  *ast.CommentGroup
	File *File
}

// FuncDecl is a function or method declaration.
type FuncDecl struct {
	Name string
	// Receiver is the receiver type name without pointer, empty for functions
	Receiver string
	Decl     *ast.FuncDecl
	File     *File
}

// ConstDecl is one constant of a const block.
type ConstDecl struct {
	Name  string
	Type  ast.Expr
	Value ast.Expr
	// Iota is the index of the spec inside its block
	Iota int
	File *File
}

// NewService creates an empty registry.
func NewService() *Service {
	return &Service{
		packages: make(map[string]*Package),
	}
}

// SetDebugger sets the debugger.
func (s *Service) SetDebugger(debug Debugger) {
	s.debug = debug
}

// Collect indexes every file of a load result in path order.
func (s *Service) Collect(result *loader.LoadResult) {
	for _, info := range result.Sorted() {
		s.CollectAstFile(info.PackagePath, info.Path, info.File)
	}
}

// CollectAstFile indexes one file.
func (s *Service) CollectAstFile(packagePath, path string, astFile *ast.File) {
	if packagePath == "" {
		return
	}

	pkg, ok := s.packages[packagePath]
	if !ok {
		pkg = &Package{
			Path:    packagePath,
			Name:    astFile.Name.Name,
			Types:   make(map[string]*TypeDecl),
			Funcs:   make(map[string]*FuncDecl),
			Methods: make(map[string]map[string]*FuncDecl),
			Consts:  make(map[string]*ConstDecl),
		}
		s.packages[packagePath] = pkg
	}
	for _, existing := range pkg.Files {
		if existing.Path == path {
			return
		}
	}

	file := &File{Path: path, AST: astFile, Package: pkg}
	pkg.Files = append(pkg.Files, file)

	for _, decl := range astFile.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			s.collectGenDecl(pkg, file, d)
		case *ast.FuncDecl:
			s.collectFuncDecl(pkg, file, d)
		}
	}

	if s.debug != nil {
		s.debug.Printf("Registry: indexed %s (%s)", path, packagePath)
	}
}

func (s *Service) collectGenDecl(pkg *Package, file *File, decl *ast.GenDecl) {
	switch decl.Tok {
	case token.TYPE:
		for _, spec := range decl.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			doc := typeSpec.Doc
			if doc == nil && len(decl.Specs) == 1 {
				doc = decl.Doc
			}
			pkg.Types[typeSpec.Name.Name] = &TypeDecl{
				Name: typeSpec.Name.Name,
				Spec: typeSpec,
				Doc:  doc,
				File: file,
			}
		}
	case token.CONST:
		// implicit repetition: a spec without values repeats the previous type and expression
		var lastType ast.Expr
		var lastValues []ast.Expr
		for i, spec := range decl.Specs {
			valueSpec := spec.(*ast.ValueSpec)
			if len(valueSpec.Values) > 0 {
				lastValues = valueSpec.Values
				lastType = valueSpec.Type
			}
			for j, name := range valueSpec.Names {
				if j >= len(lastValues) || name.Name == "_" {
					continue
				}
				pkg.Consts[name.Name] = &ConstDecl{
					Name:  name.Name,
					Type:  lastType,
					Value: lastValues[j],
					Iota:  i,
					File:  file,
				}
			}
		}
	}
}

func (s *Service) collectFuncDecl(pkg *Package, file *File, decl *ast.FuncDecl) {
	fn := &FuncDecl{Name: decl.Name.Name, Decl: decl, File: file}
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		pkg.Funcs[fn.Name] = fn
		return
	}

	fn.Receiver = receiverName(decl.Recv.List[0].Type)
	if fn.Receiver == "" {
		return
	}
	methods, ok := pkg.Methods[fn.Receiver]
	if !ok {
		methods = make(map[string]*FuncDecl)
		pkg.Methods[fn.Receiver] = methods
	}
	methods[fn.Name] = fn
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	}
	return ""
}

// Package returns the package with the given import path.
func (s *Service) Package(path string) (*Package, bool) {
	pkg, ok := s.packages[path]
	return pkg, ok
}

// Packages returns the number of indexed packages.
func (s *Service) Packages() int {
	return len(s.packages)
}

// AllPackages returns the indexed packages sorted by import path.
func (s *Service) AllPackages() []*Package {
	out := make([]*Package, 0, len(s.packages))
	for _, pkg := range s.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

// FindType looks a type up by package path and name.
func (s *Service) FindType(pkgPath, name string) (*TypeDecl, bool) {
	pkg, ok := s.packages[pkgPath]
	if !ok {
		return nil, false
	}
	decl, ok := pkg.Types[name]
	return decl, ok
}

// FindFunc looks a package-level function up.
func (s *Service) FindFunc(pkgPath, name string) (*FuncDecl, bool) {
	pkg, ok := s.packages[pkgPath]
	if !ok {
		return nil, false
	}
	fn, ok := pkg.Funcs[name]
	return fn, ok
}

// FindMethod looks a method up by receiver type.
func (s *Service) FindMethod(pkgPath, receiver, name string) (*FuncDecl, bool) {
	pkg, ok := s.packages[pkgPath]
	if !ok {
		return nil, false
	}
	fn, ok := pkg.Methods[receiver][name]
	return fn, ok
}

// Import is one import of a file.
type Import struct {
	Path  string
	Alias string
	// Name is the declared name of the imported package when it is indexed
	Name string
}

// Imports lists the imports of a file. Blank and dot imports are skipped.
func (s *Service) Imports(file *File) []Import {
	imports := make([]Import, 0, len(file.AST.Imports))
	for _, spec := range file.AST.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := Import{Path: path}
		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			imp.Alias = spec.Name.Name
		}
		if pkg, ok := s.packages[path]; ok {
			imp.Name = pkg.Name
		}
		imports = append(imports, imp)
	}
	return imports
}

// ResolvePackage maps a package identifier used in file to an import path.
// Explicit aliases win over declared package names, which win over the last path segment.
func (s *Service) ResolvePackage(file *File, ident string) (string, bool) {
	var byName, bySegment string
	for _, imp := range s.Imports(file) {
		switch {
		case imp.Alias == ident:
			return imp.Path, true
		case imp.Alias == "" && imp.Name == ident && byName == "":
			byName = imp.Path
		case imp.Alias == "" && imp.Name == "" && lastSegment(imp.Path) == ident && bySegment == "":
			bySegment = imp.Path
		}
	}
	if byName != "" {
		return byName, true
	}
	if bySegment != "" {
		return bySegment, true
	}
	return "", false
}

func lastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
