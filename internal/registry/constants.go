package registry

import (
	"go/ast"
	"go/constant"
	"go/token"
)

// ConstValue evaluates the constant name of package pkgPath into a Go value
// (int, uint64, float64, string or bool).
func (s *Service) ConstValue(pkgPath, name string) (interface{}, bool) {
	pkg, ok := s.packages[pkgPath]
	if !ok {
		return nil, false
	}
	decl, ok := pkg.Consts[name]
	if !ok {
		return nil, false
	}

	value, ok := s.evalConst(decl, make(map[*ConstDecl]struct{}))
	if !ok {
		return nil, false
	}
	return goValue(value)
}

func (s *Service) evalConst(decl *ConstDecl, stack map[*ConstDecl]struct{}) (constant.Value, bool) {
	if _, ok := stack[decl]; ok {
		return nil, false
	}
	stack[decl] = struct{}{}
	defer delete(stack, decl)

	value, ok := s.eval(decl.File, decl.Iota, decl.Value, stack)
	if !ok {
		return nil, false
	}
	if decl.Type != nil {
		return convert(typeIdent(decl.Type), value)
	}
	return value, true
}

func (s *Service) eval(file *File, iota int, expr ast.Expr, stack map[*ConstDecl]struct{}) (result constant.Value, ok bool) {
	// go/constant panics on operands of mismatched kinds
	defer func() {
		if recover() != nil {
			result, ok = nil, false
		}
	}()

	switch e := expr.(type) {
	case *ast.BasicLit:
		value := constant.MakeFromLiteral(e.Value, e.Kind, 0)
		return value, value.Kind() != constant.Unknown
	case *ast.Ident:
		switch e.Name {
		case "iota":
			return constant.MakeInt64(int64(iota)), true
		case "true":
			return constant.MakeBool(true), true
		case "false":
			return constant.MakeBool(false), true
		}
		if decl, found := file.Package.Consts[e.Name]; found {
			return s.evalConst(decl, stack)
		}
	case *ast.SelectorExpr:
		ident, isIdent := e.X.(*ast.Ident)
		if !isIdent {
			return nil, false
		}
		pkgPath, found := s.ResolvePackage(file, ident.Name)
		if !found {
			return nil, false
		}
		pkg, found := s.packages[pkgPath]
		if !found {
			return nil, false
		}
		if decl, found := pkg.Consts[e.Sel.Name]; found {
			return s.evalConst(decl, stack)
		}
	case *ast.ParenExpr:
		return s.eval(file, iota, e.X, stack)
	case *ast.UnaryExpr:
		x, found := s.eval(file, iota, e.X, stack)
		if !found {
			return nil, false
		}
		return constant.UnaryOp(e.Op, x, 0), true
	case *ast.BinaryExpr:
		x, foundX := s.eval(file, iota, e.X, stack)
		y, foundY := s.eval(file, iota, e.Y, stack)
		if !foundX || !foundY {
			return nil, false
		}
		return binaryOp(x, e.Op, y)
	case *ast.CallExpr:
		if len(e.Args) != 1 {
			return nil, false
		}
		arg, found := s.eval(file, iota, e.Args[0], stack)
		if !found {
			return nil, false
		}
		name := typeIdent(e.Fun)
		if name == "len" {
			if arg.Kind() != constant.String {
				return nil, false
			}
			return constant.MakeInt64(int64(len(constant.StringVal(arg)))), true
		}
		return convert(name, arg)
	}
	return nil, false
}

func binaryOp(x constant.Value, op token.Token, y constant.Value) (constant.Value, bool) {
	switch op {
	case token.SHL, token.SHR:
		shift, ok := constant.Uint64Val(constant.ToInt(y))
		if !ok {
			return nil, false
		}
		return constant.Shift(x, op, uint(shift)), true
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		return constant.MakeBool(constant.Compare(x, op, y)), true
	case token.QUO:
		if x.Kind() == constant.Int && y.Kind() == constant.Int {
			op = token.QUO_ASSIGN
		}
	}
	value := constant.BinaryOp(x, op, y)
	return value, value.Kind() != constant.Unknown
}

// convert applies a conversion to a named basic type. Conversions to other named types
// keep the value unchanged.
func convert(typeName string, value constant.Value) (constant.Value, bool) {
	switch typeName {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64",
		"uintptr", "byte", "rune":
		converted := constant.ToInt(value)
		return converted, converted.Kind() == constant.Int
	case "float32", "float64":
		converted := constant.ToFloat(value)
		return converted, converted.Kind() == constant.Float
	case "string":
		if value.Kind() == constant.Int {
			code, ok := constant.Int64Val(value)
			if !ok {
				return nil, false
			}
			return constant.MakeString(string(rune(code))), true
		}
	}
	return value, true
}

func typeIdent(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.ParenExpr:
		return typeIdent(t.X)
	}
	return ""
}

func goValue(value constant.Value) (interface{}, bool) {
	switch value.Kind() {
	case constant.Bool:
		return constant.BoolVal(value), true
	case constant.String:
		return constant.StringVal(value), true
	case constant.Int:
		if v, ok := constant.Int64Val(value); ok {
			return int(v), true
		}
		if v, ok := constant.Uint64Val(value); ok {
			return v, true
		}
	case constant.Float:
		v, _ := constant.Float64Val(value)
		return v, true
	}
	return nil, false
}
