package main

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"
)

type (
	// TypeRef is a type expression to render in the generated file, e.g. "[]*" + "Runner" from
	// "github.com/example/project/runners".
	TypeRef struct {
		Prefix     string
		ImportPath string
		Name       string
	}
)

func (t TypeRef) String() string {
	if t.ImportPath == "" {
		return t.Prefix + t.Name
	}
	return fmt.Sprintf("%s%s.%s", t.Prefix, t.ImportPath, t.Name)
}

// extractTypeRef resolves the type expression of a declaration of file, part of the package pkgPath.
// Only named types, pointers and slices of them are supported.
func extractTypeRef(expr ast.Expr, file *ast.File, pkgPath string) (TypeRef, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		if types.Universe.Lookup(t.Name) != nil {
			return TypeRef{Name: t.Name}, nil
		}
		return TypeRef{ImportPath: pkgPath, Name: t.Name}, nil

	case *ast.StarExpr:
		ref, err := extractTypeRef(t.X, file, pkgPath)
		ref.Prefix = "*" + ref.Prefix
		return ref, err

	case *ast.ArrayType:
		if t.Len != nil {
			return TypeRef{}, fmt.Errorf("arrays are not supported, use a slice")
		}
		ref, err := extractTypeRef(t.Elt, file, pkgPath)
		ref.Prefix = "[]" + ref.Prefix
		return ref, err

	case *ast.SelectorExpr:
		ident, ok := t.X.(*ast.Ident)
		if !ok {
			return TypeRef{}, fmt.Errorf("unsupported qualified type %s", formatType(t))
		}
		importPath := findImportPathForAlias(file, ident.Name)
		if importPath == "" {
			return TypeRef{}, fmt.Errorf("no import found for package %s", ident.Name)
		}
		return TypeRef{ImportPath: importPath, Name: t.Sel.Name}, nil
	}

	return TypeRef{}, fmt.Errorf("unsupported type %s", formatType(expr))
}

func findImportPathForAlias(file *ast.File, packageAlias string) string {
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		var alias string
		if imp.Name != nil {
			alias = imp.Name.Name
		} else {
			parts := strings.Split(importPath, "/")
			alias = parts[len(parts)-1]
		}

		if alias == packageAlias {
			return importPath
		}
	}
	return ""
}

func formatType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + formatType(t.X)
	case *ast.SelectorExpr:
		return formatType(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		return "[]" + formatType(t.Elt)
	case *ast.MapType:
		return "map[" + formatType(t.Key) + "]" + formatType(t.Value)
	case *ast.ChanType:
		return "chan " + formatType(t.Value)
	case *ast.FuncType:
		return "func(...)"
	case *ast.InterfaceType:
		return "interface{}"
	default:
		return "unknown"
	}
}
