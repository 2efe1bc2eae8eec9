package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/a-peyrard/treedi/slices"
	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"
)

type (
	// ProviderDefinition is a function annotated with @provider, bound in the container through a factory.
	ProviderDefinition struct {
		FnName     string
		ImportPath string
		Type       TypeRef

		Named       string
		Description string
		Transient   bool
		NonLazy     bool
		Unique      bool

		Dependencies []InjectAnnotation
		Conditions   []WhenAnnotation
	}

	// ConstructorDefinition is a function annotated with @constructor, registered in the descriptor table
	// as the way to build the type it returns.
	ConstructorDefinition struct {
		FnName     string
		ImportPath string
		Type       TypeRef

		Dependencies []InjectAnnotation
	}

	// ConfigDefinition is a struct annotated with @config, loaded from the environment.
	ConfigDefinition struct {
		TypeName   string
		ImportPath string
		Prefix     string
		Fields     bool
	}

	PackageInfo struct {
		Name string
		Path string
	}

	Definitions struct {
		Providers    []ProviderDefinition
		Constructors []ConstructorDefinition
		Configs      []ConfigDefinition
		// Files maps the absolute path of every scanned file to its package.
		Files map[string]PackageInfo
	}
)

func (p ProviderDefinition) String() string {
	return fmt.Sprintf(
		`✨ Provider: %s
Description: %s
Import Path: %s
Type: %s
Named: %s
Dependencies: [%s]
Conditions: [%s]`,
		p.FnName,
		p.Description,
		p.ImportPath,
		p.Type,
		p.Named,
		strings.Join(slices.Map(p.Dependencies, InjectAnnotation.String), ", "),
		strings.Join(slices.Map(p.Conditions, WhenAnnotation.String), ", "),
	)
}

func (c ConstructorDefinition) String() string {
	return fmt.Sprintf(
		`🏗️ Constructor: %s
Import Path: %s
Type: %s
Dependencies: [%s]`,
		c.FnName,
		c.ImportPath,
		c.Type,
		strings.Join(slices.Map(c.Dependencies, InjectAnnotation.String), ", "),
	)
}

func (c ConfigDefinition) String() string {
	return fmt.Sprintf(
		`📦 Config: %s
Import Path: %s
Prefix: %s`,
		c.TypeName,
		c.ImportPath,
		c.Prefix,
	)
}

// scan looks for annotated functions and structs in every package of the module rooted at dir.
func scan(logger zerolog.Logger, dir string) (*Definitions, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to load packages of %s:\n\t%w", dir, err)
	}

	defs := &Definitions{Files: make(map[string]PackageInfo)}
	for _, pkg := range pkgs {
		logger := logger.With().Str("package", pkg.PkgPath).Logger()
		logger.Debug().Msg("Scanning package")
		for _, file := range pkg.Syntax {
			filePath := canonicalPath(pkg.Fset.Position(file.Pos()).Filename)
			defs.Files[filePath] = PackageInfo{Name: file.Name.Name, Path: pkg.PkgPath}
			scanFile(&logger, pkg, file, defs)
		}
	}
	return defs, nil
}

func scanFile(logger *zerolog.Logger, pkg *packages.Package, file *ast.File, defs *Definitions) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Doc == nil || d.Recv != nil {
				continue
			}
			doc := d.Doc.Text()
			switch {
			case strings.Contains(doc, providerAnnotationTag):
				logger := logger.With().Str("provider", d.Name.Name).Logger()
				logger.Debug().Msg("=> Found provider")
				if def, ok := scanProvider(&logger, pkg, file, d); ok {
					defs.Providers = append(defs.Providers, def)
				}
			case strings.Contains(doc, constructorAnnotationTag):
				logger := logger.With().Str("constructor", d.Name.Name).Logger()
				logger.Debug().Msg("=> Found constructor")
				if def, ok := scanConstructor(&logger, pkg, file, d); ok {
					defs.Constructors = append(defs.Constructors, def)
				}
			}

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if _, ok := typeSpec.Type.(*ast.StructType); !ok {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil {
					doc = d.Doc
				}
				if doc == nil || !strings.Contains(doc.Text(), configAnnotationTag) {
					continue
				}
				logger := logger.With().Str("struct", typeSpec.Name.Name).Logger()
				logger.Debug().Msg("=> Found config")
				if !typeSpec.Name.IsExported() {
					logger.Warn().Msg("Config struct is not exported, skipping it")
					continue
				}
				annotation := parseAnnotation(&logger, doc.Text(), configAnnotationTag)
				warnUnknown(&logger, annotation, configProperties)
				defs.Configs = append(defs.Configs, ConfigDefinition{
					TypeName:   typeSpec.Name.Name,
					ImportPath: pkg.PkgPath,
					Prefix:     annotation.Get("prefix"),
					Fields:     annotation.Bool("fields"),
				})
			}
		}
	}
}

func scanProvider(logger *zerolog.Logger, pkg *packages.Package, file *ast.File, fn *ast.FuncDecl) (ProviderDefinition, bool) {
	typeRef, dependencies, ok := scanFunction(logger, pkg, file, fn)
	if !ok {
		return ProviderDefinition{}, false
	}

	annotation := parseAnnotation(logger, fn.Doc.Text(), providerAnnotationTag)
	warnUnknown(logger, annotation, providerProperties)
	named, _ := annotation.Named()

	transient := false
	switch scope := annotation.Get("scope"); scope {
	case "", "singleton":
	case "transient":
		transient = true
	default:
		logger.Warn().Msgf("Unknown scope %q, expected singleton or transient, using singleton", scope)
	}

	return ProviderDefinition{
		FnName:       fn.Name.Name,
		ImportPath:   pkg.PkgPath,
		Type:         typeRef,
		Named:        named,
		Description:  annotation.description,
		Transient:    transient,
		NonLazy:      annotation.Bool("nonlazy"),
		Unique:       annotation.Bool("unique"),
		Dependencies: dependencies,
		Conditions:   annotation.conditions,
	}, true
}

func scanConstructor(logger *zerolog.Logger, pkg *packages.Package, file *ast.File, fn *ast.FuncDecl) (ConstructorDefinition, bool) {
	typeRef, dependencies, ok := scanFunction(logger, pkg, file, fn)
	if !ok {
		return ConstructorDefinition{}, false
	}
	return ConstructorDefinition{
		FnName:       fn.Name.Name,
		ImportPath:   pkg.PkgPath,
		Type:         typeRef,
		Dependencies: dependencies,
	}, true
}

// scanFunction reads the returned type of an annotated function and the @inject annotation of each of
// its parameters.
func scanFunction(logger *zerolog.Logger, pkg *packages.Package, file *ast.File, fn *ast.FuncDecl) (TypeRef, []InjectAnnotation, bool) {
	if !fn.Name.IsExported() {
		logger.Warn().Msg("Function is not exported, skipping it")
		return TypeRef{}, nil, false
	}
	if fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0 {
		logger.Warn().Msg("Generic functions are not supported, skipping it")
		return TypeRef{}, nil, false
	}
	if fn.Type.Results == nil || len(fn.Type.Results.List) == 0 {
		logger.Warn().Msg("Function does not return anything, skipping it")
		return TypeRef{}, nil, false
	}
	typeRef, err := extractTypeRef(fn.Type.Results.List[0].Type, file, pkg.PkgPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Unsupported returned type, skipping it")
		return TypeRef{}, nil, false
	}

	var dependencies []InjectAnnotation
	if fn.Type.Params != nil {
		for _, param := range fn.Type.Params.List {
			if _, variadic := param.Type.(*ast.Ellipsis); variadic {
				logger.Warn().Msg("Variadic functions are not supported, skipping it")
				return TypeRef{}, nil, false
			}
			comment := findCommentForParam(pkg.Fset, file, param)
			names := len(param.Names)
			if names == 0 {
				names = 1
			}
			for i := 0; i < names; i++ {
				paramLogger := *logger
				if i < len(param.Names) {
					paramLogger = logger.With().Str("param", param.Names[i].Name).Logger()
				}
				dependencies = append(dependencies, parseInjectAnnotation(&paramLogger, comment))
			}
		}
	}
	return typeRef, dependencies, true
}

func findCommentForParam(fset *token.FileSet, file *ast.File, param *ast.Field) string {
	paramLine := fset.Position(param.Pos()).Line

	for _, commentGroup := range file.Comments {
		for _, comment := range commentGroup.List {
			commentLine := fset.Position(comment.Pos()).Line
			if commentLine == paramLine && strings.Contains(comment.Text, injectAnnotationTag) {
				return comment.Text
			}
		}
	}
	return ""
}

func warnUnknown(logger *zerolog.Logger, annotation Annotation, known []string) {
	if unknown := annotation.UnknownProperties(known); len(unknown) > 0 {
		logger.Warn().Msgf("Unknown properties %v, skipping them", unknown)
	}
}

// canonicalPath makes file paths comparable whatever the symlinks on the way.
func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path
}
