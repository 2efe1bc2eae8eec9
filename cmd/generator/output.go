package main

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/a-peyrard/treedi/set"
	"golang.org/x/tools/imports"
)

const (
	treediImportPath       = "github.com/a-peyrard/treedi"
	treediConfigImportPath = "github.com/a-peyrard/treedi/config"
)

type (
	importSpec struct {
		Alias string
		Path  string
	}

	callData struct {
		Func string
		Deps []string
	}

	providerData struct {
		callData
		Type        string
		Named       string
		Description string
		Scope       string
		NonLazy     bool
		Unique      bool
		Conditions  []string
	}

	configData struct {
		Type   string
		Prefix string
		Fields bool
	}

	templateData struct {
		PackageName  string
		Treedi       string
		Config       string
		Imports      []importSpec
		Constructors []callData
		Configs      []configData
		Providers    []providerData
	}
)

var (
	// identifiers of the generated function, never used as import aliases
	reservedIdentifiers = []string{"c", "table", "err"}

	versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

	registryTemplate = template.Must(template.New("registry").Parse(`// Code generated by treedi generator. DO NOT EDIT.

package {{.PackageName}}

import (
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)

// Register binds the annotated components of the module in the container.
func Register(c *{{.Treedi}}.Container) error {
{{- if .Constructors}}
	table := c.Descriptors()
{{- range .Constructors}}
	if err := table.Constructor({{.Func}}{{range .Deps}}, {{.}}{{end}}); err != nil {
		return err
	}
{{- end}}
{{- end}}
{{- range .Configs}}
	{{$.Treedi}}.BindConfig[{{.Type}}](c{{if .Prefix}}, {{$.Config}}.WithEnvPrefix({{printf "%q" .Prefix}}){{end}})
{{- if .Fields}}
	{{$.Treedi}}.BindConfigFields[{{.Type}}](c)
{{- end}}
{{- end}}
{{- range .Providers}}
	{{$.Treedi}}.Bind[{{.Type}}](c).
{{- if .Named}}
		Named({{printf "%q" .Named}}).
{{- end}}
		FromFactory({{.Func}}{{range .Deps}}, {{.}}{{end}}).
{{- range .Conditions}}
		When({{.}}).
{{- end}}
{{- if .NonLazy}}
		NonLazy().
{{- end}}
{{- if .Unique}}
		Unique().
{{- end}}
{{- if .Description}}
		Description({{printf "%q" .Description}}).
{{- end}}
		{{.Scope}}()
{{- end}}
	return nil
}
`))
)

// generateCode writes the Register function of the target package in outputPath.
func generateCode(outputPath string, target PackageInfo, defs *Definitions) error {
	src, err := render(outputPath, target, defs)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, src, 0o644)
}

func render(outputPath string, target PackageInfo, defs *Definitions) ([]byte, error) {
	aliases := newImportAliases(target.Path)
	data := templateData{
		PackageName: target.Name,
		Treedi:      aliases.alias(treediImportPath),
	}
	if len(defs.Configs) > 0 {
		data.Config = aliases.alias(treediConfigImportPath)
	}
	// aliases are given in a stable order, whatever the scan order
	for _, path := range definitionImports(defs) {
		aliases.alias(path)
	}

	for _, def := range defs.Constructors {
		data.Constructors = append(data.Constructors, callData{
			Func: generateFQN(def.ImportPath, def.FnName, aliases.byPath),
			Deps: dependencyExpressions(def.Dependencies, data.Treedi),
		})
	}
	for _, def := range defs.Configs {
		data.Configs = append(data.Configs, configData{
			Type:   generateFQN(def.ImportPath, def.TypeName, aliases.byPath),
			Prefix: def.Prefix,
			Fields: def.Fields,
		})
	}
	for _, def := range defs.Providers {
		provider := providerData{
			callData: callData{
				Func: generateFQN(def.ImportPath, def.FnName, aliases.byPath),
				Deps: dependencyExpressions(def.Dependencies, data.Treedi),
			},
			Type:        generateFQN(def.Type.ImportPath, def.Type.Prefix+def.Type.Name, aliases.byPath),
			Named:       def.Named,
			Description: def.Description,
			Scope:       "AsSingleton",
			NonLazy:     def.NonLazy,
			Unique:      def.Unique,
		}
		if def.Transient {
			provider.Scope = "AsTransient"
		}
		for _, condition := range def.Conditions {
			operator := "Equals"
			if condition.NotEquals {
				operator = "NotEquals"
			}
			provider.Conditions = append(
				provider.Conditions,
				fmt.Sprintf("%s.When(%q).%s(%q)", data.Treedi, condition.Named, operator, condition.Value),
			)
		}
		data.Providers = append(data.Providers, provider)
	}
	data.Imports = aliases.imports()

	var buf bytes.Buffer
	if err := registryTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render registry:\n\t%w", err)
	}
	src, err := imports.Process(outputPath, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code:\n\t%w\n%s", err, buf.String())
	}
	return src, nil
}

// dependencyExpressions renders one builder per parameter, dropping the trailing default ones.
func dependencyExpressions(dependencies []InjectAnnotation, treediAlias string) []string {
	expressions := make([]string, len(dependencies))
	last := -1
	for i, dependency := range dependencies {
		expressions[i] = dependency.Expression(treediAlias)
		if expressions[i] != "" {
			last = i
		}
	}
	expressions = expressions[:last+1]
	for i := range expressions {
		if expressions[i] == "" {
			expressions[i] = treediAlias + ".Inject.Auto()"
		}
	}
	return expressions
}

func definitionImports(defs *Definitions) []string {
	paths := set.New[string]()
	for _, def := range defs.Constructors {
		paths.Add(def.ImportPath)
	}
	for _, def := range defs.Configs {
		paths.Add(def.ImportPath)
	}
	for _, def := range defs.Providers {
		paths.Add(def.ImportPath)
		if def.Type.ImportPath != "" {
			paths.Add(def.Type.ImportPath)
		}
	}
	sorted := make([]string, 0, paths.Size())
	for path := range paths {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)
	return sorted
}

type importAliases struct {
	target string
	byPath map[string]string
	used   set.Set[string]
}

func newImportAliases(target string) *importAliases {
	used := set.New[string]()
	for _, identifier := range reservedIdentifiers {
		used.Add(identifier)
	}
	return &importAliases{target: target, byPath: make(map[string]string), used: used}
}

// alias returns the alias of the import path, picking one on first use. The target package is not
// imported and has no alias.
func (a *importAliases) alias(path string) string {
	if path == a.target {
		return ""
	}
	if alias, found := a.byPath[path]; found {
		return alias
	}
	alias := findSuitableAlias(path, a.used)
	a.used.Add(alias)
	a.byPath[path] = alias
	return alias
}

func (a *importAliases) imports() []importSpec {
	specs := make([]importSpec, 0, len(a.byPath))
	for path, alias := range a.byPath {
		specs = append(specs, importSpec{Alias: alias, Path: path})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	return specs
}

// findSuitableAlias uses the last token of the import path, prefixed by the initials of the previous
// tokens until it is free, then suffixed by a counter.
func findSuitableAlias(pkg string, aliases set.Set[string]) string {
	tokens := strings.Split(pkg, "/")
	if len(tokens) > 1 && versionSuffix.MatchString(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}

	alias := sanitizeIdentifier(tokens[len(tokens)-1])
	for i := len(tokens) - 2; aliases.Contains(alias) && i >= 0; i-- {
		initial := sanitizeIdentifier(tokens[i])
		alias = initial[:1] + alias
	}
	if !aliases.Contains(alias) {
		return alias
	}

	for counter := 0; ; counter++ {
		candidate := alias + strconv.Itoa(counter)
		if !aliases.Contains(candidate) {
			return candidate
		}
	}
}

func sanitizeIdentifier(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	identifier := b.String()
	if identifier == "" || (identifier[0] >= '0' && identifier[0] <= '9') {
		identifier = "p" + identifier
	}
	return identifier
}

// generateFQN qualifies the type or function name with the alias of its import path. Names of the
// target package, or of no package, stay unqualified.
func generateFQN(importPath, typeName string, importWithAlias map[string]string) string {
	if importPath == "" {
		return typeName
	}
	alias, found := importWithAlias[importPath]
	if !found || alias == "" {
		return typeName
	}

	name := strings.TrimLeft(typeName, "*[]")
	prefix := typeName[:len(typeName)-len(name)]
	return prefix + alias + "." + name
}
