package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"slices"
	"strings"
	"text/template"

	"property-mapper/internal/analyze"
	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Filename is the name of the file generated in each package.
	Filename string
	// FuncSuffix is appended to the type name to name descriptor functions.
	FuncSuffix string
	// DebugDir receives the unformatted source when formatting fails.
	DebugDir string
	// GenerateComments adds doc comments to descriptor functions.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Filename:         "cql_descriptors.go",
		FuncSuffix:       "Descriptor",
		GenerateComments: true,
	}
}

// Generator produces static descriptor source files.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	defaults := DefaultGeneratorConfig()

	if config.Filename == "" {
		config.Filename = defaults.Filename
	}

	if config.FuncSuffix == "" {
		config.FuncSuffix = defaults.FuncSuffix
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated source file.
type GeneratedFile struct {
	Dir      string // Directory of the package the file belongs to
	Package  string
	Filename string
	Content  []byte
}

// Generate emits one file per package describing targets. With no targets,
// every struct of the graph is described.
func (g *Generator) Generate(graph *analyze.Graph, targets ...*analyze.SourceType) ([]GeneratedFile, error) {
	if len(targets) == 0 {
		targets = graph.Structs()
	}

	byPkg := make(map[string][]*analyze.SourceType)

	for _, t := range targets {
		if t.IsInterface() {
			return nil, mapperr.Configuration(t.ID().String(), "", "interfaces cannot be described")
		}

		byPkg[t.ID().PkgPath] = append(byPkg[t.ID().PkgPath], t)
	}

	paths := make([]string, 0, len(byPkg))
	for p := range byPkg {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	files := make([]GeneratedFile, 0, len(paths))

	for _, p := range paths {
		info := graph.Packages[p]
		if info == nil {
			return nil, mapperr.Configuration(p, "", "package %s was not loaded", p)
		}

		file, err := g.generatePackage(info, byPkg[p])
		if err != nil {
			return nil, err
		}

		files = append(files, file)
	}

	return files, nil
}

// templateData is the input of the file template.
type templateData struct {
	PackageName string
	Imports     []importSpec
	Comments    bool
	Descriptors []descriptorData
	Contracts   []contractData
}

func (g *Generator) generatePackage(info *analyze.PackageInfo, ts []*analyze.SourceType) (GeneratedFile, error) {
	ordered, err := orderTypes(ts)
	if err != nil {
		return GeneratedFile{}, mapperr.Configuration(info.Path, "", "ordering types: %v", err)
	}

	b := newTemplateBuilder(info.Path, g.config.FuncSuffix)
	data := templateData{PackageName: info.Name, Comments: g.config.GenerateComments}

	for _, t := range ordered {
		d, err := b.descriptor(t)
		if err != nil {
			return GeneratedFile{}, err
		}

		data.Descriptors = append(data.Descriptors, d)
	}

	data.Contracts = b.sortedContracts()
	data.Imports = b.fm.sortedImports()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return GeneratedFile{}, fmt.Errorf("executing template: %w", err)
	}

	content, err := format.Source(buf.Bytes())
	if err != nil {
		_ = writeDebugUnformatted(g.config.DebugDir, g.config.Filename, buf.Bytes())
		return GeneratedFile{}, fmt.Errorf("formatting %s: %w", info.Path, err)
	}

	return GeneratedFile{
		Dir:      info.Dir,
		Package:  info.Path,
		Filename: g.config.Filename,
		Content:  content,
	}, nil
}

// orderTypes sorts types by name, then puts ancestors before the types
// embedding them.
func orderTypes(ts []*analyze.SourceType) ([]*analyze.SourceType, error) {
	sorted := slices.Clone(ts)
	slices.SortFunc(sorted, func(a, b *analyze.SourceType) int {
		return strings.Compare(a.ID().Name, b.ID().Name)
	})

	index := make(map[introspect.TypeID]int, len(sorted))
	for i, t := range sorted {
		index[t.ID()] = i
	}

	order, err := topoSort(len(sorted), func(i int) []int {
		anc, ok := sorted[i].Ancestor()
		if !ok {
			return nil
		}

		if j, ok := index[anc.ID()]; ok {
			return []int{j}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*analyze.SourceType, 0, len(order))
	for _, i := range order {
		out = append(out, sorted[i])
	}

	return out, nil
}

var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ", ") },
}).Parse(`// Code generated by property-mapper. DO NOT EDIT.

package {{.PackageName}}

import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{range .Descriptors}}
{{if $.Comments}}// {{.Func}} describes {{.TypeName}} without reflection.
{{end -}}
func {{.Func}}() *introspect.StaticType {
{{- range .Levels}}
	{{.Var}} := introspect.NewStatic(introspect.TypeID{PkgPath: {{printf "%q" .PkgPath}}, Name: {{printf "%q" .Name}}})
{{- if .Ancestor}}.
		WithAncestor({{.Ancestor}})
{{- end}}
{{- if .Contracts}}.
		WithContracts({{join .Contracts}})
{{- end}}
{{- if .Slots}}.
		WithSlots(
{{- range .Slots}}
			{{.}},
{{- end}}
		)
{{- end}}
{{- if .Methods}}.
		WithMethods(
{{- range .Methods}}
			{{.}},
{{- end}}
		)
{{- end}}
{{end}}
	return {{.Result}}
}
{{end}}
{{range .Contracts}}
func {{.Func}}() *introspect.StaticType {
	return introspect.NewStaticInterface(introspect.TypeID{PkgPath: {{printf "%q" .PkgPath}}, Name: {{printf "%q" .Name}}})
{{- if .Methods}}.
		WithMethods(
{{- range .Methods}}
			{{.}},
{{- end}}
		)
{{- end}}
}
{{end}}`))
