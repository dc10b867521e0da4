package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"property-mapper/internal/diagnostic"
	"property-mapper/internal/mapper"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

type renderer func(w io.Writer, mappings []*mapper.Mapping, explain bool) error

func rendererFor(format string) (renderer, error) {
	switch format {
	case formatTable:
		return renderTable, nil
	case formatYAML:
		return renderYAML, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want %s or %s)", format, formatTable, formatYAML)
	}
}

var tableHeader = []string{"PROPERTY", "COLUMN", "TYPE", "ROLE", "CODEC"}

func renderTable(w io.Writer, mappings []*mapper.Mapping, explain bool) error {
	bold := color.New(color.Bold)
	faint := color.New(color.FgHiBlack)
	warn := color.New(color.FgYellow)

	for i, m := range mappings {
		if i > 0 {
			fmt.Fprintln(w)
		}

		bold.Fprintln(w, m.Type.String())

		rows := [][]string{tableHeader}
		for _, p := range ordered(m) {
			rows = append(rows, []string{p.PropertyName(), p.ColumnName(), p.Type().String(), role(p), codecName(p)})
		}

		widths := columnWidths(rows)

		for r, row := range rows {
			var b strings.Builder

			b.WriteString("  ")

			for c, cell := range row {
				padded := fmt.Sprintf("%-*s", widths[c], cell)
				if c == len(row)-1 {
					padded = cell
				}

				b.WriteString(colorize(r, c, row, padded))

				if c < len(row)-1 {
					b.WriteString("  ")
				}
			}

			fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		}

		for _, d := range m.Diagnostics.Warnings {
			warn.Fprintf(w, "  warning: %s: %s\n", d.Property, d.Message)
		}

		if explain {
			for _, d := range excluded(m) {
				faint.Fprintf(w, "  excluded: %s (%s)\n", d.Property, d.Message)
			}
		}
	}

	return nil
}

// excluded lists the members left out of m, transient properties first.
func excluded(m *mapper.Mapping) []diagnostic.Diagnostic {
	return append(m.Diagnostics.ByCode(diagnostic.CodeTransient), m.Diagnostics.ByCode(diagnostic.CodeUnexported)...)
}

// colorize highlights the header row and key roles.
func colorize(row, col int, cells []string, text string) string {
	switch {
	case row == 0:
		return color.New(color.Faint).Sprint(text)
	case col != 3:
		return text
	case strings.HasPrefix(cells[3], "pk"):
		return color.YellowString("%s", text)
	case strings.HasPrefix(cells[3], "cc"):
		return color.CyanString("%s", text)
	case cells[3] == "computed":
		return color.MagentaString("%s", text)
	default:
		return text
	}
}

func columnWidths(rows [][]string) []int {
	widths := make([]int, len(tableHeader))

	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], len(cell))
		}
	}

	return widths
}

// ordered lists the partition key, the clustering columns, then the
// regular properties.
func ordered(m *mapper.Mapping) []*mapper.MappedProperty {
	var out []*mapper.MappedProperty

	out = append(out, m.PartitionKey()...)
	out = append(out, m.ClusteringColumns()...)
	out = append(out, m.Regular()...)

	return out
}

func role(p *mapper.MappedProperty) string {
	switch {
	case p.IsPartitionKey():
		return fmt.Sprintf("pk %d", p.Position())
	case p.IsClusteringColumn():
		return fmt.Sprintf("cc %d", p.Position())
	case p.IsComputed():
		return "computed"
	default:
		return "-"
	}
}

func codecName(p *mapper.MappedProperty) string {
	if p.CustomCodec() == nil {
		return "-"
	}

	return fmt.Sprintf("%T", p.CustomCodec())
}

type mappingDoc struct {
	Type       string        `yaml:"type"`
	Properties []propertyDoc `yaml:"properties"`
	Excluded   []excludedDoc `yaml:"excluded,omitempty"`
	Warnings   []string      `yaml:"warnings,omitempty"`
}

type propertyDoc struct {
	Name     string `yaml:"name"`
	Column   string `yaml:"column"`
	Type     string `yaml:"type"`
	Role     string `yaml:"role,omitempty"`
	Position *int   `yaml:"position,omitempty"`
	Codec    string `yaml:"codec,omitempty"`
}

type excludedDoc struct {
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
}

func renderYAML(w io.Writer, mappings []*mapper.Mapping, explain bool) error {
	docs := make([]mappingDoc, 0, len(mappings))

	for _, m := range mappings {
		doc := mappingDoc{Type: m.Type.String()}

		for _, p := range ordered(m) {
			pd := propertyDoc{Name: p.PropertyName(), Column: p.ColumnName(), Type: p.Type().String()}

			switch {
			case p.IsPartitionKey():
				pd.Role = "partition_key"
			case p.IsClusteringColumn():
				pd.Role = "clustering_column"
			case p.IsComputed():
				pd.Role = "computed"
			}

			if p.Position() != mapper.NoPosition {
				pos := p.Position()
				pd.Position = &pos
			}

			if p.CustomCodec() != nil {
				pd.Codec = codecName(p)
			}

			doc.Properties = append(doc.Properties, pd)
		}

		for _, d := range m.Diagnostics.Warnings {
			doc.Warnings = append(doc.Warnings, d.String())
		}

		if explain {
			for _, d := range excluded(m) {
				doc.Excluded = append(doc.Excluded, excludedDoc{Name: d.Property, Reason: d.Message})
			}
		}

		docs = append(docs, doc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return enc.Close()
}
