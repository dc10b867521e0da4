package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"property-mapper/internal/config"
)

const (
	inventoryPkg = "property-mapper/examples/inventory"
	legacyPkg    = "property-mapper/examples/inventory/legacy"
	shippingPkg  = "property-mapper/examples/inventory/shipping"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func lines(out string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(out, "\n") {
		rows = append(rows, strings.Fields(line))
	}

	return rows
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "property-mapper v"+Version+"\nmodule: property-mapper\n", out)
}

func TestDescribe_Table(t *testing.T) {
	out, _, err := run(t, "describe", inventoryPkg, "Product")
	require.NoError(t, err)

	rows := lines(out)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{inventoryPkg + ".Product"}, rows[0])

	assert.Contains(t, rows, []string{"PROPERTY", "COLUMN", "TYPE", "ROLE", "CODEC"})
	assert.Contains(t, rows, []string{"ID", "id", "uuid.UUID", "pk", "0", "*codec.UUIDCodec"})
	assert.Contains(t, rows, []string{"SKU", "sku", "string", "cc", "0", "-"})
	assert.Contains(t, rows, []string{"createdAt", "writetime(sku)", "time.Time", "computed", "-"})
	assert.Contains(t, rows, []string{"name", "display_name", "string", "-", "-"})
	assert.NotContains(t, out, "excluded:")
}

func TestDescribe_Explain(t *testing.T) {
	out, _, err := run(t, "describe", "--explain", inventoryPkg, "Product")
	require.NoError(t, err)

	assert.Contains(t, out, `excluded: cache (field Cache is tagged cql:"-")`)
	assert.Contains(t, out, "excluded: discontinued (marked transient)")
}

func TestDescribe_ExplainUnexported(t *testing.T) {
	out, _, err := run(t, "describe", "--explain", shippingPkg, "Shipment")
	require.NoError(t, err)

	assert.Contains(t, out, "excluded: note (unexported field without accessors)")
	assert.Contains(t, out, "excluded: tracked (unexported field without accessors)")
	assert.NotContains(t, out, "excluded: carrier")

	plain, _, err := run(t, "describe", shippingPkg, "Shipment")
	require.NoError(t, err)
	assert.NotContains(t, plain, "excluded:")
}

func TestDescribe_YAML(t *testing.T) {
	out, _, err := run(t, "describe", "--format", "yaml", "--explain", inventoryPkg, "Order")
	require.NoError(t, err)

	var docs []mappingDoc
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, inventoryPkg+".Order", doc.Type)

	var columns []string
	for _, p := range doc.Properties {
		columns = append(columns, p.Column)
	}

	assert.Equal(t, []string{"customerid", "orderedat", "line", "status", "totalcents"}, columns)
	assert.Equal(t, "clustering_column", doc.Properties[2].Role)
	require.NotNil(t, doc.Properties[2].Position)
	assert.Equal(t, 1, *doc.Properties[2].Position)
	assert.Nil(t, doc.Properties[3].Position)

	require.Len(t, doc.Excluded, 1)
	assert.Equal(t, "class", doc.Excluded[0].Name)
}

func TestDescribe_AllStructs(t *testing.T) {
	out, _, err := run(t, "describe", inventoryPkg)
	require.NoError(t, err)

	for _, name := range []string{"Customer", "Entity", "Order", "Product"} {
		assert.Contains(t, out, inventoryPkg+"."+name+"\n")
	}
}

func TestDescribe_Errors(t *testing.T) {
	_, _, err := run(t, "describe", inventoryPkg, "Prodcut")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean Product?")

	_, _, err = run(t, "describe", "--format", "xml", inventoryPkg)
	assert.ErrorContains(t, err, `unknown format "xml"`)

	_, stderr, err := run(t, "describe", legacyPkg)
	assert.ErrorContains(t, err, "2 of 2 types could not be mapped")
	assert.Contains(t, stderr, "Broken")

	_, _, err = run(t, "describe", "--access", "sideways", inventoryPkg)
	assert.ErrorContains(t, err, "invalid config")

	_, _, err = run(t, "describe")
	assert.Error(t, err)
}

func TestDescribe_Settings(t *testing.T) {
	t.Setenv("PROPMAP_STRATEGY", "opt-in")

	out, _, err := run(t, "describe", "--format", "yaml", inventoryPkg, "Customer")
	require.NoError(t, err)

	var docs []mappingDoc
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)

	var names []string
	for _, p := range docs[0].Properties {
		names = append(names, p.Name)
	}

	assert.Equal(t, []string{"ID", "email"}, names)
}

func TestLoadSettings_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1"
access: accessors
strategy: opt-in
transient_properties: [version]
hierarchy:
  highest_ancestor: example.com/shop.Base
`), 0o644))

	t.Setenv("PROPMAP_STRATEGY", "opt-out")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerSettingFlags(fs)
	require.NoError(t, fs.Parse([]string{"--access=fields"}))

	f, err := loadSettings(fs, path)
	require.NoError(t, err)

	assert.Equal(t, config.AccessFields.String(), f.Access, "flags beat the file")
	assert.Equal(t, config.OptOutStrategy.String(), f.Strategy, "environment beats the file")
	assert.Equal(t, []string{"version"}, f.TransientProperties)
	assert.Equal(t, "example.com/shop.Base", f.Hierarchy.HighestAncestor)
	require.NotNil(t, f.Hierarchy.Enabled)
	assert.True(t, *f.Hierarchy.Enabled)
	assert.True(t, f.Validate().IsValid())
}

func TestLoadSettings_Defaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerSettingFlags(fs)
	require.NoError(t, fs.Parse([]string{"--hierarchy=false"}))

	f, err := loadSettings(fs, "")
	require.NoError(t, err)

	assert.Equal(t, config.CurrentVersion, f.Version)
	assert.Equal(t, config.AccessBoth.String(), f.Access)
	assert.Nil(t, f.TransientProperties, "the default denylist is kept")
	require.NotNil(t, f.Hierarchy.Enabled)
	assert.False(t, *f.Hierarchy.Enabled)

	_, err = loadSettings(fs, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGenerate_DryRun(t *testing.T) {
	out, _, err := run(t, "generate", "--dry-run", "--suffix", "Static", inventoryPkg, "Order")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "// "+inventoryPkg+"/cql_descriptors.go\n"))
	assert.Contains(t, out, "func OrderStatic() *introspect.StaticType {")
	assert.NotContains(t, out, "ProductStatic")
}

func TestGenerate_Output(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "generate", "--output", dir, "--file", "descriptors.go", "--no-comments", inventoryPkg)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+inventoryPkg+"/descriptors.go\n", out)

	src, err := os.ReadFile(filepath.Join(dir, "descriptors.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "func ProductDescriptor()")
	assert.NotContains(t, string(src), "without reflection")
}

func TestGenerate_Errors(t *testing.T) {
	_, _, err := run(t, "generate", "--dry-run", legacyPkg)
	assert.ErrorContains(t, err, "Broken")

	_, _, err = run(t, "generate", "--dry-run", inventoryPkg, "Named")
	assert.ErrorContains(t, err, "not-a-struct")
}
