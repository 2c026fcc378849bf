package fields

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/typekit/pkg/derive"
	"github.com/dkoosis/typekit/pkg/lineage"
	"github.com/dkoosis/typekit/pkg/registry"
)

func testDeriver(t *testing.T) (*derive.Deriver, *registry.Registry) {
	t.Helper()
	reg, err := registry.Embedded()
	require.NoError(t, err)
	return derive.New(reg, lineage.New(reg)), reg
}

func TestReadJSONL_CollectsBadLines(t *testing.T) {
	input := strings.Join([]string{
		`{"entity":"customer","field":"id","type":"customer_id","key":"primary_key","nullable":false}`,
		``,
		`{"entity":"customer","field":"email","type":"email"}`,
		`{not json}`,
		`{"entity":"customer","field":"tier"}`,
		`{"entity":"order","field":"id","type":"uuid","key":"fk"}`,
		`{"entity":"order","field":"total","type":"price","exclude":["R40"]}`,
	}, "\n")

	decls, bad, err := ReadJSONL(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, decls, 3)
	assert.Equal(t, derive.KeyPrimaryKey, decls[0].Key)
	require.NotNil(t, decls[0].Nullable)
	assert.False(t, *decls[0].Nullable)
	assert.Nil(t, decls[1].Nullable)
	assert.Equal(t, []string{"R40"}, decls[2].Exclude)

	require.Len(t, bad, 3)
	assert.Equal(t, 4, bad[0].Line)
	assert.Contains(t, bad[0].Error(), "invalid JSON")
	assert.Equal(t, 5, bad[1].Line)
	assert.Contains(t, bad[1].Error(), "missing type")
	assert.Equal(t, 6, bad[2].Line)
	assert.Contains(t, bad[2].Error(), "invalid key type")
	assert.NotContains(t, bad[2].Error(), "invalid JSON")
	assert.ErrorIs(t, bad[2], derive.ErrInvalidKeyType)
}

func TestReadJSONL_BadKeyIsDeclarationError(t *testing.T) {
	_, bad, err := ReadJSONL(strings.NewReader(`{"field":"id","type":"sku","key":"bogus"}`))
	require.NoError(t, err)

	require.Len(t, bad, 1)
	assert.Equal(t, `line 1: field declaration: invalid key type "bogus" (want none, primary_key or unique)`, bad[0].Error())
}

func TestReadYAML(t *testing.T) {
	input := `fields:
  - {entity: vendor, field: id, type: vendor_id, key: pk, nullable: false}
  - {entity: vendor, field: iban, type: iban}
`
	decls, err := ReadYAML(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, derive.KeyPrimaryKey, decls[0].Key)

	_, err = ReadYAML(strings.NewReader("fields:\n  - {entity: vendor, type: iban}\n"))
	require.ErrorContains(t, err, "missing field name")

	decls, err = ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestReadFile_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "fields.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("fields:\n  - {field: a, type: email}\n"), 0o644))
	jsonlPath := filepath.Join(dir, "fields.jsonl")
	require.NoError(t, os.WriteFile(jsonlPath, []byte(`{"field":"a","type":"email"}`+"\n"), 0o644))

	for _, p := range []string{yamlPath, jsonlPath} {
		decls, bad, err := ReadFile(p)
		require.NoError(t, err, p)
		assert.Empty(t, bad, p)
		require.Len(t, decls, 1, p)
		assert.Equal(t, "email", decls[0].Type)
	}

	_, _, err := ReadFile(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)
}

func TestDeriveAndWriteJSONL(t *testing.T) {
	d, _ := testDeriver(t)
	notNull := false
	decls := []Declaration{
		{Entity: "customer", Field: "id", Type: "customer_id", Key: derive.KeyPrimaryKey, Nullable: &notNull},
		{Entity: "order", Field: "total", Type: "price", Exclude: []string{"R40"}},
	}

	results := Derive(d, decls)
	require.Len(t, results, 2)
	assert.Equal(t, derive.SourcePrimaryKey, results[0].Derived.RuleSources["R1"])
	assert.False(t, results[1].Derived.Has("R40"))

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "customer", first["entity"])
	assert.Equal(t, "primary_key", first["key"])
	derived, ok := first["derived"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "customer_id", derived["type_used"])
}

func TestSummarize(t *testing.T) {
	d, reg := testDeriver(t)
	results := Derive(d, []Declaration{
		{Field: "a", Type: "email"},
		{Field: "b", Type: "mystery"},
		{Field: "c", Type: "mystery"},
	})

	s := Summarize(results, reg)
	assert.Equal(t, 3, s.Fields)
	total := 0
	for _, n := range s.BySeverity {
		total += n
	}
	assert.Equal(t, s.Rules, total)
	assert.Equal(t, []string{"mystery"}, s.UnknownTypes)

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	assert.Contains(t, buf.String(), "3 fields")
	assert.Contains(t, buf.String(), `unknown type "mystery"`)
}

func TestLineErrorsToSARIF(t *testing.T) {
	_, bad, err := ReadJSONL(strings.NewReader("{}\n"))
	require.NoError(t, err)

	results := LineErrorsToSARIF(`data\fields.jsonl`, bad)
	require.Len(t, results, 1)
	assert.Equal(t, "field-declaration", results[0].RuleID)
	assert.Equal(t, 1, results[0].Locations[0].PhysicalLocation.Region.StartLine)
}
