package lineage

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dkoosis/typekit/pkg/registry"
)

func embedded(t testing.TB) *registry.Registry {
	t.Helper()
	reg, err := registry.Embedded()
	require.NoError(t, err)
	return reg
}

// captureLogger returns a logger writing into the returned buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func TestLineage_KnownTypes(t *testing.T) {
	r := New(embedded(t))

	tests := map[string][]string{
		"string":      {"string"},
		"uuid":        {"uuid"},
		"email":       {"string", "email"},
		"customer_id": {"string", "identifier", "customer_id"},
		"price":       {"decimal", "currency_amount", "price"},
		"record_uuid": {"uuid", "record_uuid"},
	}
	for name, want := range tests {
		assert.Equal(t, want, r.Lineage(name), name)
	}
}

func TestLineage_UnknownTypeFallsBackAndWarnsOnce(t *testing.T) {
	logger, buf := captureLogger()
	r := New(embedded(t), WithLogger(logger))

	got := r.Lineage("totally-unknown-type")
	assert.Equal(t, r.Lineage("string"), got)
	_ = r.Lineage("totally-unknown-type")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "falling back to generic lineage"))
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "type=totally-unknown-type")
}

func TestResolve_ReportsUnknown(t *testing.T) {
	r := New(embedded(t))

	_ = r.Lineage("mystery")
	_, err := r.Resolve("mystery")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))

	path, err := r.Resolve("sku")
	require.NoError(t, err)
	assert.Equal(t, []string{"string", "identifier", "sku"}, path)
}

func TestLineage_CycleDegradesToFallback(t *testing.T) {
	reg := registry.New(nil,
		[]registry.CoreType{{Name: "string"}},
		[]registry.TypeAlias{
			{Name: "a", Extends: "b"},
			{Name: "b", Extends: "a"},
		},
	)
	logger, buf := captureLogger()
	r := New(reg, WithLogger(logger))

	_, err := r.Resolve("a")
	require.ErrorIs(t, err, ErrCycle)

	assert.Equal(t, []string{"string"}, r.Lineage("a"))
	assert.Contains(t, buf.String(), "level=ERROR")

	// A cached fallback must not mask the error.
	_, err = r.Resolve("a")
	require.ErrorIs(t, err, ErrCycle)
}

func TestLineage_MaxDepth(t *testing.T) {
	reg := registry.New(nil,
		[]registry.CoreType{{Name: "string"}},
		[]registry.TypeAlias{
			{Name: "l1", Extends: "string"},
			{Name: "l2", Extends: "l1"},
			{Name: "l3", Extends: "l2"},
		},
	)
	r := New(reg, WithMaxDepth(3))

	path, err := r.Resolve("l2")
	require.NoError(t, err)
	assert.Equal(t, []string{"string", "l1", "l2"}, path)

	_, err = r.Resolve("l3")
	require.ErrorIs(t, err, ErrTooDeep)
}

func TestLineage_DanglingParentFallsBack(t *testing.T) {
	reg := registry.New(nil,
		[]registry.CoreType{{Name: "string"}},
		[]registry.TypeAlias{{Name: "sku", Extends: "identifier"}},
	)
	r := New(reg)

	_, err := r.Resolve("sku")
	require.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), `"sku" extends "identifier"`)
	assert.Equal(t, []string{"string"}, r.Lineage("sku"))
}

func TestLineage_NoStringCoreType(t *testing.T) {
	reg := registry.New(nil, []registry.CoreType{{Name: "integer"}}, nil)
	r := New(reg)

	assert.Equal(t, []string{"string"}, r.Lineage("whatever"))
}

func TestLineage_ReturnsCopies(t *testing.T) {
	r := New(embedded(t))

	first := r.Lineage("email")
	first[0] = "mutated"
	assert.Equal(t, []string{"string", "email"}, r.Lineage("email"))
}

func TestRootAndIsA(t *testing.T) {
	r := New(embedded(t))

	assert.Equal(t, "decimal", r.Root("price"))
	assert.Equal(t, "string", r.Root("unheard-of"))
	assert.True(t, r.IsA("customer_id", "identifier"))
	assert.True(t, r.IsA("email", "email"))
	assert.False(t, r.IsA("email", "integer"))
	assert.False(t, r.IsA("unheard-of", "string"))
}

func TestLineage_ConcurrentCallers(t *testing.T) {
	reg := embedded(t)
	r := New(reg)
	names := append(reg.TypeNames(), "x1", "x2", "x3")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range names {
				path := r.Lineage(name)
				if len(path) == 0 {
					t.Errorf("empty lineage for %s", name)
				}
			}
		}()
	}
	wg.Wait()
}

func TestLineage_PropertyBased_TreeShape(t *testing.T) {
	reg := embedded(t)
	r := New(reg)
	names := reg.TypeNames()

	rapid.Check(t, func(t *rapid.T) {
		name := rapid.SampledFrom(names).Draw(t, "type")

		path := r.Lineage(name)
		if len(path) == 0 {
			t.Fatalf("empty lineage for %s", name)
		}
		if path[len(path)-1] != name {
			t.Fatalf("lineage of %s ends with %s", name, path[len(path)-1])
		}
		if reg.Kind(path[0]) != registry.KindCore {
			t.Fatalf("lineage of %s starts with non-core %s", name, path[0])
		}
		for _, p := range path[1:] {
			if reg.Kind(p) != registry.KindAlias {
				t.Fatalf("lineage of %s has non-alias %s below the root", name, p)
			}
		}

		again := r.Lineage(name)
		if strings.Join(again, ",") != strings.Join(path, ",") {
			t.Fatalf("lineage of %s not stable: %v vs %v", name, path, again)
		}
	})
}

func TestLineage_PropertyBased_UnknownNamesFallBack(t *testing.T) {
	reg := embedded(t)
	r := New(reg, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	want := strings.Join(r.Lineage("string"), ",")

	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`zz_[a-z]{1,12}`).Draw(t, "name")
		if got := strings.Join(r.Lineage(name), ","); got != want {
			t.Fatalf("lineage(%q) = %s, want %s", name, got, want)
		}
	})
}
