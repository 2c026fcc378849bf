// Package lineage resolves the ancestor chain of a semantic type.
package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dkoosis/typekit/pkg/registry"
)

const (
	// FallbackType is the type whose lineage stands in for unknown names.
	FallbackType = "string"
	// DefaultMaxDepth bounds every extends walk.
	DefaultMaxDepth = 64
)

var (
	ErrUnknownType = errors.New("unknown type")
	ErrCycle       = errors.New("extends cycle")
	ErrTooDeep     = errors.New("lineage too deep")
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// entry is a memoized lineage. Fallback entries stand in for names that
// could not be resolved.
type entry struct {
	path     []string
	fallback bool
}

// Resolver computes and memoizes root-first lineages over a registry. It is
// safe for concurrent use.
type Resolver struct {
	reg      *registry.Registry
	logger   *slog.Logger
	maxDepth int
	memo     *gocache.Cache
	fallback []string
}

// New builds a resolver and eagerly resolves every type the registry knows,
// so steady-state lookups of known names never write to the memo.
func New(reg *registry.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		reg:      reg,
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
		memo:     gocache.New(gocache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.fallback = []string{FallbackType}
	if path, err := r.walk(FallbackType); err == nil {
		r.fallback = path
	}

	for _, name := range reg.TypeNames() {
		path, err := r.walk(name)
		if err != nil {
			r.logger.Error("lineage unresolvable", slog.String("type", name), slog.String("error", err.Error()))
			continue
		}
		r.memo.Set(name, entry{path: path}, gocache.NoExpiration)
	}

	return r
}

// Resolve returns the lineage of name, root first and name last. Unlike
// Lineage it reports unknown names, cycles and over-deep chains as errors.
func (r *Resolver) Resolve(name string) ([]string, error) {
	if e, ok := r.cached(name); ok && !e.fallback {
		return slices.Clone(e.path), nil
	}
	return r.walk(name)
}

// Lineage returns the lineage of name and never fails. Names that cannot be
// resolved degrade to the lineage of FallbackType; the first such lookup
// for a given name logs a warning and the result is memoized.
func (r *Resolver) Lineage(name string) []string {
	if e, ok := r.cached(name); ok {
		return slices.Clone(e.path)
	}

	path, err := r.walk(name)
	if err != nil {
		path = slices.Clone(r.fallback)
	}

	// Add fails when a concurrent caller already stored the entry, which
	// keeps the warning to one per name.
	if addErr := r.memo.Add(name, entry{path: path, fallback: err != nil}, gocache.NoExpiration); addErr == nil && err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, ErrUnknownType) {
			level = slog.LevelError
		}
		r.logger.Log(context.Background(), level, "falling back to generic lineage",
			slog.String("type", name),
			slog.String("fallback", FallbackType),
			slog.String("reason", err.Error()))
	}

	return slices.Clone(path)
}

// Root returns the core type at the top of name's lineage.
func (r *Resolver) Root(name string) string {
	return r.Lineage(name)[0]
}

// IsA reports whether ancestor appears in the lineage of name. Unknown names
// are never anything, including strings.
func (r *Resolver) IsA(name, ancestor string) bool {
	path, err := r.Resolve(name)
	if err != nil {
		return false
	}
	return slices.Contains(path, ancestor)
}

func (r *Resolver) cached(name string) (entry, bool) {
	v, ok := r.memo.Get(name)
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	return e, ok
}

func (r *Resolver) walk(name string) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)
	cur := name
	for {
		if len(chain) >= r.maxDepth {
			return nil, fmt.Errorf("%w: %q exceeds %d levels", ErrTooDeep, name, r.maxDepth)
		}
		if seen[cur] {
			return nil, fmt.Errorf("%w: %q revisits %q", ErrCycle, name, cur)
		}
		seen[cur] = true
		chain = append(chain, cur)

		switch r.reg.Kind(cur) {
		case registry.KindCore:
			slices.Reverse(chain)
			return chain, nil
		case registry.KindAlias:
			alias, _ := r.reg.TypeAlias(cur)
			cur = alias.Extends
		default:
			if len(chain) == 1 {
				return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
			}
			return nil, fmt.Errorf("%w: %q extends %q", ErrUnknownType, chain[len(chain)-2], cur)
		}
	}
}
