// Package catalog is the entry point to the type and rule catalog. It ties a
// validated registry to a lineage resolver and a rule deriver, and exposes
// the process-wide default catalog built from the embedded registry.
package catalog

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dkoosis/typekit/pkg/derive"
	"github.com/dkoosis/typekit/pkg/lineage"
	"github.com/dkoosis/typekit/pkg/registry"
)

// Option configures a Catalog.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	maxDepth int
}

// WithLogger sets the logger handed to the lineage resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxDepth bounds lineage walks.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// Catalog answers lineage and rule queries over a validated registry.
type Catalog struct {
	reg      *registry.Registry
	resolver *lineage.Resolver
	deriver  *derive.Deriver
}

// New validates reg and builds a catalog over it. A registry that fails
// validation is rejected with the *registry.ValidationError.
func New(reg *registry.Registry, opts ...Option) (*Catalog, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}

	resolver := lineage.New(reg, lineage.WithLogger(o.logger), lineage.WithMaxDepth(o.maxDepth))
	return &Catalog{
		reg:      reg,
		resolver: resolver,
		deriver:  derive.New(reg, resolver),
	}, nil
}

// Load builds a catalog from the YAML file at path, or from the embedded
// registry when path is empty.
func Load(path string, opts ...Option) (*Catalog, error) {
	var (
		reg *registry.Registry
		err error
	)
	if path == "" {
		reg, err = registry.Embedded()
	} else {
		reg, err = registry.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}

	c, err := New(reg, opts...)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// MustLoad is Load for process start: a corrupt catalog panics.
func MustLoad(path string, opts ...Option) *Catalog {
	c, err := Load(path, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded registry. It is
// loaded on first use and shared thereafter.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = MustLoad("")
	})
	return defaultCatalog
}

// Registry exposes the underlying read-only registry.
func (c *Catalog) Registry() *registry.Registry {
	return c.reg
}

// Resolver exposes the lineage resolver.
func (c *Catalog) Resolver() *lineage.Resolver {
	return c.resolver
}

// Deriver exposes the rule deriver.
func (c *Catalog) Deriver() *derive.Deriver {
	return c.deriver
}

// Lineage returns the root-first lineage of typeName. It never fails.
func (c *Catalog) Lineage(typeName string) []string {
	return c.resolver.Lineage(typeName)
}

// DeriveRules computes the rule set for a field declaration.
func (c *Catalog) DeriveRules(typeName string, key derive.KeyType, nullable bool, exclude ...string) derive.DerivedRuleSet {
	return c.deriver.Derive(typeName,
		derive.WithKey(key),
		derive.WithNullable(nullable),
		derive.WithExclude(exclude...))
}

// ValidateCatalog re-checks the registry. A catalog returned by New has
// already passed, so this only fails if the registry was built by hand.
func (c *Catalog) ValidateCatalog() error {
	return c.reg.Validate()
}

// Rules lists every rule.
func (c *Catalog) Rules() []registry.Rule {
	return c.reg.Rules()
}

// CoreTypes lists every core type.
func (c *Catalog) CoreTypes() []registry.CoreType {
	return c.reg.CoreTypes()
}

// TypeAliases lists every alias.
func (c *Catalog) TypeAliases() []registry.TypeAlias {
	return c.reg.TypeAliases()
}
