// Package derive computes the data-quality rules that apply to a field.
//
// A field's rule set is assembled in a fixed order: universal rules, then
// the rules of each type in its lineage from the root down, then rules
// implied by key and nullability constraints. A rule keeps the provenance of
// whichever step added it first. Excluded rules are never added.
package derive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkoosis/typekit/pkg/lineage"
	"github.com/dkoosis/typekit/pkg/registry"
)

// Provenance values recorded in DerivedRuleSet.RuleSources.
const (
	SourceUniversal   = "universal"
	SourcePrimaryKey  = "primary_key"
	SourceNotNullable = "nullable:false"
)

// CoreSource is the provenance of a rule introduced by a core type.
func CoreSource(name string) string { return "core:" + name }

// AliasSource is the provenance of a rule introduced by an alias.
func AliasSource(name string) string { return "alias:" + name }

// KeyType classifies a field's role in its entity's key.
type KeyType string

const (
	KeyNone       KeyType = "none"
	KeyPrimaryKey KeyType = "primary_key"
	// KeyUnique is recorded but injects no rule of its own.
	KeyUnique KeyType = "unique"
)

// ErrInvalidKeyType is wrapped by ParseKeyType for unrecognized key types.
var ErrInvalidKeyType = errors.New("invalid key type")

// ParseKeyType accepts "none", "primary_key" (or "pk") and "unique". The
// empty string means none.
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KeyNone, nil
	case "primary_key", "pk":
		return KeyPrimaryKey, nil
	case "unique":
		return KeyUnique, nil
	default:
		return "", fmt.Errorf("%w %q (want none, primary_key or unique)", ErrInvalidKeyType, s)
	}
}

// UnmarshalText lets KeyType decode from JSON and YAML strings.
func (k *KeyType) UnmarshalText(text []byte) error {
	parsed, err := ParseKeyType(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DerivedRuleSet is the rule set computed for one field declaration.
type DerivedRuleSet struct {
	Rules           []string          `json:"rules"`
	RuleSources     map[string]string `json:"rule_sources"`
	TypeUsed        string            `json:"type_used"`
	KeyUsed         KeyType           `json:"key_used"`
	Nullable        bool              `json:"nullable"`
	ResolvedLineage []string          `json:"resolved_lineage"`
}

// Has reports whether id is in the set.
func (d DerivedRuleSet) Has(id string) bool {
	_, ok := d.RuleSources[id]
	return ok
}

// Source returns the provenance recorded for id.
func (d DerivedRuleSet) Source(id string) (string, bool) {
	src, ok := d.RuleSources[id]
	return src, ok
}

// Request is the struct form of a derivation. A nil Nullable means true.
type Request struct {
	Type     string
	Key      KeyType
	Nullable *bool
	Exclude  []string
}

// Option adjusts a derivation.
type Option func(*Request)

// WithKey sets the key type. The default is KeyNone.
func WithKey(k KeyType) Option {
	return func(r *Request) { r.Key = k }
}

// WithNullable sets nullability. The default is true.
func WithNullable(nullable bool) Option {
	return func(r *Request) { r.Nullable = &nullable }
}

// WithExclude suppresses the given rule ids.
func WithExclude(ids ...string) Option {
	return func(r *Request) { r.Exclude = append(r.Exclude, ids...) }
}

// Deriver assembles rule sets from a registry and a lineage resolver. It
// holds no mutable state and is safe for concurrent use.
type Deriver struct {
	reg      *registry.Registry
	resolver *lineage.Resolver
}

// New returns a Deriver over reg. The resolver must be built on the same
// registry.
func New(reg *registry.Registry, resolver *lineage.Resolver) *Deriver {
	return &Deriver{reg: reg, resolver: resolver}
}

// Derive computes the rule set for a field of the given type.
func (d *Deriver) Derive(typeName string, opts ...Option) DerivedRuleSet {
	req := Request{Type: typeName, Key: KeyNone}
	for _, opt := range opts {
		opt(&req)
	}
	return d.DeriveRequest(req)
}

// DeriveRequest computes the rule set for req. It never fails: unknown type
// names fall back to the generic string lineage.
func (d *Deriver) DeriveRequest(req Request) DerivedRuleSet {
	key := req.Key
	if key == "" {
		key = KeyNone
	}
	nullable := true
	if req.Nullable != nil {
		nullable = *req.Nullable
	}

	excluded := make(map[string]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}

	set := DerivedRuleSet{
		Rules:       []string{},
		RuleSources: map[string]string{},
		TypeUsed:    req.Type,
		KeyUsed:     key,
		Nullable:    nullable,
	}
	add := func(id, source string) {
		if _, skip := excluded[id]; skip {
			return
		}
		if _, seen := set.RuleSources[id]; seen {
			return
		}
		set.Rules = append(set.Rules, id)
		set.RuleSources[id] = source
	}

	for _, id := range d.reg.UniversalRuleIDs() {
		add(id, SourceUniversal)
	}

	set.ResolvedLineage = d.resolver.Lineage(req.Type)
	for _, name := range set.ResolvedLineage {
		switch d.reg.Kind(name) {
		case registry.KindCore:
			ct, _ := d.reg.CoreType(name)
			for _, id := range ct.Rules {
				add(id, CoreSource(name))
			}
		case registry.KindAlias:
			ta, _ := d.reg.TypeAlias(name)
			for _, id := range ta.Rules {
				add(id, AliasSource(name))
			}
		}
	}

	if key == KeyPrimaryKey {
		add(registry.RuleMissingRequired, SourcePrimaryKey)
		add(registry.RuleDuplicatePrimaryKey, SourcePrimaryKey)
	}

	if !nullable {
		add(registry.RuleMissingRequired, SourceNotNullable)
	}

	return set
}
