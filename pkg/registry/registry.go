// Package registry holds the static catalog of semantic field types and
// data-quality rules.
//
// A Registry is immutable once constructed. It is normally decoded from the
// generated catalog embedded in this package (see Embedded) and checked with
// Validate before any lineage or rule derivation happens.
package registry

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// UniversalTag marks a rule that applies to every field regardless of type.
const UniversalTag = "universal"

// Well-known rule ids referenced by constraint-derived rules.
const (
	RuleMissingRequired     = "R1"
	RuleDuplicatePrimaryKey = "R2"
	RuleZeroInRequired      = "R40"
)

// Severity ranks how serious a rule violation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityWarning  Severity = "warning"
)

// Severities lists every valid severity, most serious first.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityWarning}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return slices.Contains(Severities, s)
}

// Rule is a single data-quality check definition.
type Rule struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Severity Severity `yaml:"severity" json:"severity"`
	Fixable  bool     `yaml:"fixable" json:"fixable"`
	Tags     []string `yaml:"tags" json:"tags,omitempty"`
}

// HasTag reports whether the rule carries tag.
func (r Rule) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// Universal reports whether the rule applies to every field.
func (r Rule) Universal() bool {
	return r.HasTag(UniversalTag)
}

// CoreType is a root semantic type with no parent.
type CoreType struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Rules       []string `yaml:"rules" json:"rules"`
}

// TypeAlias refines exactly one parent type, which may itself be an alias.
type TypeAlias struct {
	Name        string   `yaml:"name" json:"name"`
	Extends     string   `yaml:"extends" json:"extends"`
	Category    string   `yaml:"category" json:"category,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Rules       []string `yaml:"rules" json:"rules"`
}

// Kind tells which table a type name was found in.
type Kind int

const (
	KindUnknown Kind = iota
	KindCore
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindCore:
		return "core"
	case KindAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// Registry is the read-only store of rules, core types and aliases.
type Registry struct {
	rules   []Rule
	cores   []CoreType
	aliases []TypeAlias

	ruleIdx  map[string]int
	coreIdx  map[string]int
	aliasIdx map[string]int

	// universal holds the ids of universal rules in CompareRuleIDs order.
	universal []string
}

// New builds a registry from the given tables. Inputs are copied. New does
// not check consistency; call Validate for that. When a table repeats an id
// or name, lookups resolve to the first occurrence.
func New(rules []Rule, cores []CoreType, aliases []TypeAlias) *Registry {
	r := &Registry{
		rules:    make([]Rule, len(rules)),
		cores:    make([]CoreType, len(cores)),
		aliases:  make([]TypeAlias, len(aliases)),
		ruleIdx:  make(map[string]int, len(rules)),
		coreIdx:  make(map[string]int, len(cores)),
		aliasIdx: make(map[string]int, len(aliases)),
	}

	for i, rule := range rules {
		r.rules[i] = cloneRule(rule)
		if _, dup := r.ruleIdx[rule.ID]; !dup {
			r.ruleIdx[rule.ID] = i
			if rule.Universal() {
				r.universal = append(r.universal, rule.ID)
			}
		}
	}
	slices.SortFunc(r.universal, CompareRuleIDs)
	for i, ct := range cores {
		ct.Rules = slices.Clone(ct.Rules)
		r.cores[i] = ct
		if _, dup := r.coreIdx[ct.Name]; !dup {
			r.coreIdx[ct.Name] = i
		}
	}
	for i, ta := range aliases {
		ta.Rules = slices.Clone(ta.Rules)
		r.aliases[i] = ta
		if _, dup := r.aliasIdx[ta.Name]; !dup {
			r.aliasIdx[ta.Name] = i
		}
	}

	return r
}

// Rules returns every rule in declaration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i, rule := range r.rules {
		out[i] = cloneRule(rule)
	}
	return out
}

// Rule looks up a rule by id.
func (r *Registry) Rule(id string) (Rule, bool) {
	i, ok := r.ruleIdx[id]
	if !ok {
		return Rule{}, false
	}
	return cloneRule(r.rules[i]), true
}

// HasRule reports whether id names a defined rule.
func (r *Registry) HasRule(id string) bool {
	_, ok := r.ruleIdx[id]
	return ok
}

// UniversalRules returns the rules tagged universal, ordered by id.
func (r *Registry) UniversalRules() []Rule {
	out := make([]Rule, len(r.universal))
	for i, id := range r.universal {
		out[i] = cloneRule(r.rules[r.ruleIdx[id]])
	}
	return out
}

// UniversalRuleIDs returns the ids of UniversalRules in the same order.
func (r *Registry) UniversalRuleIDs() []string {
	return slices.Clone(r.universal)
}

// CoreTypes returns every core type in declaration order.
func (r *Registry) CoreTypes() []CoreType {
	out := make([]CoreType, len(r.cores))
	for i, ct := range r.cores {
		ct.Rules = slices.Clone(ct.Rules)
		out[i] = ct
	}
	return out
}

// CoreType looks up a core type by name.
func (r *Registry) CoreType(name string) (CoreType, bool) {
	i, ok := r.coreIdx[name]
	if !ok {
		return CoreType{}, false
	}
	ct := r.cores[i]
	ct.Rules = slices.Clone(ct.Rules)
	return ct, true
}

// TypeAliases returns every alias in declaration order.
func (r *Registry) TypeAliases() []TypeAlias {
	out := make([]TypeAlias, len(r.aliases))
	for i, ta := range r.aliases {
		ta.Rules = slices.Clone(ta.Rules)
		out[i] = ta
	}
	return out
}

// TypeAlias looks up an alias by name.
func (r *Registry) TypeAlias(name string) (TypeAlias, bool) {
	i, ok := r.aliasIdx[name]
	if !ok {
		return TypeAlias{}, false
	}
	ta := r.aliases[i]
	ta.Rules = slices.Clone(ta.Rules)
	return ta, true
}

// Kind reports which table name belongs to. Core types take precedence over
// aliases of the same name.
func (r *Registry) Kind(name string) Kind {
	if _, ok := r.coreIdx[name]; ok {
		return KindCore
	}
	if _, ok := r.aliasIdx[name]; ok {
		return KindAlias
	}
	return KindUnknown
}

// TypeNames returns all core type names followed by all alias names, each in
// declaration order and without repeats.
func (r *Registry) TypeNames() []string {
	seen := make(map[string]struct{}, len(r.cores)+len(r.aliases))
	names := make([]string, 0, len(r.cores)+len(r.aliases))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, ct := range r.cores {
		add(ct.Name)
	}
	for _, ta := range r.aliases {
		add(ta.Name)
	}
	return names
}

// AliasesInCategory returns the aliases whose category equals category.
func (r *Registry) AliasesInCategory(category string) []TypeAlias {
	var out []TypeAlias
	for _, ta := range r.aliases {
		if ta.Category == category {
			ta.Rules = slices.Clone(ta.Rules)
			out = append(out, ta)
		}
	}
	return out
}

// Categories returns the distinct alias categories, sorted.
func (r *Registry) Categories() []string {
	set := make(map[string]struct{})
	for _, ta := range r.aliases {
		if ta.Category != "" {
			set[ta.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// CompareRuleIDs orders rule ids so that R2 sorts before R10. Ids sharing an
// alphabetic prefix compare by their numeric suffix; anything else falls back
// to plain string order.
func CompareRuleIDs(a, b string) int {
	pa, na, okA := splitRuleID(a)
	pb, nb, okB := splitRuleID(b)
	if okA && okB && pa == pb && na != nb {
		return cmp.Compare(na, nb)
	}
	return strings.Compare(a, b)
}

func splitRuleID(id string) (string, int, bool) {
	cut := strings.LastIndexFunc(id, func(r rune) bool { return r < '0' || r > '9' })
	digits := id[cut+1:]
	if digits == "" {
		return "", 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", 0, false
	}
	return id[:cut+1], n, true
}

func cloneRule(r Rule) Rule {
	r.Tags = slices.Clone(r.Tags)
	return r
}
