package fields

import (
	"fmt"
	"io"

	"github.com/dkoosis/typekit/pkg/registry"
)

// Summary counts what a batch of derivations produced.
type Summary struct {
	Fields     int
	Rules      int
	BySeverity map[registry.Severity]int
	// UnknownTypes lists declared types the registry does not define, in
	// first-seen order. Their fields were derived from the fallback lineage.
	UnknownTypes []string
}

// Summarize tallies derived rules by severity.
func Summarize(results []Result, reg *registry.Registry) Summary {
	s := Summary{Fields: len(results), BySeverity: make(map[registry.Severity]int)}
	seenUnknown := make(map[string]bool)
	for _, r := range results {
		s.Rules += len(r.Derived.Rules)
		for _, id := range r.Derived.Rules {
			if rule, ok := reg.Rule(id); ok {
				s.BySeverity[rule.Severity]++
			}
		}
		if reg.Kind(r.Type) == registry.KindUnknown && !seenUnknown[r.Type] {
			seenUnknown[r.Type] = true
			s.UnknownTypes = append(s.UnknownTypes, r.Type)
		}
	}
	return s
}

// Write prints the summary as plain text.
func (s Summary) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d fields, %d rules\n", s.Fields, s.Rules); err != nil {
		return err
	}
	for _, sev := range registry.Severities {
		if n := s.BySeverity[sev]; n > 0 {
			if _, err := fmt.Fprintf(w, "  %-8s %d\n", sev, n); err != nil {
				return err
			}
		}
	}
	for _, t := range s.UnknownTypes {
		if _, err := fmt.Fprintf(w, "  unknown type %q (derived as string)\n", t); err != nil {
			return err
		}
	}
	return nil
}
