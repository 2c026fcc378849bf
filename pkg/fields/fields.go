// Package fields derives rule sets for batches of field declarations read
// from JSONL or YAML files.
package fields

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/typekit/pkg/derive"
	"github.com/dkoosis/typekit/pkg/sarif"
)

const ruleIDDeclaration = "field-declaration"

// Declaration describes one field of an ERP entity.
type Declaration struct {
	Entity   string         `json:"entity,omitempty" yaml:"entity"`
	Field    string         `json:"field" yaml:"field"`
	Type     string         `json:"type" yaml:"type"`
	Key      derive.KeyType `json:"key,omitempty" yaml:"key"`
	Nullable *bool          `json:"nullable,omitempty" yaml:"nullable"`
	Exclude  []string       `json:"exclude,omitempty" yaml:"exclude"`
}

// Request converts the declaration into a derivation request.
func (d Declaration) Request() derive.Request {
	return derive.Request{Type: d.Type, Key: d.Key, Nullable: d.Nullable, Exclude: d.Exclude}
}

func (d Declaration) validate() error {
	if strings.TrimSpace(d.Field) == "" {
		return errors.New("missing field name")
	}
	if strings.TrimSpace(d.Type) == "" {
		return fmt.Errorf("field %q: missing type", d.Field)
	}
	return nil
}

// LineError reports a declaration that could not be read.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// ReadJSONL reads one declaration per line. Blank lines are skipped. Bad
// lines are collected as LineErrors and do not stop the read; the returned
// error is reserved for I/O failures.
func ReadJSONL(r io.Reader) ([]Declaration, []LineError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var (
		decls   []Declaration
		badLine []LineError
	)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var d Declaration
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			badLine = append(badLine, LineError{Line: line, Err: decodeError(err)})
			continue
		}
		if err := d.validate(); err != nil {
			badLine = append(badLine, LineError{Line: line, Err: err})
			continue
		}
		decls = append(decls, d)
	}

	if err := scanner.Err(); err != nil {
		return decls, badLine, err
	}
	return decls, badLine, nil
}

// decodeError separates malformed JSON from well-formed lines carrying a
// value a declaration field rejects.
func decodeError(err error) error {
	if errors.Is(err, derive.ErrInvalidKeyType) {
		return fmt.Errorf("field declaration: %w", err)
	}
	return fmt.Errorf("invalid JSON: %w", err)
}

// ReadYAML reads a document of the form "fields: [...]". Any invalid
// declaration fails the whole document.
func ReadYAML(r io.Reader) ([]Declaration, error) {
	var doc struct {
		Fields []Declaration `yaml:"fields"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	for i, d := range doc.Fields {
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", i, err)
		}
	}
	return doc.Fields, nil
}

// ReadFile picks the reader by extension: .yaml and .yml are YAML,
// everything else is JSONL.
func ReadFile(path string) ([]Declaration, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decls, err := ReadYAML(f)
		return decls, nil, err
	default:
		return ReadJSONL(f)
	}
}

// Result pairs a declaration with its derived rule set.
type Result struct {
	Declaration
	Derived derive.DerivedRuleSet `json:"derived"`
}

// Derive computes a rule set for every declaration, preserving order.
func Derive(d *derive.Deriver, decls []Declaration) []Result {
	results := make([]Result, 0, len(decls))
	for _, decl := range decls {
		results = append(results, Result{Declaration: decl, Derived: d.DeriveRequest(decl.Request())})
	}
	return results
}

// WriteJSONL writes one result per line.
func WriteJSONL(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode %s.%s: %w", r.Entity, r.Field, err)
		}
	}
	return nil
}

// LineErrorsToSARIF reports unreadable declarations as SARIF results.
func LineErrorsToSARIF(path string, errs []LineError) []sarif.Result {
	results := make([]sarif.Result, 0, len(errs))
	for _, e := range errs {
		results = append(results, sarif.Result{
			RuleID:  ruleIDDeclaration,
			Level:   sarif.LevelError,
			Message: sarif.Message{Text: e.Error()},
			Locations: []sarif.Location{{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: sarif.ArtifactLocation{URI: filepath.ToSlash(path)},
					Region:           &sarif.Region{StartLine: e.Line},
				},
			}},
		})
	}
	return results
}
