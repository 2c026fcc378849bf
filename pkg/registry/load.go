package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

// document mirrors the on-disk catalog structure.
type document struct {
	Rules     []Rule      `yaml:"rules"`
	CoreTypes []CoreType  `yaml:"core_types"`
	Aliases   []TypeAlias `yaml:"aliases"`
}

// Embedded decodes the catalog compiled into the binary.
func Embedded() (*Registry, error) {
	reg, err := Parse(embeddedCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return reg, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes a YAML catalog. Unknown keys are rejected so a catalog built
// by a newer generator fails loudly instead of silently dropping fields.
func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode catalog: empty document")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return New(doc.Rules, doc.CoreTypes, doc.Aliases), nil
}
