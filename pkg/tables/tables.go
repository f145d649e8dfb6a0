// Package tables holds the static configuration the cleaner works from: the
// keyword taxonomy, the owner alias table and the licence alias table.
//
// Tables are loaded once, validated, and are immutable afterwards. They are
// passed explicitly to the cleaner so tests can substitute their own.
package tables

import (
	_ "embed"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/datamap/pkg/errors"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultFallbackCategory is assigned when no keyword matches.
const DefaultFallbackCategory = "Uncategorised"

// Tables bundles the three configuration tables.
type Tables struct {
	Taxonomy *Taxonomy
	Owners   *Aliases
	Licences *Aliases
}

// Document is the YAML representation of the tables.
type Document struct {
	FallbackCategory string            `yaml:"fallback_category,omitempty" json:"fallback_category,omitempty"`
	Taxonomy         []Category        `yaml:"taxonomy" json:"taxonomy"`
	Owners           map[string]string `yaml:"owners" json:"owners"`
	Licences         map[string]string `yaml:"licences" json:"licences"`
}

// Default returns the built-in tables.
func Default() *Tables {
	t, err := Parse(defaultsYAML, "defaults.yaml")
	if err != nil {
		panic("invalid built-in tables: " + err.Error())
	}
	return t
}

// Load reads tables from a YAML file.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("tables", "cannot read "+path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a YAML tables document. name is used in errors.
func Parse(data []byte, name string) (*Tables, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	return FromDocument(doc)
}

// FromDocument validates doc and builds immutable tables from it.
func FromDocument(doc Document) (*Tables, error) {
	taxonomy, err := NewTaxonomy(doc.Taxonomy, doc.FallbackCategory)
	if err != nil {
		return nil, err
	}
	owners, err := NewAliases("owners", doc.Owners)
	if err != nil {
		return nil, err
	}
	licences, err := NewAliases("licences", doc.Licences)
	if err != nil {
		return nil, err
	}
	return &Tables{Taxonomy: taxonomy, Owners: owners, Licences: licences}, nil
}

// Document returns the YAML representation of t.
func (t *Tables) Document() Document {
	return Document{
		FallbackCategory: t.Taxonomy.Fallback(),
		Taxonomy:         t.Taxonomy.Categories(),
		Owners:           t.Owners.Map(),
		Licences:         t.Licences.Map(),
	}
}

// Aliases is an exact-match lookup from raw strings to canonical names.
type Aliases struct {
	entries map[string]string
}

// NewAliases copies entries into an alias table. Keys are matched verbatim;
// empty keys or targets are rejected.
func NewAliases(field string, entries map[string]string) (*Aliases, error) {
	a := &Aliases{entries: make(map[string]string, len(entries))}
	for raw, canonical := range entries {
		if raw == "" {
			return nil, errors.NewValidationError(field, raw, "alias key must not be empty")
		}
		if strings.TrimSpace(canonical) == "" {
			return nil, errors.NewValidationError(field, raw, "alias target must not be empty")
		}
		a.entries[raw] = canonical
	}
	return a, nil
}

// Lookup returns the canonical name for raw.
func (a *Aliases) Lookup(raw string) (string, bool) {
	canonical, ok := a.entries[raw]
	return canonical, ok
}

// Len returns the number of aliases.
func (a *Aliases) Len() int {
	return len(a.entries)
}

// Map returns a copy of the alias entries.
func (a *Aliases) Map() map[string]string {
	out := make(map[string]string, len(a.entries))
	for k, v := range a.entries {
		out[k] = v
	}
	return out
}
