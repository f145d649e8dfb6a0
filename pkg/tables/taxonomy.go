package tables

import (
	"strings"

	"github.com/agentstation/datamap/pkg/errors"
)

// Category is a taxonomy entry: a display name and its keyword set.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Taxonomy maps exact lowercase keywords to the categories that list them.
// Keyword sets may overlap; a keyword belonging to several categories
// matches all of them.
type Taxonomy struct {
	categories []Category
	byKeyword  map[string][]int
	fallback   string
}

// NewTaxonomy builds a taxonomy. Keywords are trimmed and lowercased and
// duplicates within a category collapse. fallback defaults to
// DefaultFallbackCategory.
func NewTaxonomy(categories []Category, fallback string) (*Taxonomy, error) {
	if fallback == "" {
		fallback = DefaultFallbackCategory
	}
	if len(categories) == 0 {
		return nil, errors.NewValidationError("taxonomy", nil, "at least one category is required")
	}

	tx := &Taxonomy{
		categories: make([]Category, 0, len(categories)),
		byKeyword:  make(map[string][]int),
		fallback:   fallback,
	}
	names := make(map[string]bool, len(categories))

	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		switch {
		case name == "":
			return nil, errors.NewValidationError("taxonomy", i, "category name must not be empty")
		case names[name]:
			return nil, errors.NewValidationError("taxonomy", name, "duplicate category")
		case name == fallback:
			return nil, errors.NewValidationError("taxonomy", name, "category collides with the fallback category")
		}
		names[name] = true

		seen := make(map[string]bool, len(c.Keywords))
		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			keywords = append(keywords, kw)
			tx.byKeyword[kw] = append(tx.byKeyword[kw], i)
		}
		tx.categories = append(tx.categories, Category{Name: name, Keywords: keywords})
	}

	return tx, nil
}

// Match returns the indices of the categories whose keyword set contains term.
func (tx *Taxonomy) Match(term string) []int {
	return tx.byKeyword[term]
}

// Name returns the category name at index i.
func (tx *Taxonomy) Name(i int) string {
	return tx.categories[i].Name
}

// Len returns the number of categories, excluding the fallback.
func (tx *Taxonomy) Len() int {
	return len(tx.categories)
}

// Fallback returns the category assigned when nothing matches.
func (tx *Taxonomy) Fallback() string {
	return tx.fallback
}

// Categories returns a copy of the categories.
func (tx *Taxonomy) Categories() []Category {
	out := make([]Category, len(tx.categories))
	for i, c := range tx.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}
