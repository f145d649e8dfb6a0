package cleaner

import (
	"github.com/agentstation/datamap/pkg/tables"
)

// Classifier assigns taxonomy categories to tag terms. Matching is exact: a
// term matches a category only if it equals one of its keywords. Categories
// whose keyword sets overlap are all assigned.
type Classifier struct {
	taxonomy *tables.Taxonomy
}

// NewClassifier returns a classifier over taxonomy.
func NewClassifier(taxonomy *tables.Taxonomy) *Classifier {
	return &Classifier{taxonomy: taxonomy}
}

// Categories returns the distinct categories matched by terms, in taxonomy
// order, or just the fallback category when nothing matches.
func (c *Classifier) Categories(terms []string) []string {
	matched := make([]bool, c.taxonomy.Len())
	found := false
	for _, term := range terms {
		for _, i := range c.taxonomy.Match(term) {
			matched[i] = true
			found = true
		}
	}

	if !found {
		return []string{c.taxonomy.Fallback()}
	}

	out := make([]string, 0, len(matched))
	for i, ok := range matched {
		if ok {
			out = append(out, c.taxonomy.Name(i))
		}
	}
	return out
}

// Classify classifies a semicolon-joined combined tag string and returns the
// semicolon-joined categories. It never returns an empty string.
func (c *Classifier) Classify(combinedTags string) string {
	return joinList(c.Categories(Terms(combinedTags)))
}
