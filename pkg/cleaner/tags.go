package cleaner

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/datamap/pkg/constants"
)

// nullToken is how an absent value reads once a missing field has been stringified.
const nullToken = "nan"

// Tidy normalizes a tag string: commas become separators, every term is
// lowercased and trimmed, and empty or "nan" terms are dropped.
func Tidy(tags string) string {
	return strings.Join(tidyTerms(tags), constants.ListSeparator)
}

// tidyTerms returns the terms Tidy would join, in their original order.
func tidyTerms(tags string) []string {
	lower := cases.Lower(language.Und)
	pieces := strings.Split(strings.ReplaceAll(tags, ",", constants.ListSeparator), constants.ListSeparator)

	terms := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		term := strings.TrimSpace(lower.String(piece))
		if term == "" || term == nullToken {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// Combine returns the set union of the tidied original and manual tags,
// keeping the first occurrence of each term.
func Combine(originalTags, manualTags string) string {
	return strings.Join(union(tidyTerms(originalTags), tidyTerms(manualTags)), constants.ListSeparator)
}

// Terms splits a tidied tag string back into terms.
func Terms(tags string) []string {
	if tags == "" {
		return nil
	}
	return strings.Split(tags, constants.ListSeparator)
}

func union(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, term := range list {
			if seen[term] {
				continue
			}
			seen[term] = true
			out = append(out, term)
		}
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, constants.ListSeparator)
}
