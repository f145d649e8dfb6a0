package cleaner

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/datamap/pkg/records"
	"github.com/agentstation/datamap/pkg/tables"
)

// Licence fallbacks.
const (
	NoLicence           = "No licence"
	CustomLicencePrefix = "Custom licence: "
)

// RenameOwner returns the canonical authority for owner, or owner itself
// when the alias table has no entry for it.
func RenameOwner(owners *tables.Aliases, owner string) string {
	if canonical, ok := owners.Lookup(owner); ok {
		return canonical
	}
	return owner
}

// NormalizeDate parses the date's raw text, yielding null when it does not
// parse as a calendar date.
func NormalizeDate(d records.Date) records.Date {
	return d.Normalize()
}

// NormalizeFileType uppercases a file type token.
func NormalizeFileType(fileType string) string {
	return cases.Upper(language.Und).String(fileType)
}

// CanonicalizeLicence maps a raw licence to its canonical name. Absent
// licences become NoLicence and unknown ones are kept behind
// CustomLicencePrefix.
func CanonicalizeLicence(licences *tables.Aliases, raw string) string {
	if canonical, ok := licences.Lookup(raw); ok {
		return canonical
	}
	if isNull(raw) {
		return NoLicence
	}
	return CustomLicencePrefix + raw
}

// isNull reports whether a raw field value stands for a missing value.
func isNull(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || strings.EqualFold(trimmed, nullToken)
}
