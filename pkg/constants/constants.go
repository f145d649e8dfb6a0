// Package constants provides shared constants used throughout the datamap codebase.
// This includes timeouts, file permissions, the default input layout and the
// snapshot names that downstream tooling expects.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the timeout for a single harvester page request
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Default input layout, relative to the data directory.
const (
	DefaultDataDir = "data"

	CKANFile       = "ckan_output.csv"
	SheetsFile     = "from_Google_Sheets.csv"
	SheetsWorkbook = "from_Google_Sheets.xlsx"
	ScotGovFile    = "scotgov-datasets.csv"

	HarvestedADir = "arcgis"
	HarvestedBDir = "USMART"
	DCATDir       = "dcat"
)

// Snapshot names written by the sinks.
const (
	RawSnapshot   = "merged_output_untidy"
	CleanSnapshot = "merged_output"
)

// Format constants
const (
	// DateLayout is the calendar date layout used on input and output
	DateLayout = "2006-01-02"

	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)

// Separators used by the serialized tag and category lists.
const (
	ListSeparator = ";"
)
