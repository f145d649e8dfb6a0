// Package records defines the canonical dataset record that every source
// adapter produces and every cleaner stage transforms.
package records

// Record is one harvested dataset in the canonical shape. A record is created
// once by a source adapter, passes through the merge untouched and is then
// mutated in place by the cleaner stages.
type Record struct {
	// Position is the 0-based index assigned by the merge.
	Position int `json:"position" yaml:"position"`

	Title       string `json:"title" yaml:"title"`
	Owner       string `json:"owner" yaml:"owner"`
	Description string `json:"description" yaml:"description"`

	OriginalTags  string `json:"original_tags" yaml:"original_tags"`   // semicolon joined, as supplied
	ManualTags    string `json:"manual_tags" yaml:"manual_tags"`       // semicolon joined, curated
	CombinedTags  string `json:"combined_tags" yaml:"combined_tags"`   // derived by the cleaner
	ODSCategories string `json:"ods_categories" yaml:"ods_categories"` // derived by the cleaner

	DateCreated Date `json:"date_created" yaml:"date_created"`
	DateUpdated Date `json:"date_updated" yaml:"date_updated"`

	FileType    string `json:"file_type" yaml:"file_type"`
	Size        Number `json:"size" yaml:"size"`
	RecordCount Number `json:"record_count" yaml:"record_count"`

	PageURL string `json:"page_url" yaml:"page_url"`
	// DataURL is reserved; no adapter populates it.
	DataURL string `json:"data_url" yaml:"data_url"`

	License string   `json:"license" yaml:"license"`
	Source  SourceID `json:"source" yaml:"source"`

	// AssetStatus is a reserved placeholder and is always nil.
	AssetStatus *string `json:"asset_status" yaml:"asset_status"`
}

// Canonical column names shared by input tables and output snapshots.
const (
	ColTitle         = "Title"
	ColOwner         = "Owner"
	ColPageURL       = "PageURL"
	ColAssetURL      = "AssetURL"
	ColDateCreated   = "DateCreated"
	ColDateUpdated   = "DateUpdated"
	ColFileSize      = "FileSize"
	ColFileType      = "FileType"
	ColNumRecords    = "NumRecords"
	ColOriginalTags  = "OriginalTags"
	ColManualTags    = "ManualTags"
	ColLicense       = "License"
	ColDescription   = "Description"
	ColSource        = "Source"
	ColCombinedTags  = "CombinedTags"
	ColODSCategories = "ODSCategories"
	ColAssetStatus   = "AssetStatus"
)

// InputColumns returns the canonical columns a source table may carry.
func InputColumns() []string {
	return []string{
		ColTitle, ColOwner, ColPageURL, ColAssetURL,
		ColDateCreated, ColDateUpdated, ColFileSize, ColFileType, ColNumRecords,
		ColOriginalTags, ColManualTags, ColLicense, ColDescription,
	}
}

// Columns returns the snapshot column order.
func Columns() []string {
	return append(InputColumns(), ColSource, ColCombinedTags, ColODSCategories, ColAssetStatus)
}

// Row renders the record in Columns order.
func (r *Record) Row() []string {
	assetStatus := ""
	if r.AssetStatus != nil {
		assetStatus = *r.AssetStatus
	}
	return []string{
		r.Title,
		r.Owner,
		r.PageURL,
		r.DataURL,
		r.DateCreated.String(),
		r.DateUpdated.String(),
		r.Size.String(),
		r.FileType,
		r.RecordCount.String(),
		r.OriginalTags,
		r.ManualTags,
		r.License,
		r.Description,
		r.Source.String(),
		r.CombinedTags,
		r.ODSCategories,
		assetStatus,
	}
}

// FromColumns builds a record from canonical column values. Missing columns
// read as empty strings.
func FromColumns(get func(column string) string, source SourceID) Record {
	return Record{
		Title:        get(ColTitle),
		Owner:        get(ColOwner),
		Description:  get(ColDescription),
		OriginalTags: get(ColOriginalTags),
		ManualTags:   get(ColManualTags),
		DateCreated:  RawDate(get(ColDateCreated)),
		DateUpdated:  RawDate(get(ColDateUpdated)),
		FileType:     get(ColFileType),
		Size:         ParseNumber(get(ColFileSize)),
		RecordCount:  ParseNumber(get(ColNumRecords)),
		PageURL:      get(ColPageURL),
		License:      get(ColLicense),
		Source:       source,
	}
}
