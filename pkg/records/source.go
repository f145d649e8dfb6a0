package records

import "slices"

// SourceID identifies the adapter that produced a record (its provenance).
type SourceID string

// String returns the string representation of a source ID.
func (id SourceID) String() string {
	return string(id)
}

// Source identifiers, one per adapter.
const (
	// CKAN identifies the paginated CKAN catalog API export.
	CKAN SourceID = "CKAN"

	// Manual identifies the manually curated spreadsheet.
	Manual SourceID = "manual"

	// HarvestedA identifies the ArcGIS hub harvest directory.
	HarvestedA SourceID = "harvestedA"

	// HarvestedB identifies the USMART harvest directory.
	HarvestedB SourceID = "harvestedB"

	// ScotGov identifies the government open-data portal export.
	ScotGov SourceID = "scotgov"

	// DCAT identifies the DCAT feed harvest directory.
	DCAT SourceID = "dcat"
)

// SourceIDs returns all source identifiers in merge priority order.
func SourceIDs() []SourceID {
	return []SourceID{
		CKAN,
		Manual,
		HarvestedA,
		HarvestedB,
		ScotGov,
		DCAT,
	}
}

// IsValid returns true if the SourceID is one of the defined constants.
func (id SourceID) IsValid() bool {
	return slices.Contains(SourceIDs(), id)
}

// Priority returns the position of the source in merge order, or -1.
func (id SourceID) Priority() int {
	return slices.Index(SourceIDs(), id)
}

// Label returns a human readable description of the source.
func (id SourceID) Label() string {
	switch id {
	case CKAN:
		return "CKAN API"
	case Manual:
		return "manual extraction"
	case HarvestedA:
		return "ArcGIS API"
	case HarvestedB:
		return "USMART API"
	case ScotGov:
		return "Scottish Government export"
	case DCAT:
		return "DCAT feed"
	default:
		return string(id)
	}
}
