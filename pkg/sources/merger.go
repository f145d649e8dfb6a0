package sources

import (
	"github.com/agentstation/datamap/pkg/records"
)

// Batch is the output of one source fetch.
type Batch struct {
	Source  records.SourceID
	Records []records.Record
	Stats   Stats
}

// Merge concatenates batches in the given order and assigns each record a
// fresh 0-based position. Nothing is dropped, combined or reordered within a
// batch, and records from different sources stay independent.
func Merge(batches ...Batch) []records.Record {
	total := 0
	for _, b := range batches {
		total += len(b.Records)
	}

	merged := make([]records.Record, 0, total)
	for _, b := range batches {
		merged = append(merged, b.Records...)
	}
	for i := range merged {
		merged[i].Position = i
	}
	return merged
}
