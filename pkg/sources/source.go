// Package sources defines the contract every catalog source adapter fulfils
// and the merge that combines their output.
//
// A source reads one upstream catalog and returns its datasets as canonical
// records stamped with the source's ID. Sources never clean or deduplicate;
// that is the cleaner's job.
//
// Example usage:
//
//	srcs := sources.NewSources()
//	srcs.Set(ckanSource)
//	srcs.Set(manualSource)
//
//	result, err := sources.NewPipeline(srcs.Ordered()...).Execute(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	merged := result.Records
package sources

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/agentstation/datamap/pkg/records"
)

// Source reads one upstream catalog.
type Source interface {
	// ID returns the provenance tag stamped on every record.
	ID() records.SourceID

	// Fetch reads the whole catalog. Records come back in the source's own
	// order. A missing or structurally broken input is an error.
	Fetch(ctx context.Context) ([]records.Record, error)
}

// Reporter is implemented by sources that can describe their last fetch.
type Reporter interface {
	Stats() Stats
}

// Stats describes one source fetch.
type Stats struct {
	Records      int `json:"records" yaml:"records"`
	FilesRead    int `json:"files_read" yaml:"files_read"`
	FilesSkipped int `json:"files_skipped" yaml:"files_skipped"`
}

// Sources is a thread-safe container for the configured sources.
type Sources struct {
	mu      sync.RWMutex
	sources map[records.SourceID]Source
}

// NewSources creates a new Sources instance.
func NewSources(srcs ...Source) *Sources {
	s := &Sources{
		sources: make(map[records.SourceID]Source),
	}
	for _, src := range srcs {
		s.Set(src)
	}
	return s
}

// Set registers src under its ID, replacing any previous source with that ID.
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID()] = src
}

// IDs returns the registered source IDs in merge priority order.
func (s *Sources) IDs() []records.SourceID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]records.SourceID, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

// Ordered returns the registered sources in merge priority order. Sources
// with unknown IDs sort last, by name.
func (s *Sources) Ordered() []Source {
	ids := s.IDs()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Source, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.sources[id])
	}
	return out
}

func compareIDs(a, b records.SourceID) int {
	pa, pb := a.Priority(), b.Priority()
	switch {
	case pa == pb:
		return cmp.Compare(a, b)
	case pa < 0:
		return 1
	case pb < 0:
		return -1
	default:
		return pa - pb
	}
}
