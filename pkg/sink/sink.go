// Package sink persists record snapshots.
//
// The pipeline writes two snapshots per run: the merged records before any
// cleaning and the fully cleaned records. Each sink replaces a snapshot as a
// whole; readers never observe a half-written one.
package sink

import (
	"context"

	"github.com/agentstation/datamap/pkg/records"
)

// Sink persists a named snapshot.
type Sink interface {
	Write(ctx context.Context, name string, recs []records.Record) error
}

// Func adapts a function to the Sink interface.
type Func func(ctx context.Context, name string, recs []records.Record) error

// Write calls f.
func (f Func) Write(ctx context.Context, name string, recs []records.Record) error {
	return f(ctx, name, recs)
}

// Multi writes every snapshot to each sink in turn, stopping at the first error.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, name string, recs []records.Record) error {
	for _, s := range m {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Write(ctx, name, recs); err != nil {
			return err
		}
	}
	return nil
}
