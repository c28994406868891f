// Package domain declares the ports and result types of the dump pipeline
package domain

import "context"

// IngestSummary reports one ingest pass over the dump files
type IngestSummary struct {
	Files     int
	Read      int
	Inserted  int
	Deduped   int
	Skipped   int
	Malformed int
	// Stored is the row count of the store after the pass
	Stored int64
}

// Summary reports a rollup or offline correlate run
type Summary struct {
	Users        int
	Rows         int
	Transitioned int
	Path         string
}

// RunnerPort is the external port for the dump pipeline
type RunnerPort interface {
	// Ingest loads the source and target dumps into the store; reruns are idempotent
	Ingest(ctx context.Context) (IngestSummary, error)
	// Rollup writes per-user counts, first timestamps and monthly bins
	Rollup(ctx context.Context) (Summary, error)
	// Correlate runs the transition split over stored items
	Correlate(ctx context.Context) (Summary, error)
}
