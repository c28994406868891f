// Package domain declares the ports and result types of the correlate service
package domain

import (
	"context"

	scrapedom "subshift/internal/services/scrape/domain"
)

// Summary reports what a run produced
type Summary struct {
	Users        int
	Rows         int
	Transitioned int
	Skipped      int
	Path         string
}

// RunnerPort is the external port for the correlate job
type RunnerPort interface {
	// Run correlates every indexed user against the target community and writes the transition table
	Run(ctx context.Context) (Summary, error)
	// Membership lists which target communities each indexed user is active in
	Membership(ctx context.Context) (Summary, error)
}

// Ports are dependencies injected into the correlate module
type Ports struct {
	Indexer scrapedom.IndexerPort // required
	History scrapedom.History     // required
}
