// Package domain declares the ports of the history export service
package domain

import (
	"context"

	scrapedom "subshift/internal/services/scrape/domain"
)

// Summary reports what an export produced
type Summary struct {
	Users  int
	Failed int
	Rows   int
	Path   string
}

// ExporterPort is the external port for the history export job
type ExporterPort interface {
	// Export reads usernames from the input table and writes every item they authored
	Export(ctx context.Context) (Summary, error)
}

// Ports are dependencies injected into the history module
type Ports struct {
	History scrapedom.History // required
}
