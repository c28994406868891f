// Package domain declares the ports and report types of the text statistics service
package domain

import (
	"context"

	"subshift/internal/core/sentiment"
	"subshift/internal/core/stats"
)

// Report describes one statistics run
type Report struct {
	// Rows read from the input table
	Rows int
	// Kept rows written (filter) or scored (emotions, sentiment)
	Kept int
	// Dropped rows with missing or unusable values
	Dropped int
	Path    string

	Proportions []sentiment.Proportion
	ICC         *stats.ICC
}

// StatsPort exposes the post-processing reports over a persisted table
type StatsPort interface {
	// Filter keeps rows whose text contains a keyword of the configured set
	Filter(ctx context.Context) (Report, error)
	// Emotions appends per-category lexicon hit counts
	Emotions(ctx context.Context) (Report, error)
	// Sentiment appends neg, neu, pos and compound intensity scores
	Sentiment(ctx context.Context) (Report, error)
	// Classify labels rows by compound score and reports class proportions
	Classify(ctx context.Context) (Report, error)
	// Histogram bins the four sentiment scores
	Histogram(ctx context.Context) (Report, error)
	// Reliability computes ICC(2,1) between two rating columns
	Reliability(ctx context.Context) (Report, error)
}
