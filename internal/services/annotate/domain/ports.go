// Package domain declares the ports of the annotation service
package domain

import "context"

// Completer sends one system+user exchange to a chat model
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Summary reports what an annotation batch produced
type Summary struct {
	Rows   int
	Scored int
	Failed int
	Path   string
}

// AnnotatorPort is the external port for the annotation job
type AnnotatorPort interface {
	// Annotate scores every text of the input table with the configured rubric
	Annotate(ctx context.Context) (Summary, error)
}
