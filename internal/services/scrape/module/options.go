package module

import (
	"time"

	"subshift/internal/platform/config"
)

// Options holds configuration settings for the scrape module
type Options struct {
	SubmissionDelay time.Duration `env:"SUBMISSION_DELAY" validate:"gte=0"`
	CommentDelay    time.Duration `env:"COMMENT_DELAY" validate:"gte=0"`
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SCRAPE_")
	return Options{
		SubmissionDelay: sc.MayDuration("SUBMISSION_DELAY", time.Millisecond),
		CommentDelay:    sc.MayDuration("COMMENT_DELAY", 100*time.Microsecond),
	}
}
