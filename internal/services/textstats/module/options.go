package module

import (
	"subshift/internal/core/lexicon"
	"subshift/internal/platform/config"
)

// Options holds configuration settings for the textstats module
type Options struct {
	In       string `env:"IN" validate:"nonblank"`
	Out      string `env:"OUT" validate:"nonblank"`
	Column   string `env:"COLUMN" validate:"nonblank"`
	Keywords string `env:"KEYWORDS" validate:"nonblank"`
	Bins     int    `env:"BINS" validate:"min=1,max=1000"`
	RaterA   string `env:"RATER_A" validate:"nonblank"`
	RaterB   string `env:"RATER_B" validate:"nonblank,nefield=RaterA"`
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_STATS_")
	return Options{
		In:       sc.MayString("IN", "final.xlsx"),
		Out:      sc.MayString("OUT", "report.xlsx"),
		Column:   sc.MayString("COLUMN", "Text"),
		Keywords: sc.MayString("KEYWORDS", lexicon.DefaultKeywords),
		Bins:     sc.MayInt("BINS", 20),
		RaterA:   sc.MayString("RATER_A", "depression_score"),
		RaterB:   sc.MayString("RATER_B", "emotional_well_being_score"),
	}
}
