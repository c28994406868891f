package module

import (
	"subshift/internal/platform/config"
)

// Options holds configuration settings for the dumps module
type Options struct {
	Dir          string `env:"DIR" validate:"nonblank"`
	Source       string `env:"SOURCE" validate:"nonblank"`
	Target       string `env:"TARGET" validate:"nonblank,nefold=Source"`
	Out          string `env:"OUT" validate:"nonblank"`
	Batch        int    `env:"BATCH" validate:"min=1,max=10000"`
	IncludeRates bool   `env:"INCLUDE_RATES"`
	MaxAttempts  int    `env:"MAX_ATTEMPTS" validate:"min=1,max=10"`
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	dc := cfg.Prefix("CORE_DUMPS_")
	return Options{
		Dir:          dc.MayString("DIR", "."),
		Source:       dc.MayString("SOURCE", "depression"),
		Target:       dc.MayString("TARGET", "funny"),
		Out:          dc.MayString("OUT", "user_activity.csv"),
		Batch:        dc.MayInt("BATCH", 1000),
		IncludeRates: dc.MayBool("INCLUDE_RATES", false),
		MaxAttempts:  dc.MayInt("MAX_ATTEMPTS", 3),
	}
}
