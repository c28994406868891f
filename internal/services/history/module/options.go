package module

import (
	"time"

	"subshift/internal/platform/config"
)

// Options holds configuration settings for the history module
type Options struct {
	In        string        `env:"IN" validate:"nonblank"`
	Out       string        `env:"OUT" validate:"nonblank"`
	UserDelay time.Duration `env:"USER_DELAY" validate:"gte=0"`
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	hc := cfg.Prefix("CORE_HISTORY_")
	return Options{
		In:        hc.MayString("IN", "usernames.csv"),
		Out:       hc.MayString("OUT", "user_history.csv"),
		UserDelay: hc.MayDuration("USER_DELAY", time.Second),
	}
}
