package module

import (
	"time"

	"subshift/internal/platform/config"
)

// Options holds configuration settings for the correlate module
type Options struct {
	Source    string        `env:"SOURCE" validate:"nonblank"`
	Target    string        `env:"TARGET" validate:"nonblank,nefold=Source"`
	Limit     int           `env:"LIMIT" validate:"gte=0"`
	TargetCap int           `env:"TARGET_CAP" validate:"gte=0"`
	UserDelay time.Duration `env:"USER_DELAY" validate:"gte=0"`
	Out       string        `env:"OUT" validate:"nonblank"`

	SourceHistory    bool `env:"SOURCE_HISTORY"`
	IncludeRates     bool `env:"INCLUDE_RATES"`
	SourceThenTarget bool `env:"SOURCE_THEN_TARGET"`

	Targets        []string      `env:"TARGETS" validate:"min=1,dive,nonblank"`
	MembershipCap  int           `env:"MEMBERSHIP_CAP" validate:"gte=0"`
	MembershipOut  string        `env:"MEMBERSHIP_OUT" validate:"nonblank"`
	MembershipWait time.Duration `env:"MEMBERSHIP_DELAY" validate:"gte=0"`
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	cc := cfg.Prefix("CORE_CORRELATE_")
	return Options{
		Source:    cc.MayString("SOURCE", "depression"),
		Target:    cc.MayString("TARGET", "funny"),
		Limit:     cc.MayInt("LIMIT", 1000),
		TargetCap: cc.MayInt("TARGET_CAP", 0),
		UserDelay: cc.MayDuration("USER_DELAY", 2*time.Second),
		Out:       cc.MayString("OUT", "user_activity_depression_funny.xlsx"),

		SourceHistory:    cc.MayBool("SOURCE_HISTORY", false),
		IncludeRates:     cc.MayBool("INCLUDE_RATES", false),
		SourceThenTarget: cc.MayBool("SOURCE_THEN_TARGET", false),

		Targets:        cc.MayCSV("TARGETS", []string{"depression", "mentalhealth", "depression_help"}),
		MembershipCap:  cc.MayInt("MEMBERSHIP_CAP", 100),
		MembershipOut:  cc.MayString("MEMBERSHIP_OUT", "user_activity.csv"),
		MembershipWait: cc.MayDuration("MEMBERSHIP_DELAY", 100*time.Millisecond),
	}
}
