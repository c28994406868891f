package module

import (
	"subshift/internal/platform/config"
)

// Options holds configuration settings for the annotate module
type Options struct {
	In         string `env:"IN" validate:"nonblank"`
	Out        string `env:"OUT" validate:"nonblank"`
	Rubric     string `env:"RUBRIC"`
	RubricFile string `env:"RUBRIC_FILE"`
	Column     string `env:"COLUMN" validate:"nonblank"`
	Head       int    `env:"HEAD" validate:"gte=0"`
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	ac := cfg.Prefix("CORE_ANNOTATE_")
	return Options{
		In:         ac.MayString("IN", "comments.csv"),
		Out:        ac.MayString("OUT", "annotated.xlsx"),
		Rubric:     ac.MayString("RUBRIC", "humor-binary"),
		RubricFile: ac.MayString("RUBRIC_FILE", ""),
		Column:     ac.MayString("COLUMN", "Text"),
		Head:       ac.MayInt("HEAD", 0),
	}
}
