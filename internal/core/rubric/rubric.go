// Package rubric defines LLM annotation rubrics (prompt, two labels, an
// integer scale) and the strict parser for their two-line replies
package rubric

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"

	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/validate"

	"gopkg.in/yaml.v3"
)

// Placeholder is replaced by the comment text when a prompt is rendered
const Placeholder = "{comment}"

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Rubric is one scoring scheme. Labels are the reply line prefixes in order;
// Columns name the output table columns for the two scores.
type Rubric struct {
	Name     string    `yaml:"name" validate:"nonblank"`
	System   string    `yaml:"system" validate:"nonblank"`
	Template string    `yaml:"template" validate:"nonblank"`
	Labels   [2]string `yaml:"labels" validate:"dive,nonblank"`
	Columns  [2]string `yaml:"columns" validate:"dive,nonblank"`
	Min      int       `yaml:"min" validate:"min=0"`
	Max      int       `yaml:"max" validate:"gtfield=Min"`
}

// Validate checks field rules and that the template carries the placeholder
func (r Rubric) Validate() error {
	if err := validate.Struct(r); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeValidation, "rubric %q", r.Name)
	}
	if !strings.Contains(r.Template, Placeholder) {
		return perr.WithField(perr.Validationf("rubric %q: template must contain %s", r.Name, Placeholder), "template")
	}
	if strings.EqualFold(strings.TrimSpace(r.Labels[0]), strings.TrimSpace(r.Labels[1])) {
		return perr.WithField(perr.Validationf("rubric %q: labels must differ", r.Name), "labels")
	}
	return nil
}

// Prompt renders the user message for one comment
func (r Rubric) Prompt(comment string) string {
	return strings.ReplaceAll(r.Template, Placeholder, comment)
}

// Decode reads one YAML rubric document; unknown keys are rejected
func Decode(rd io.Reader) (Rubric, error) {
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	var r Rubric
	if err := dec.Decode(&r); err != nil {
		return Rubric{}, perr.Wrap(err, perr.ErrorCodeValidation, "rubric: decode yaml")
	}
	if err := r.Validate(); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

// Load reads and validates a rubric file
func Load(p string) (Rubric, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return Rubric{}, perr.Wrapf(err, perr.ErrorCodeIO, "rubric: read %s", p)
	}
	return Decode(bytes.NewReader(b))
}

// Builtins returns the shipped rubrics keyed by name
func Builtins() (map[string]Rubric, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	out := make(map[string]Rubric, len(entries))
	for _, e := range entries {
		b, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			return nil, err
		}
		r, err := Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", e.Name(), err)
		}
		out[r.Name] = r
	}
	return out, nil
}

// Names lists built-in rubric names, sorted
func Names() []string {
	all, err := Builtins()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(all))
	for k := range all {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Resolve returns the rubric in file when set, else the named built-in
func Resolve(name, file string) (Rubric, error) {
	if file != "" {
		return Load(file)
	}
	all, err := Builtins()
	if err != nil {
		return Rubric{}, err
	}
	r, ok := all[name]
	if !ok {
		return Rubric{}, perr.InvalidArgf("rubric: unknown rubric %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return r, nil
}

// Result is the typed outcome of parsing one reply. OK means Scores holds both
// ratings; otherwise Reason says what was wrong with the reply.
type Result struct {
	OK     bool
	Scores [2]int
	Reason string
}

func fail(format string, a ...any) Result {
	return Result{Reason: fmt.Sprintf(format, a...)}
}

// Parse accepts exactly two non-empty lines "<label>: <int>" in label order
// with each value inside [Min, Max]. Anything else is a failure.
func Parse(r Rubric, reply string) Result {
	var lines []string
	for l := range strings.Lines(reply) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) != 2 {
		return fail("want 2 lines, got %d: %q", len(lines), reply)
	}
	var res Result
	for i, line := range lines {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			return fail("line %d has no colon: %q", i+1, line)
		}
		if !strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(r.Labels[i])) {
			return fail("line %d label %q, want %q", i+1, strings.TrimSpace(label), r.Labels[i])
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fail("line %d value %q is not an integer", i+1, strings.TrimSpace(value))
		}
		if n < r.Min || n > r.Max {
			return fail("line %d value %d outside [%d, %d]", i+1, n, r.Min, r.Max)
		}
		res.Scores[i] = n
	}
	res.OK = true
	return res
}
