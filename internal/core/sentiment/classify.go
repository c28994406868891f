package sentiment

// Class is the three-way label derived from a compound score
type Class string

const (
	Positive Class = "positive"
	Neutral  Class = "neutral"
	Negative Class = "negative"
)

// Threshold is the compound magnitude that separates neutral from polar text
const Threshold = 0.05

// Classes lists the labels in report order
var Classes = []Class{Positive, Neutral, Negative}

// Classify maps a compound score to its label; exactly ±Threshold is neutral
func Classify(compound float64) Class {
	switch {
	case compound > Threshold:
		return Positive
	case compound < -Threshold:
		return Negative
	default:
		return Neutral
	}
}

// Proportion is one line of the class breakdown
type Proportion struct {
	Class Class
	Count int
	Share float64
}

// Proportions tallies labels in Classes order; shares are 0 for no input
func Proportions(labels []Class) []Proportion {
	counts := map[Class]int{}
	for _, l := range labels {
		counts[l]++
	}
	out := make([]Proportion, 0, len(Classes))
	for _, c := range Classes {
		p := Proportion{Class: c, Count: counts[c]}
		if len(labels) > 0 {
			p.Share = float64(p.Count) / float64(len(labels))
		}
		out = append(out, p)
	}
	return out
}
