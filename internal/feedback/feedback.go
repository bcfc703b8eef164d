// Package feedback turns scored OARS counts into balanced strengths and
// improvements using fixed per-language sentence tables.
package feedback

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/oars/internal/oars"
	"github.com/MikeSquared-Agency/oars/internal/score"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

// MinEvents is the number of tallied OARS events below which no strengths
// or improvements are claimed.
const MinEvents = 5

const (
	defaultDesired   = 4
	defaultTolerance = 0.1
	closedHeavy      = 6
	minAffirmations  = 2
)

// Input carries the tally and the values the scorer derived from it.
type Input struct {
	Counts     oars.Counts
	Ratios     oars.Ratios
	Turns      int
	Shifts     int
	Difficulty transcript.Difficulty
}

// Options tunes language and list balancing. Zero values use defaults.
type Options struct {
	Language     string
	DesiredItems int
	Tolerance    float64
}

// Feedback is the learner-facing output.
type Feedback struct {
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
	NextExercises []string `json:"next_exercises"`
	Sufficient    bool     `json:"sufficient"`
}

// Sufficient reports whether the tally holds enough evidence for feedback.
func Sufficient(c oars.Counts) bool { return c.Events() >= MinEvents }

type rule struct {
	key  string
	fire func(in Input) bool
}

var strengthRules = []rule{
	{"open", func(in Input) bool { return in.Ratios.OpenQuestionShare >= score.TargetOpenShare }},
	{"reflection_ratio", func(in Input) bool { return in.Ratios.ReflectionToQuestion >= score.TargetReflectionQ }},
	{"affirmations", func(in Input) bool { return in.Counts.Affirmations >= minAffirmations }},
	{"summaries", func(in Input) bool {
		return in.Counts.Summaries >= score.ExpectedSummaries(in.Turns, in.Shifts)
	}},
	{"complex", func(in Input) bool { return in.Ratios.ComplexReflectionShare >= score.TargetComplexShare }},
}

var improvementRules = []rule{
	{"complex", func(in Input) bool { return in.Ratios.ComplexReflectionShare < score.TargetComplexShare }},
	{"summaries", func(in Input) bool {
		return in.Counts.Summaries < score.ExpectedSummaries(in.Turns, in.Shifts)
	}},
	{"open", func(in Input) bool { return in.Ratios.OpenQuestionShare < score.TargetOpenShare }},
	{"reflection_ratio", func(in Input) bool { return in.Ratios.ReflectionToQuestion < score.TargetReflectionQ }},
	{"affirmations", func(in Input) bool { return in.Counts.Affirmations < score.ExpectedAffirmations(in.Turns) }},
	{"closed", func(in Input) bool { return in.Counts.ClosedQuestions > closedHeavy }},
}

// Generate builds feedback. With fewer than MinEvents tallied events it
// returns empty strengths and improvements and Sufficient=false.
func Generate(in Input, opts Options) Feedback {
	cat := catalogFor(opts.Language)
	fb := Feedback{
		Strengths:     []string{},
		Improvements:  []string{},
		NextExercises: append([]string(nil), cat.nextExercises...),
	}
	if !Sufficient(in.Counts) {
		return fb
	}
	fb.Sufficient = true

	t := cat.tones[in.Difficulty]
	if t.ask == "" {
		t = cat.tones[transcript.DifficultyModerate]
	}

	var strengths, improvements []string
	for _, r := range strengthRules {
		if r.fire(in) {
			strengths = append(strengths, cat.strengths[r.key])
		}
	}
	if len(strengths) == 0 {
		strengths = append(strengths, fmt.Sprintf(cat.strengthFallback, t.ask))
	}
	for _, r := range improvementRules {
		if !r.fire(in) {
			continue
		}
		switch r.key {
		case "complex":
			improvements = append(improvements, fmt.Sprintf(cat.improvements[r.key], t.ask))
		case "closed":
			improvements = append(improvements, fmt.Sprintf(cat.improvements[r.key], t.stretch))
		default:
			improvements = append(improvements, cat.improvements[r.key])
		}
	}
	if len(improvements) == 0 {
		improvements = append(improvements, cat.improvementFallback)
	}

	desired := opts.DesiredItems
	if desired <= 0 {
		desired = defaultDesired
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}
	fb.Strengths, fb.Improvements = balance(strengths, improvements, desired, tol, cat)
	return fb
}

// balance pads or trims both lists so each holds roughly half of desired
// items, within tol. Padding uses generic filler sentences.
func balance(str, imp []string, desired int, tol float64, cat *catalog) ([]string, []string) {
	total := max(2, desired)
	half := float64(total) / 2
	minN := int(math.Floor(half * (1 - tol)))
	maxN := int(math.Ceil(half * (1 + tol)))

	strengths := append([]string(nil), str...)
	improvements := append([]string(nil), imp...)
	for len(strengths) < minN {
		strengths = append(strengths, cat.genericStrength)
	}
	for len(improvements) < minN {
		improvements = append(improvements, cat.genericImprove)
	}
	strengths = strengths[:max(minN, min(maxN, len(strengths)))]
	improvements = improvements[:max(minN, min(maxN, len(improvements)))]

	for len(strengths)+len(improvements) < total {
		switch {
		case len(improvements) < len(strengths) && len(improvements) < maxN:
			improvements = append(improvements, cat.genericImprove)
		case len(strengths) < maxN:
			strengths = append(strengths, cat.genericStrength)
		default:
			return strengths, improvements
		}
	}
	return strengths, improvements
}
