package oars

import (
	"context"

	"github.com/MikeSquared-Agency/oars/internal/rules"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

// DefaultMaxExamples bounds each example list.
const DefaultMaxExamples = 8

// Counts sums final labels over counselor turns.
type Counts struct {
	OpenQuestions      int `json:"open_questions"`
	ClosedQuestions    int `json:"closed_questions"`
	ReflectionsSimple  int `json:"reflections_simple"`
	ReflectionsComplex int `json:"reflections_complex"`
	Affirmations       int `json:"affirmations"`
	Summaries          int `json:"summaries"`
}

// Add counts one turn. Each label contributes at most 1.
func (c *Counts) Add(l Labels) {
	if l.OpenQuestion {
		c.OpenQuestions++
	}
	if l.ClosedQuestion {
		c.ClosedQuestions++
	}
	if l.ReflectionSimple {
		c.ReflectionsSimple++
	}
	if l.ReflectionComplex {
		c.ReflectionsComplex++
	}
	if l.Affirmation {
		c.Affirmations++
	}
	if l.Summary {
		c.Summaries++
	}
}

// Events is the total number of tallied OARS events.
func (c Counts) Events() int {
	return c.OpenQuestions + c.ClosedQuestions + c.ReflectionsSimple +
		c.ReflectionsComplex + c.Affirmations + c.Summaries
}

// Ratios are derived from Counts; every value is in [0,1].
type Ratios struct {
	OpenQuestionShare      float64 `json:"open_question_share"`
	ReflectionToQuestion   float64 `json:"reflection_to_question"`
	ComplexReflectionShare float64 `json:"complex_reflection_share"`
}

// ComputeRatios derives ratios, using 0 for an empty denominator.
// reflection_to_question is capped at 1.
func ComputeRatios(c Counts) Ratios {
	var r Ratios
	q := c.OpenQuestions + c.ClosedQuestions
	refl := c.ReflectionsSimple + c.ReflectionsComplex
	if q > 0 {
		r.OpenQuestionShare = float64(c.OpenQuestions) / float64(q)
		r.ReflectionToQuestion = min(1, float64(refl)/float64(q))
	}
	if refl > 0 {
		r.ComplexReflectionShare = float64(c.ReflectionsComplex) / float64(refl)
	}
	return r
}

// Example is a labelled turn kept for display.
type Example struct {
	TurnIndex int    `json:"turnIndex"`
	Text      string `json:"text"`
}

// Examples holds up to MaxExamples snippets per category.
type Examples struct {
	OpenQuestions      []Example `json:"open_questions"`
	ClosedQuestions    []Example `json:"closed_questions"`
	ReflectionsSimple  []Example `json:"reflections_simple"`
	ReflectionsComplex []Example `json:"reflections_complex"`
	Affirmations       []Example `json:"affirmations"`
	Summaries          []Example `json:"summaries"`
}

func newExamples() Examples {
	return Examples{
		OpenQuestions:      []Example{},
		ClosedQuestions:    []Example{},
		ReflectionsSimple:  []Example{},
		ReflectionsComplex: []Example{},
		Affirmations:       []Example{},
		Summaries:          []Example{},
	}
}

func appendBounded(list []Example, ex Example, limit int) []Example {
	if len(list) >= limit {
		return list
	}
	return append(list, ex)
}

func (e *Examples) add(l Labels, ex Example, limit int) {
	if l.OpenQuestion {
		e.OpenQuestions = appendBounded(e.OpenQuestions, ex, limit)
	}
	if l.ClosedQuestion {
		e.ClosedQuestions = appendBounded(e.ClosedQuestions, ex, limit)
	}
	if l.ReflectionSimple {
		e.ReflectionsSimple = appendBounded(e.ReflectionsSimple, ex, limit)
	}
	if l.ReflectionComplex {
		e.ReflectionsComplex = appendBounded(e.ReflectionsComplex, ex, limit)
	}
	if l.Affirmation {
		e.Affirmations = appendBounded(e.Affirmations, ex, limit)
	}
	if l.Summary {
		e.Summaries = appendBounded(e.Summaries, ex, limit)
	}
}

// TurnLabels are the final labels of one counselor turn.
type TurnLabels struct {
	Index  int    `json:"index"`
	Labels Labels `json:"labels"`
}

// Labeler produces reconciled labels for the counselor turns of a
// transcript. The rule labeler and the LLM labeler both satisfy it.
type Labeler interface {
	Name() string
	Label(ctx context.Context, turns []transcript.Turn) ([]TurnLabels, error)
}

// RuleLabeler labels turns with a RuleSet. It never returns an error.
type RuleLabeler struct {
	rules *rules.RuleSet
}

func NewRuleLabeler(rs *rules.RuleSet) *RuleLabeler {
	return &RuleLabeler{rules: rs}
}

func (l *RuleLabeler) Name() string { return "rules" }

func (l *RuleLabeler) Label(_ context.Context, turns []transcript.Turn) ([]TurnLabels, error) {
	return LabelTurns(l.rules, turns), nil
}

// LabelTurns runs segment, classify and reconcile over every counselor
// turn. Turns without sentences are skipped.
func LabelTurns(rs *rules.RuleSet, turns []transcript.Turn) []TurnLabels {
	near := transcript.NearEnd(turns)
	out := make([]TurnLabels, 0, len(turns))
	for _, t := range turns {
		if !t.IsCounselor() {
			continue
		}
		ev, raw := CollectEvidence(rs, t.Text)
		if ev.Sentences == 0 {
			continue
		}
		out = append(out, TurnLabels{Index: t.Index, Labels: Reconcile(raw, ev, near[t.Index])})
	}
	return out
}

// ReconcileExternal applies Reconcile to labels produced outside the rule
// set, using rule evidence computed over the same turn text. Labels for
// unknown, non-counselor or sentence-less turns are dropped.
func ReconcileExternal(rs *rules.RuleSet, turns []transcript.Turn, raw []TurnLabels) []TurnLabels {
	near := transcript.NearEnd(turns)
	byIndex := make(map[int]transcript.Turn, len(turns))
	for _, t := range turns {
		byIndex[t.Index] = t
	}

	out := make([]TurnLabels, 0, len(raw))
	for _, tl := range raw {
		t, ok := byIndex[tl.Index]
		if !ok || !t.IsCounselor() {
			continue
		}
		ev, _ := CollectEvidence(rs, t.Text)
		if ev.Sentences == 0 {
			continue
		}
		out = append(out, TurnLabels{Index: tl.Index, Labels: Reconcile(tl.Labels, ev, near[tl.Index])})
	}
	return out
}

// Aggregate sums labels into Counts and collects examples. Labels must
// refer to turns by Index.
func Aggregate(turns []transcript.Turn, labels []TurnLabels, maxExamples int) (Counts, Examples) {
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}
	text := make(map[int]string, len(turns))
	for _, t := range turns {
		text[t.Index] = t.Text
	}

	var c Counts
	ex := newExamples()
	for _, tl := range labels {
		c.Add(tl.Labels)
		ex.add(tl.Labels, Example{TurnIndex: tl.Index, Text: text[tl.Index]}, maxExamples)
	}
	return c, ex
}

// Result is the aggregated classification of one transcript.
type Result struct {
	Counts   Counts       `json:"counts"`
	Ratios   Ratios       `json:"ratios"`
	Examples Examples     `json:"examples"`
	Turns    []TurnLabels `json:"turns"`
}

// Summarize aggregates already reconciled labels.
func Summarize(turns []transcript.Turn, labels []TurnLabels, maxExamples int) Result {
	c, ex := Aggregate(turns, labels, maxExamples)
	if labels == nil {
		labels = []TurnLabels{}
	}
	return Result{Counts: c, Ratios: ComputeRatios(c), Examples: ex, Turns: labels}
}

// Tally classifies a transcript with the rule set. It is pure and safe to
// call concurrently with a shared RuleSet.
func Tally(rs *rules.RuleSet, turns []transcript.Turn, maxExamples int) Result {
	return Summarize(turns, LabelTurns(rs, turns), maxExamples)
}
