// Package oars tags counselor turns with OARS labels (open and closed
// questions, affirmations, simple and complex reflections, summaries) and
// tallies them into counts, ratios and examples.
package oars

import (
	"github.com/MikeSquared-Agency/oars/internal/rules"
)

// SentenceEvidence is the raw, unreconciled rule output for one sentence.
type SentenceEvidence struct {
	Text     string
	Question bool

	// Question sentences only.
	Open       bool
	Closed     bool
	StartsOpen bool
	ConfirmTag bool

	// Statements only.
	AffirmationHits int
	SimpleHits      int
	ComplexHits     int
	Summary         bool
	Transition      bool
	Ending          bool
}

// ClassifySentence applies the rule set to one raw sentence. Several rules
// may fire at once; conflicts are left to Reconcile.
func ClassifySentence(rs *rules.RuleSet, raw string) SentenceEvidence {
	ev := SentenceEvidence{Text: raw, Question: rules.IsQuestion(raw)}
	s := rules.Normalize(raw)

	if ev.Question {
		ev.StartsOpen = rs.StartsOpen(s)
		ev.ConfirmTag = rs.HasConfirmTag(s)
		ev.Open = rs.IsOpenQuestion(s)
		// An open question is also closed only through a trailing tag.
		ev.Closed = !ev.Open || ev.ConfirmTag
		return ev
	}

	ev.AffirmationHits = rs.CountAffirmation(s)
	ev.SimpleHits = rs.CountSimple(s)
	ev.ComplexHits = rs.CountComplex(s)
	ev.Summary = rs.HasSummaryCue(s)
	ev.Transition = rs.HasTransitionCue(s)
	ev.Ending = rs.HasEndingCue(s)

	if !ev.anyStatementRule() && rs.IsFallbackReflection(s) {
		ev.SimpleHits = 1
	}
	return ev
}

func (ev SentenceEvidence) anyStatementRule() bool {
	return ev.AffirmationHits > 0 || ev.SimpleHits > 0 || ev.ComplexHits > 0 ||
		ev.Summary || ev.Transition || ev.Ending
}

// Labels is the raw label set this sentence contributes to its turn.
func (ev SentenceEvidence) Labels() Labels {
	return Labels{
		OpenQuestion:      ev.Open,
		ClosedQuestion:    ev.Closed,
		Affirmation:       ev.AffirmationHits > 0,
		ReflectionSimple:  ev.SimpleHits > 0,
		ReflectionComplex: ev.ComplexHits > 0,
		Summary:           ev.Summary,
	}
}

// TurnEvidence folds sentence evidence over a whole turn.
type TurnEvidence struct {
	Sentences  int
	Questions  int
	Statements int

	AffirmationHits int
	SimpleHits      int
	ComplexHits     int

	SummaryCue    bool
	TransitionCue bool // transition or ending marker

	AllQuestionsStartOpen bool
	AnyConfirmTag         bool
}

// CollectEvidence segments a turn's text and classifies every sentence.
// It returns the turn evidence and the union of raw sentence labels.
func CollectEvidence(rs *rules.RuleSet, text string) (TurnEvidence, Labels) {
	var (
		ev  TurnEvidence
		raw Labels
	)
	ev.AllQuestionsStartOpen = true
	for _, sentence := range rules.SplitSentences(text) {
		se := ClassifySentence(rs, sentence)
		ev.Sentences++
		if se.Question {
			ev.Questions++
			if !se.StartsOpen {
				ev.AllQuestionsStartOpen = false
			}
			ev.AnyConfirmTag = ev.AnyConfirmTag || se.ConfirmTag
		} else {
			ev.Statements++
			ev.AffirmationHits += se.AffirmationHits
			ev.SimpleHits += se.SimpleHits
			ev.ComplexHits += se.ComplexHits
			ev.SummaryCue = ev.SummaryCue || se.Summary
			ev.TransitionCue = ev.TransitionCue || se.Transition || se.Ending
		}
		raw = raw.Union(se.Labels())
	}
	if ev.Questions == 0 {
		ev.AllQuestionsStartOpen = false
	}
	return ev, raw
}
