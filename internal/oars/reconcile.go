package oars

// Labels is the final label set for one turn.
type Labels struct {
	OpenQuestion      bool `json:"open_question"`
	ClosedQuestion    bool `json:"closed_question"`
	Affirmation       bool `json:"affirmation"`
	ReflectionSimple  bool `json:"reflection_simple"`
	ReflectionComplex bool `json:"reflection_complex"`
	Summary           bool `json:"summary"`
}

// Union returns the flags set in either label set.
func (l Labels) Union(o Labels) Labels {
	return Labels{
		OpenQuestion:      l.OpenQuestion || o.OpenQuestion,
		ClosedQuestion:    l.ClosedQuestion || o.ClosedQuestion,
		Affirmation:       l.Affirmation || o.Affirmation,
		ReflectionSimple:  l.ReflectionSimple || o.ReflectionSimple,
		ReflectionComplex: l.ReflectionComplex || o.ReflectionComplex,
		Summary:           l.Summary || o.Summary,
	}
}

// Any reports whether at least one flag is set. A turn with no flags is a
// neutral utterance.
func (l Labels) Any() bool {
	return l.OpenQuestion || l.ClosedQuestion || l.Affirmation ||
		l.ReflectionSimple || l.ReflectionComplex || l.Summary
}

func (l Labels) reflection() bool { return l.ReflectionSimple || l.ReflectionComplex }

// Reconcile resolves label conflicts within one turn. nearEnd is true for
// the last and second-to-last counselor turns. It applies, in order:
//
//  1. summary detection (cue, or two or more statements with a
//     transition/ending marker, or near the end with reflection-like cues)
//  2. summary dominance over both reflection kinds
//  3. reflection exclusivity by cue density, simple on ties
//  4. affirmation against reflection by lexical hits, affirmation on ties
//  5. question coexistence: without a confirmation tag, a turn with a
//     single question or only open-started questions drops closed
//
// Reconcile never fails; the same rules apply to labels from any Labeler.
func Reconcile(raw Labels, ev TurnEvidence, nearEnd bool) Labels {
	out := raw

	reflectionLike := raw.reflection() || ev.SimpleHits+ev.ComplexHits > 0
	if raw.Summary || ev.SummaryCue ||
		(ev.Statements >= 2 && (ev.TransitionCue || (nearEnd && reflectionLike))) {
		out.Summary = true
	}

	if out.Summary {
		out.ReflectionSimple = false
		out.ReflectionComplex = false
	}

	if out.ReflectionSimple && out.ReflectionComplex {
		if ev.ComplexHits > ev.SimpleHits {
			out.ReflectionSimple = false
		} else {
			out.ReflectionComplex = false
		}
	}

	if out.Affirmation && out.reflection() {
		reflectionHits := ev.SimpleHits
		if out.ReflectionComplex {
			reflectionHits = ev.ComplexHits
		}
		if reflectionHits > ev.AffirmationHits {
			out.Affirmation = false
		} else {
			out.ReflectionSimple = false
			out.ReflectionComplex = false
		}
	}

	if out.OpenQuestion && out.ClosedQuestion && !ev.AnyConfirmTag &&
		(ev.Questions <= 1 || ev.AllQuestionsStartOpen) {
		out.ClosedQuestion = false
	}

	return out
}
