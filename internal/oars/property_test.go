package oars

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

var phrasePool = []string{
	"What brought you here today?",
	"Did you go out yesterday?",
	"How does that feel, is that right?",
	"Could you say more about that?",
	"To summarize: you want calm without drinking.",
	"So you feel stuck.",
	"You say it matters a lot.",
	"Part of you wants to change, and at the same time it feels safer to wait.",
	"Well done, that takes courage.",
	"You should call them.",
	"Before we move on, let's look at the plan.",
	"Thanks for the talk.",
	"It's easy to push it aside.",
	"Do you want to explain, is it hard?",
	"What happened, did it work?",
}

func randomTranscript(f *gofakeit.Faker) []transcript.Turn {
	n := f.Number(0, 30)
	raw := make([]transcript.RawTurn, 0, n)
	for i := 0; i < n; i++ {
		speaker := "client"
		if f.Bool() {
			speaker = "counselor"
		}
		var parts []string
		for j := f.Number(1, 4); j > 0; j-- {
			switch f.Number(0, 2) {
			case 0:
				parts = append(parts, f.RandomString(phrasePool))
			case 1:
				parts = append(parts, f.Question())
			default:
				parts = append(parts, f.Sentence(f.Number(2, 12)))
			}
		}
		raw = append(raw, transcript.RawTurn{Speaker: speaker, Text: strings.Join(parts, " ")})
	}
	return transcript.Normalize(raw)
}

func TestTally_Properties(t *testing.T) {
	f := gofakeit.New(42)

	for i := 0; i < 300; i++ {
		turns := randomTranscript(f)
		got := Tally(enRules, turns, 0)

		again := Tally(enRules, turns, 0)
		if got.Counts != again.Counts || got.Ratios != again.Ratios {
			t.Fatalf("non-deterministic tally for %v", turns)
		}

		text := make(map[int]string, len(turns))
		for _, tu := range turns {
			text[tu.Index] = tu.Text
		}

		for _, tl := range got.Turns {
			l := tl.Labels
			if l.OpenQuestion && l.ClosedQuestion {
				ev, _ := CollectEvidence(enRules, text[tl.Index])
				if !ev.AnyConfirmTag && (ev.Questions < 2 || ev.AllQuestionsStartOpen) {
					t.Fatalf("turn %d: open and closed without a tag or two question kinds: %q", tl.Index, text[tl.Index])
				}
			}
			if l.ReflectionSimple && l.ReflectionComplex {
				t.Fatalf("turn %d: both reflection kinds set", tl.Index)
			}
			if l.Summary && (l.ReflectionSimple || l.ReflectionComplex) {
				t.Fatalf("turn %d: summary with reflection", tl.Index)
			}
			if l.Affirmation && (l.ReflectionSimple || l.ReflectionComplex) {
				t.Fatalf("turn %d: affirmation with reflection", tl.Index)
			}
		}

		if got.Counts.Summaries > len(transcript.CounselorIndexes(turns)) {
			t.Fatalf("summaries %d exceed counselor turns", got.Counts.Summaries)
		}

		r := got.Ratios
		for _, v := range []float64{r.OpenQuestionShare, r.ReflectionToQuestion, r.ComplexReflectionShare} {
			if v < 0 || v > 1 {
				t.Fatalf("ratio out of bounds: %+v", r)
			}
		}
	}
}
