package topics

import (
	"reflect"
	"testing"

	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

func TestSafeTopic(t *testing.T) {
	tests := map[string]string{
		"Redusere rusbruk":    RedusereRusbruk,
		"  aggressiv atferd ": AggressivAtferd,
		"":                    DefaultTopic,
		"Fotball":             DefaultTopic,
	}
	for in, want := range tests {
		if got := SafeTopic(in); got != want {
			t.Errorf("SafeTopic(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	turns := transcript.Normalize([]transcript.RawTurn{
		{Speaker: "counselor", Text: "Hvordan går det med jobben?"},
		{Speaker: "client", Text: "Lønna er dårlig, og stillingen er deltid."},
		{Speaker: "counselor", Text: "Hva med alkohol i helgene?"},
		{Speaker: "client", Text: "Ok."},
		{Speaker: "counselor", Text: "Og arbeidet fremover?"},
	})

	got := Analyze(turns, "Jobbambivalens")

	if got.PrimaryTopic != Jobbambivalens {
		t.Errorf("primary = %q", got.PrimaryTopic)
	}
	if got.TopicShifts != 2 {
		t.Errorf("shifts = %d, want 2", got.TopicShifts)
	}
	if !reflect.DeepEqual(got.OtherTopics, []string{RedusereRusbruk}) {
		t.Errorf("other topics = %v", got.OtherTopics)
	}
	wantIdx := []int{0, 1, 2, 4}
	if len(got.ByTurn) != len(wantIdx) {
		t.Fatalf("by_turn = %+v", got.ByTurn)
	}
	for i, bt := range got.ByTurn {
		if bt.TurnIndex != wantIdx[i] {
			t.Errorf("by_turn[%d].TurnIndex = %d, want %d", i, bt.TurnIndex, wantIdx[i])
		}
	}
}

func TestAnalyze_Empty(t *testing.T) {
	got := Analyze(nil, "")
	if got.PrimaryTopic != DefaultTopic || got.TopicShifts != 0 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.OtherTopics == nil || got.ByTurn == nil {
		t.Error("expected empty, non-nil lists")
	}
}

func TestGroup_FoldsRelatedAndBanned(t *testing.T) {
	byTurn := []TurnTopic{
		{0, "Jobbambivalens"},
		{1, "lønn"},
		{2, "avslutning"},
		{3, "NAV"},
		{4, "sport"},
		{5, "Jobbambivalens"},
	}
	got := Group("Jobbambivalens", []string{"other", "stress", "familie"}, byTurn)

	if got.TopicShifts != 2 {
		t.Errorf("shifts = %d, want 2", got.TopicShifts)
	}
	if !reflect.DeepEqual(got.OtherTopics, []string{"familie", "sport"}) {
		t.Errorf("other topics = %v", got.OtherTopics)
	}
	if len(got.ByTurn) != 5 {
		t.Errorf("expected banned label dropped, got %+v", got.ByTurn)
	}
}
