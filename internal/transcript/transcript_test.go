package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		label string
		want  Role
		ok    bool
	}{
		{"counselor", RoleCounselor, true},
		{"Jobbkonsulent", RoleCounselor, true},
		{"user", RoleCounselor, true},
		{"client", RoleClient, true},
		{"jobbsøker", RoleClient, true},
		{"jobbsoker", RoleClient, true},
		{"assistant", RoleClient, true},
		{"", "", false},
		{"narrator", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseRole(tt.label)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalize_DropsMalformedTurns(t *testing.T) {
	raw := []RawTurn{
		{Speaker: "jobbkonsulent", Text: "  Hva bringer deg hit?  "},
		{Speaker: "", Text: "no speaker"},
		{Speaker: "jobbsøker", Text: "   "},
		{Rolle: "jobbsøker", Tekst: "Jeg vet ikke helt.", TS: 1700000000000},
	}

	turns := Normalize(raw)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Text != "Hva bringer deg hit?" {
		t.Errorf("expected trimmed text, got %q", turns[0].Text)
	}
	if turns[1].Index != 1 {
		t.Errorf("expected re-assigned index 1, got %d", turns[1].Index)
	}
	if turns[1].Speaker != RoleClient {
		t.Errorf("expected client, got %q", turns[1].Speaker)
	}
	if turns[1].Timestamp.IsZero() {
		t.Error("expected timestamp from ts")
	}
}

func TestNearEnd(t *testing.T) {
	turns := Normalize([]RawTurn{
		{Speaker: "counselor", Text: "a"},
		{Speaker: "client", Text: "b"},
		{Speaker: "counselor", Text: "c"},
		{Speaker: "client", Text: "d"},
		{Speaker: "counselor", Text: "e"},
		{Speaker: "client", Text: "f"},
	})

	near := NearEnd(turns)
	if len(near) != 2 || !near[2] || !near[4] {
		t.Errorf("expected near-end {2,4}, got %v", near)
	}

	single := NearEnd(turns[:1])
	if len(single) != 1 || !single[0] {
		t.Errorf("expected near-end {0}, got %v", single)
	}

	if len(NearEnd(nil)) != 0 {
		t.Error("expected empty near-end for nil transcript")
	}
}

func TestLengthStats(t *testing.T) {
	turns := Normalize([]RawTurn{
		{Speaker: "counselor", Text: "one two three"},
		{Speaker: "client", Text: "four five"},
	})

	l := LengthStats(turns)
	if l.CounselorTurns != 1 || l.WordsCounselor != 3 || l.WordsClient != 2 || l.WordsTotal != 5 {
		t.Errorf("unexpected stats: %+v", l)
	}
	if len(l.Flags) != 1 || l.Flags[0] != "too_short" {
		t.Errorf("expected too_short flag, got %v", l.Flags)
	}
}

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		turns int
		topic string
	}{
		{"document", `{"topic":"Redusere rusbruk","turns":[{"speaker":"counselor","text":"Hei"}]}`, 1, "Redusere rusbruk"},
		{"array", `[{"speaker":"counselor","text":"Hei"},{"speaker":"client","text":"Hei"}]`, 2, ""},
		{"jsonl", "{\"speaker\":\"counselor\",\"text\":\"Hei\"}\nnot json\n{\"speaker\":\"client\",\"text\":\"Hallo\"}\n", 2, ""},
		{"empty", "   ", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f.Turns) != tt.turns {
				t.Errorf("expected %d turns, got %d", tt.turns, len(f.Turns))
			}
			if f.Topic != tt.topic {
				t.Errorf("expected topic %q, got %q", tt.topic, f.Topic)
			}
		})
	}
}

func TestParse_Unrecognized(t *testing.T) {
	if _, err := Parse([]byte("hello")); err == nil {
		t.Fatal("expected error for unrecognized format")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.json")
	if err := os.WriteFile(path, []byte(`[{"speaker":"counselor","text":"Hei"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(f.Turns) != 1 {
		t.Errorf("expected 1 turn, got %d", len(f.Turns))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormat(t *testing.T) {
	turns := Normalize([]RawTurn{
		{Speaker: "counselor", Text: "Hva skjer?"},
		{Speaker: "client", Text: "Ikke så mye."},
	})

	out := Format(turns)
	if !strings.Contains(out, "[0] Counselor: Hva skjer?") {
		t.Errorf("expected counselor line, got:\n%s", out)
	}
	if !strings.Contains(out, "[1] Client: Ikke så mye.") {
		t.Errorf("expected client line, got:\n%s", out)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := map[string]Difficulty{
		"lett":      DifficultyEasy,
		"Easy":      DifficultyEasy,
		"vanskelig": DifficultyHard,
		"hard":      DifficultyHard,
		"moderat":   DifficultyModerate,
		"":          DifficultyModerate,
		"banana":    DifficultyModerate,
	}
	for in, want := range tests {
		if got := ParseDifficulty(in); got != want {
			t.Errorf("ParseDifficulty(%q) = %q, want %q", in, got, want)
		}
	}
}
