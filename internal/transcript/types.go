package transcript

import (
	"strings"
	"time"
)

// Role identifies who spoke a turn.
type Role string

const (
	RoleCounselor Role = "counselor" // the trainee (jobbkonsulent)
	RoleClient    Role = "client"    // the simulated person (jobbsøker)
)

// Turn is a single normalized utterance. Index is its position in the transcript.
type Turn struct {
	Index     int       `json:"index"`
	Speaker   Role      `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// IsCounselor reports whether the turn was spoken by the trainee.
func (t Turn) IsCounselor() bool { return t.Speaker == RoleCounselor }

// RawTurn is the loosely typed turn accepted at the system boundary.
// Both the English and the Norwegian field names are understood.
type RawTurn struct {
	Speaker string `json:"speaker,omitempty"`
	Rolle   string `json:"rolle,omitempty"`
	Text    string `json:"text,omitempty"`
	Tekst   string `json:"tekst,omitempty"`
	TS      int64  `json:"ts,omitempty"` // unix ms
}

// Length holds word-count statistics over a transcript.
type Length struct {
	CounselorTurns int      `json:"student_turns"`
	WordsCounselor int      `json:"total_words_student"`
	WordsClient    int      `json:"total_words_client"`
	WordsTotal     int      `json:"total_words_all"`
	Flags          []string `json:"flags"`
}

// Difficulty is the simulated client's resistance level.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "lett"
	DifficultyModerate Difficulty = "moderat"
	DifficultyHard     Difficulty = "vanskelig"
)

// ParseDifficulty accepts Norwegian and English labels. Anything else is
// moderate.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lett", "easy":
		return DifficultyEasy
	case "vanskelig", "hard", "difficult":
		return DifficultyHard
	default:
		return DifficultyModerate
	}
}
