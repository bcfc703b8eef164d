package transcript

import (
	"strings"
	"time"
)

const (
	minWords = 180
	maxWords = 2000
)

// ParseRole maps a speaker label to a Role. Unknown labels return ok=false.
func ParseRole(label string) (Role, bool) {
	v := strings.ToLower(strings.TrimSpace(label))
	switch {
	case v == "":
		return "", false
	case v == string(RoleCounselor), v == "user", strings.Contains(v, "konsulent"):
		return RoleCounselor, true
	case v == string(RoleClient), v == "assistant", strings.Contains(v, "søker"), strings.Contains(v, "soker"):
		return RoleClient, true
	default:
		return "", false
	}
}

// Normalize converts boundary turns into Turns. Turns with a missing
// speaker or empty text are dropped; indexes are assigned after dropping.
func Normalize(raw []RawTurn) []Turn {
	turns := make([]Turn, 0, len(raw))
	for _, r := range raw {
		speaker := r.Speaker
		if speaker == "" {
			speaker = r.Rolle
		}
		role, ok := ParseRole(speaker)
		if !ok {
			continue
		}

		text := r.Text
		if text == "" {
			text = r.Tekst
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		var ts time.Time
		if r.TS > 0 {
			ts = time.UnixMilli(r.TS).UTC()
		}

		turns = append(turns, Turn{
			Index:     len(turns),
			Speaker:   role,
			Text:      text,
			Timestamp: ts,
		})
	}
	return turns
}

// CounselorIndexes returns the indexes of counselor turns in order.
func CounselorIndexes(turns []Turn) []int {
	var idx []int
	for _, t := range turns {
		if t.IsCounselor() {
			idx = append(idx, t.Index)
		}
	}
	return idx
}

// NearEnd returns the indexes of the last and second-to-last counselor turns.
func NearEnd(turns []Turn) map[int]bool {
	idx := CounselorIndexes(turns)
	near := make(map[int]bool, 2)
	for i := len(idx) - 1; i >= 0 && i >= len(idx)-2; i-- {
		near[idx[i]] = true
	}
	return near
}

// LengthStats counts turns and words per side.
func LengthStats(turns []Turn) Length {
	var l Length
	for _, t := range turns {
		words := len(strings.Fields(t.Text))
		switch t.Speaker {
		case RoleCounselor:
			l.CounselorTurns++
			l.WordsCounselor += words
		case RoleClient:
			l.WordsClient += words
		}
	}
	l.WordsTotal = l.WordsCounselor + l.WordsClient
	l.Flags = []string{}
	if l.WordsTotal < minWords {
		l.Flags = append(l.Flags, "too_short")
	}
	if l.WordsTotal > maxWords {
		l.Flags = append(l.Flags, "too_long")
	}
	return l
}
