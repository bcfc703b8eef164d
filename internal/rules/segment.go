package rules

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// A sentence is a run of non-terminal characters plus at most one terminal
// mark. Abbreviations, decimals and quoted questions split naively.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)

// SplitSentences splits raw text into trimmed, non-empty sentences with
// their terminal punctuation attached.
func SplitSentences(raw string) []string {
	var out []string
	for _, m := range sentenceRe.FindAllString(raw, -1) {
		if s := strings.TrimSpace(m); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsQuestion reports whether a sentence ends in a question mark.
func IsQuestion(sentence string) bool {
	return strings.HasSuffix(strings.TrimSpace(sentence), "?")
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Normalize lowercases s, applies NFKC and drops every character outside
// the allow-list [a-z0-9æøåéü.,!?-'] and whitespace. Composed Norwegian
// letters survive; runs of whitespace collapse to one space.
func Normalize(s string) string {
	s = norm.NFKC.String(apostrophes.Replace(strings.ToLower(s)))

	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == 'æ', r == 'ø', r == 'å', r == 'é', r == 'ü',
			r == '.', r == ',', r == '!', r == '?', r == '-', r == '\'':
			if space && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			space = false
			sb.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			space = true
		}
	}
	return sb.String()
}
