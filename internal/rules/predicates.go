package rules

import (
	"regexp"
	"sort"
)

// All predicates take a sentence already passed through Normalize.

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// countMatches counts the distinct spans of s matched by any pattern.
// Overlapping matches from different patterns count once.
func countMatches(res []*regexp.Regexp, s string) int {
	var spans [][]int
	for _, re := range res {
		spans = append(spans, re.FindAllStringIndex(s, -1)...)
	}
	if len(spans) == 0 {
		return 0
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	n, end := 1, spans[0][1]
	for _, sp := range spans[1:] {
		if sp[0] < end {
			end = max(end, sp[1])
			continue
		}
		n++
		end = sp[1]
	}
	return n
}

// StartsOpen reports whether the sentence literally opens as an open question.
func (rs *RuleSet) StartsOpen(s string) bool {
	return anyMatch(rs.openStart, s) || anyMatch(rs.openHelp, s)
}

// IsClosedStart reports whether the sentence opens with an auxiliary or modal verb.
func (rs *RuleSet) IsClosedStart(s string) bool { return anyMatch(rs.closedStart, s) }

// HasInvite reports an explicit invitation to elaborate.
func (rs *RuleSet) HasInvite(s string) bool { return anyMatch(rs.invite, s) }

// HasClosedClause reports an embedded yes/no clause after a comma.
func (rs *RuleSet) HasClosedClause(s string) bool { return anyMatch(rs.closedClause, s) }

// HasConfirmTag reports a trailing confirmation tag ("…, is that right?").
func (rs *RuleSet) HasConfirmTag(s string) bool { return anyMatch(rs.confirmTag, s) }

// IsOpenQuestion classifies a question sentence as open. A closed starter
// carrying an invitation to elaborate counts as open.
func (rs *RuleSet) IsOpenQuestion(s string) bool {
	if rs.StartsOpen(s) {
		return true
	}
	return rs.IsClosedStart(s) && rs.HasInvite(s)
}

func (rs *RuleSet) CountAffirmation(s string) int { return countMatches(rs.affirmation, s) }
func (rs *RuleSet) CountSimple(s string) int      { return countMatches(rs.reflectSimple, s) }
func (rs *RuleSet) CountComplex(s string) int     { return countMatches(rs.reflectComplex, s) }

func (rs *RuleSet) HasSummaryCue(s string) bool    { return anyMatch(rs.summaryCue, s) }
func (rs *RuleSet) HasTransitionCue(s string) bool { return anyMatch(rs.transitionCue, s) }
func (rs *RuleSet) HasEndingCue(s string) bool     { return anyMatch(rs.endingCue, s) }

// IsFallbackReflection reports a statement that opens with the second-person
// pronoun and a verb, excluding directives such as "you should" or "du må".
// Callers apply it only when no other statement rule fired.
func (rs *RuleSet) IsFallbackReflection(s string) bool {
	return anyMatch(rs.fallbackSubject, s) && !anyMatch(rs.fallbackExclude, s)
}
