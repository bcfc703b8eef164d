// Package topics tags turns with conversation topics and counts topic
// shifts for the scorer's focus and summary expectations.
package topics

import (
	"strings"

	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

const (
	Jobbambivalens   = "Jobbambivalens"
	ManglendeOppmote = "Manglende oppmøte"
	RedusereRusbruk  = "Redusere rusbruk"
	AggressivAtferd  = "Aggressiv atferd"

	DefaultTopic = Jobbambivalens
)

// All lists the practice topics in display order.
var All = []string{Jobbambivalens, ManglendeOppmote, RedusereRusbruk, AggressivAtferd}

// related maps a lowercased topic to keywords that fold into it. A keyword
// matches at the start of a word, so "rus" also matches "rusbruk".
var related = map[string][]string{
	"jobbambivalens": {
		"jobb", "arbeid", "lønn", "stilling", "deltid", "heltid", "praksis",
		"opptrapping", "trygd", "ytelser", "nav", "aap", "dagpenger", "pensjon",
		"tilrettelegging", "arbeidsevne", "kapasitet", "helse", "utbrenthet", "stress",
		"job", "work", "salary", "position", "part-time", "full-time", "benefits", "burnout",
	},
	"manglende oppmøte": {
		"oppmøte", "møter", "for sent", "fravær", "avtaler", "telefon", "varsling",
		"rutiner", "årsaker", "hindringer", "transport", "søvn", "motivasjon",
		"attendance", "meeting", "late", "absence", "appointment", "routine", "sleep",
	},
	"redusere rusbruk": {
		"rus", "alkohol", "cannabis", "hasj", "piller", "substanser", "kontroll",
		"abstinens", "bakrus", "triggere", "mengde", "hyppighet", "drikk",
		"alcohol", "drink", "drug", "pills", "hangover", "craving", "sober",
	},
	"aggressiv atferd": {
		"konflikt", "krangel", "sinte reaksjoner", "sinne", "utbrudd", "grenser", "trigger",
		"regler", "kollega", "kunde", "tillit", "advarsel", "oppsigelse",
		"conflict", "argument", "anger", "angry", "outburst", "colleague", "customer", "warning",
	},
}

// banned labels never count as a topic.
var banned = map[string]bool{
	"annet": true, "other": true, "diverse": true, "ukjent": true, "-": true,
	"avslutning": true, "slutt": true, "closing": true, "oppsummering": true,
	"intro": true, "oppstart": true, "start": true, "smalltalk": true,
	"hilsen": true, "hilsing": true, "prat": true, "samtale": true,
}

// TurnTopic tags one turn.
type TurnTopic struct {
	TurnIndex int    `json:"turnIndex"`
	Topic     string `json:"topic"`
}

// Summary is the topic analysis of a transcript.
type Summary struct {
	PrimaryTopic string      `json:"primary_topic"`
	OtherTopics  []string    `json:"other_topics"`
	TopicShifts  int         `json:"topic_shifts"`
	ByTurn       []TurnTopic `json:"by_turn"`
}

// SafeTopic returns label if it is a known topic, else DefaultTopic.
func SafeTopic(label string) string {
	v := strings.TrimSpace(label)
	for _, t := range All {
		if strings.EqualFold(v, t) {
			return t
		}
	}
	return DefaultTopic
}

// Analyze tags every turn with the topic whose lexicon it hits most and
// groups the result around primary. Turns with no hits or a tie are left
// untagged.
func Analyze(turns []transcript.Turn, primary string) Summary {
	primary = SafeTopic(primary)
	byTurn := make([]TurnTopic, 0, len(turns))
	for _, t := range turns {
		if topic := classify(t.Text); topic != "" {
			byTurn = append(byTurn, TurnTopic{TurnIndex: t.Index, Topic: topic})
		}
	}
	return Group(primary, nil, byTurn)
}

// Group folds related and banned labels, collects the remaining other
// topics and counts shifts between consecutive tagged turns. It also
// accepts labels produced outside Analyze.
func Group(primary string, others []string, byTurn []TurnTopic) Summary {
	main := strings.ToLower(strings.TrimSpace(primary))
	fold := func(label string) (string, bool) {
		v := strings.ToLower(strings.TrimSpace(label))
		if v == "" || banned[v] {
			return "", false
		}
		if v == main || isRelated(main, v) {
			return main, true
		}
		return v, true
	}

	s := Summary{PrimaryTopic: primary, OtherTopics: []string{}, ByTurn: []TurnTopic{}}
	seen := map[string]bool{}
	addOther := func(label string) {
		g, ok := fold(label)
		if !ok || g == main || seen[g] {
			return
		}
		seen[g] = true
		s.OtherTopics = append(s.OtherTopics, displayName(label))
	}
	for _, o := range others {
		addOther(o)
	}

	prev := ""
	for _, bt := range byTurn {
		g, ok := fold(bt.Topic)
		if !ok {
			continue
		}
		s.ByTurn = append(s.ByTurn, bt)
		addOther(bt.Topic)
		if prev != "" && g != prev {
			s.TopicShifts++
		}
		prev = g
	}
	return s
}

func isRelated(main, label string) bool {
	for _, kw := range related[main] {
		if kw == label {
			return true
		}
	}
	return false
}

func displayName(label string) string {
	v := strings.TrimSpace(label)
	for _, t := range All {
		if strings.EqualFold(v, t) {
			return t
		}
	}
	return strings.ToLower(v)
}

func classify(text string) string {
	padded := " " + strings.Join(strings.FieldsFunc(strings.ToLower(text), isSeparator), " ") + " "
	best, bestHits, tie := "", 0, false
	for _, topic := range All {
		hits := 0
		for _, kw := range related[strings.ToLower(topic)] {
			hits += strings.Count(padded, " "+kw)
		}
		switch {
		case hits > bestHits:
			best, bestHits, tie = topic, hits, false
		case hits == bestHits && hits > 0:
			tie = true
		}
	}
	if tie {
		return ""
	}
	return best
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '.', ',', '!', '?', ';', ':', '"', '(', ')', '«', '»':
		return true
	}
	return false
}
