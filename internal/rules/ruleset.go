package rules

import (
	"embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var builtin embed.FS

// DefaultLanguage is the target language of the training tool.
const DefaultLanguage = "nb"

// Definition is the serialized form of a rule set. Every entry is a regular
// expression evaluated against a normalized sentence.
type Definition struct {
	Language        string   `yaml:"language"`
	OpenStart       []string `yaml:"open_start"`
	OpenHelp        []string `yaml:"open_help"`
	ClosedStart     []string `yaml:"closed_start"`
	Invite          []string `yaml:"invite"`
	ClosedClause    []string `yaml:"closed_clause"`
	ConfirmTag      []string `yaml:"confirm_tag"`
	Affirmation     []string `yaml:"affirmation"`
	ReflectSimple   []string `yaml:"reflect_simple"`
	ReflectComplex  []string `yaml:"reflect_complex"`
	SummaryCue      []string `yaml:"summary_cue"`
	TransitionCue   []string `yaml:"transition_cue"`
	EndingCue       []string `yaml:"ending_cue"`
	FallbackSubject []string `yaml:"fallback_subject"`
	FallbackExclude []string `yaml:"fallback_exclude"`
}

// RuleSet is a compiled, immutable set of classification predicates.
// It is safe for concurrent use.
type RuleSet struct {
	language string

	openStart       []*regexp.Regexp
	openHelp        []*regexp.Regexp
	closedStart     []*regexp.Regexp
	invite          []*regexp.Regexp
	closedClause    []*regexp.Regexp
	confirmTag      []*regexp.Regexp
	affirmation     []*regexp.Regexp
	reflectSimple   []*regexp.Regexp
	reflectComplex  []*regexp.Regexp
	summaryCue      []*regexp.Regexp
	transitionCue   []*regexp.Regexp
	endingCue       []*regexp.Regexp
	fallbackSubject []*regexp.Regexp
	fallbackExclude []*regexp.Regexp
}

// Compile builds a RuleSet from a definition. Question, reflection and
// summary rules must be present; an invalid pattern fails the whole set.
func Compile(def Definition) (*RuleSet, error) {
	if def.Language == "" {
		return nil, fmt.Errorf("rule set: language is required")
	}
	if len(def.OpenStart) == 0 || len(def.ReflectSimple) == 0 || len(def.SummaryCue) == 0 {
		return nil, fmt.Errorf("rule set %s: open_start, reflect_simple and summary_cue are required", def.Language)
	}

	rs := &RuleSet{language: def.Language}
	fields := []struct {
		name string
		src  []string
		dst  *[]*regexp.Regexp
	}{
		{"open_start", def.OpenStart, &rs.openStart},
		{"open_help", def.OpenHelp, &rs.openHelp},
		{"closed_start", def.ClosedStart, &rs.closedStart},
		{"invite", def.Invite, &rs.invite},
		{"closed_clause", def.ClosedClause, &rs.closedClause},
		{"confirm_tag", def.ConfirmTag, &rs.confirmTag},
		{"affirmation", def.Affirmation, &rs.affirmation},
		{"reflect_simple", def.ReflectSimple, &rs.reflectSimple},
		{"reflect_complex", def.ReflectComplex, &rs.reflectComplex},
		{"summary_cue", def.SummaryCue, &rs.summaryCue},
		{"transition_cue", def.TransitionCue, &rs.transitionCue},
		{"ending_cue", def.EndingCue, &rs.endingCue},
		{"fallback_subject", def.FallbackSubject, &rs.fallbackSubject},
		{"fallback_exclude", def.FallbackExclude, &rs.fallbackExclude},
	}
	for _, f := range fields {
		compiled, err := compileAll(f.src)
		if err != nil {
			return nil, fmt.Errorf("rule set %s: %s: %w", def.Language, f.name, err)
		}
		*f.dst = compiled
	}
	return rs, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Parse decodes and compiles a YAML rule definition.
func Parse(data []byte) (*RuleSet, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse rule set: %w", err)
	}
	return Compile(def)
}

// Load returns the built-in rule set for a language ("nb" or "en").
func Load(lang string) (*RuleSet, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLanguage
	}
	data, err := builtin.ReadFile("data/" + lang + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown rule set language %q", lang)
	}
	return Parse(data)
}

// LoadFile compiles a custom rule set from a YAML file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	return Parse(data)
}

// Languages lists the built-in rule set languages.
func Languages() []string {
	entries, err := builtin.ReadDir("data")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(langs)
	return langs
}

// MustLoad is Load for package-level test fixtures and built-in languages.
func MustLoad(lang string) *RuleSet {
	rs, err := Load(lang)
	if err != nil {
		panic(err)
	}
	return rs
}

// Language returns the rule set's language code.
func (rs *RuleSet) Language() string { return rs.language }
