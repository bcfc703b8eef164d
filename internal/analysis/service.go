// Package analysis runs the full pipeline over one transcript: labeling,
// tally, topic shifts, score and feedback. Finished results are handed to
// optional sinks.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/oars/internal/feedback"
	"github.com/MikeSquared-Agency/oars/internal/llm"
	"github.com/MikeSquared-Agency/oars/internal/llmlabel"
	"github.com/MikeSquared-Agency/oars/internal/oars"
	"github.com/MikeSquared-Agency/oars/internal/rules"
	"github.com/MikeSquared-Agency/oars/internal/score"
	"github.com/MikeSquared-Agency/oars/internal/topics"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

var (
	ErrEmptyTranscript     = errors.New("empty transcript")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnknownStrategy     = errors.New("unknown strategy")
)

// Strategy selects where turn labels come from.
type Strategy string

const (
	StrategyRules Strategy = "rules"
	StrategyLLM   Strategy = "llm"
)

// ParseStrategy maps "" to def.
func ParseStrategy(s string, def Strategy) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case StrategyRules:
		return StrategyRules, nil
	case StrategyLLM:
		return StrategyLLM, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Sink receives every finished analysis. Errors are logged by the service
// and never fail the request.
type Sink interface {
	Name() string
	Record(ctx context.Context, r *Result) error
}

// Options configures a Service. Zero values use defaults.
type Options struct {
	// RuleSets overrides or extends the built-in rule sets by language.
	RuleSets        map[string]*rules.RuleSet
	DefaultLanguage string
	DefaultStrategy Strategy
	MaxExamples     int
	LLM             llm.Provider
	Sinks           []Sink
	Now             func() time.Time
}

// Service is safe for concurrent use: it holds only immutable rule sets and
// collaborators.
type Service struct {
	rules       map[string]*rules.RuleSet
	defaultLang string
	strategy    Strategy
	maxExamples int
	llm         llm.Provider
	sinks       []Sink
	now         func() time.Time
	logger      *slog.Logger
}

func NewService(opts Options, logger *slog.Logger) (*Service, error) {
	sets := make(map[string]*rules.RuleSet)
	for _, lang := range rules.Languages() {
		rs, err := rules.Load(lang)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		sets[lang] = rs
	}
	for lang, rs := range opts.RuleSets {
		sets[strings.ToLower(lang)] = rs
	}

	s := &Service{
		rules:       sets,
		defaultLang: strings.ToLower(strings.TrimSpace(opts.DefaultLanguage)),
		strategy:    opts.DefaultStrategy,
		maxExamples: opts.MaxExamples,
		llm:         opts.LLM,
		sinks:       opts.Sinks,
		now:         opts.Now,
		logger:      logger,
	}
	if s.defaultLang == "" {
		s.defaultLang = rules.DefaultLanguage
	}
	if _, ok := sets[s.defaultLang]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, s.defaultLang)
	}
	if s.strategy == "" {
		s.strategy = StrategyRules
	}
	if s.maxExamples <= 0 {
		s.maxExamples = oars.DefaultMaxExamples
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Rules returns the rule set for lang, or the default language when lang
// is empty.
func (s *Service) Rules(lang string) (*rules.RuleSet, error) {
	v := strings.ToLower(strings.TrimSpace(lang))
	if v == "" {
		v = s.defaultLang
	}
	rs, ok := s.rules[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return rs, nil
}

// LLMEnabled reports whether an LLM provider is configured.
func (s *Service) LLMEnabled() bool { return s.llm != nil }

// Analyze runs the pipeline. It returns ErrEmptyTranscript when no turn
// survives normalization; the scorer is not invoked in that case.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	turns := transcript.Normalize(req.Turns)
	if len(turns) == 0 {
		return nil, ErrEmptyTranscript
	}
	rs, err := s.Rules(req.Language)
	if err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(req.Strategy, s.strategy)
	if err != nil {
		return nil, err
	}

	labels, used := s.label(ctx, rs, turns, strategy)
	res := s.compute(turns, labels, rs.Language(), req.Topic, transcript.ParseDifficulty(req.Difficulty))
	res.StrategyUsed = used

	s.logger.Info("analysis complete",
		"id", res.ID,
		"language", res.Language,
		"strategy", used,
		"turns", len(turns),
		"total_score", res.TotalScore,
	)

	s.record(ctx, res)
	return res, nil
}

// label runs the requested strategy. The LLM strategy is best effort and
// falls back to the rule set on any failure.
func (s *Service) label(ctx context.Context, rs *rules.RuleSet, turns []transcript.Turn, strategy Strategy) ([]oars.TurnLabels, Strategy) {
	if strategy == StrategyLLM {
		if s.llm == nil {
			s.logger.Warn("llm strategy requested without provider, using rules")
		} else {
			labels, err := llmlabel.New(s.llm, rs, s.logger).Label(ctx, turns)
			if err == nil {
				return labels, StrategyLLM
			}
			s.logger.Warn("llm labeling failed, using rules", "error", err)
		}
	}
	return oars.LabelTurns(rs, turns), StrategyRules
}

func (s *Service) compute(turns []transcript.Turn, labels []oars.TurnLabels, lang, topic string, d transcript.Difficulty) *Result {
	tally := oars.Summarize(turns, labels, s.maxExamples)
	length := transcript.LengthStats(turns)
	tp := topics.Analyze(turns, topic)

	b := score.Score(score.Inputs{
		OpenQuestions:          tally.Counts.OpenQuestions,
		ClosedQuestions:        tally.Counts.ClosedQuestions,
		ReflectionsComplex:     tally.Counts.ReflectionsComplex,
		Affirmations:           tally.Counts.Affirmations,
		Summaries:              tally.Counts.Summaries,
		OpenQuestionShare:      tally.Ratios.OpenQuestionShare,
		ReflectionToQuestion:   tally.Ratios.ReflectionToQuestion,
		ComplexReflectionShare: tally.Ratios.ComplexReflectionShare,
		Turns:                  length.CounselorTurns,
		Shifts:                 tp.TopicShifts,
	})

	fb := feedback.Generate(feedback.Input{
		Counts:     tally.Counts,
		Ratios:     tally.Ratios,
		Turns:      length.CounselorTurns,
		Shifts:     tp.TopicShifts,
		Difficulty: d,
	}, feedback.Options{Language: lang})

	return &Result{
		ID:             uuid.NewString(),
		CreatedAt:      s.now().UTC(),
		Language:       lang,
		Difficulty:     d,
		Counts:         tally.Counts,
		Ratios:         tally.Ratios,
		Examples:       tally.Examples,
		TotalScore:     b.Total,
		Band:           score.Band(b.Total, lang),
		ScoreBreakdown: b,
		Feedback:       fb,
		Topics:         tp,
		Length:         length,
		Turns:          tally.Turns,
	}
}

func (s *Service) record(ctx context.Context, res *Result) {
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, res); err != nil {
			s.logger.Error("analysis sink failed", "sink", sink.Name(), "id", res.ID, "error", err)
		}
	}
}
