// Package simulator plays the job seeker in a practice conversation.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/oars/internal/llm"
	"github.com/MikeSquared-Agency/oars/internal/oars"
	"github.com/MikeSquared-Agency/oars/internal/rules"
	"github.com/MikeSquared-Agency/oars/internal/topics"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

const (
	// FallbackReply is returned when the provider produced no text.
	FallbackReply = "Beklager, noe gikk galt – prøv å sende meldingen på nytt."

	bootstrapMessage = "Hei. (Første melding i samtalen.)"
	historyWindow    = 12
	replyMaxTokens   = 300
)

// ReplyRequest is one step of a practice session. Transcript holds the
// conversation so far; the last counselor turn is the one to answer.
type ReplyRequest struct {
	Topic      string               `json:"topic"`
	Difficulty string               `json:"difficulty"`
	Transcript []transcript.RawTurn `json:"transcript"`
}

type Simulator struct {
	llm           llm.Provider
	rules         *rules.RuleSet
	logger        *slog.Logger
	fallbackModel string
}

// New creates a simulator. rs reads the counselor's last utterance for the
// question-type hint.
func New(provider llm.Provider, rs *rules.RuleSet, logger *slog.Logger) *Simulator {
	return &Simulator{llm: provider, rules: rs, logger: logger}
}

// WithFallbackModel sets a model retried once when the first answer is empty.
func (s *Simulator) WithFallbackModel(model string) *Simulator {
	s.fallbackModel = model
	return s
}

// NormalizeTopic maps free text onto one of the practice topics.
func NormalizeTopic(t string) string {
	v := strings.ToLower(strings.TrimSpace(t))
	switch {
	case strings.Contains(v, "oppmøte"), strings.Contains(v, "attendance"):
		return topics.ManglendeOppmote
	case strings.Contains(v, "rus"), strings.Contains(v, "substance"), strings.Contains(v, "drug"):
		return topics.RedusereRusbruk
	case strings.Contains(v, "aggress"):
		return topics.AggressivAtferd
	default:
		return topics.Jobbambivalens
	}
}

// NormalizeDifficulty accepts prefixes such as "vansk" as well as the
// labels understood by transcript.ParseDifficulty.
func NormalizeDifficulty(d string) transcript.Difficulty {
	v := strings.ToLower(strings.TrimSpace(d))
	switch {
	case strings.HasPrefix(v, "lett"):
		return transcript.DifficultyEasy
	case strings.HasPrefix(v, "vansk"):
		return transcript.DifficultyHard
	default:
		return transcript.ParseDifficulty(v)
	}
}

// Classify reads the counselor utterance with the rule set.
func (s *Simulator) Classify(text string) QuestionType {
	_, labels := oars.CollectEvidence(s.rules, text)
	switch {
	case labels.OpenQuestion:
		return QuestionOpen
	case labels.ClosedQuestion:
		return QuestionClosed
	default:
		return Statement
	}
}

// Reply asks the provider for the client's next utterance.
func (s *Simulator) Reply(ctx context.Context, req ReplyRequest) (string, error) {
	topic := NormalizeTopic(req.Topic)
	difficulty := NormalizeDifficulty(req.Difficulty)
	turns := transcript.Normalize(req.Transcript)

	clientTurns := 0
	lastCounselor := ""
	for _, t := range turns {
		if t.IsCounselor() {
			lastCounselor = t.Text
		} else {
			clientTurns++
		}
	}
	hint := s.Classify(lastCounselor)

	cr := llm.CompletionRequest{
		System:    SystemPrompt(topic, difficulty, clientTurns, hint),
		Messages:  history(turns),
		MaxTokens: replyMaxTokens,
	}

	s.logger.Debug("simulating client reply",
		"topic", topic,
		"difficulty", difficulty,
		"turns", len(turns),
		"hint", hint,
	)

	resp, err := s.llm.Complete(ctx, cr)
	if err != nil {
		return "", fmt.Errorf("simulate reply: %w", err)
	}
	raw := resp.Content

	if strings.TrimSpace(raw) == "" && s.fallbackModel != "" {
		s.logger.Warn("empty reply, retrying with fallback model", "model", s.fallbackModel)
		cr.Model = s.fallbackModel
		if resp, err := s.llm.Complete(ctx, cr); err != nil {
			s.logger.Error("fallback reply failed", "error", err)
		} else {
			raw = resp.Content
		}
	}

	return PostProcess(raw), nil
}

// history converts the tail of the conversation into alternating chat
// messages that start with the counselor. Consecutive turns by the same
// speaker are joined.
func history(turns []transcript.Turn) []llm.Message {
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	msgs := make([]llm.Message, 0, len(turns)+1)
	if len(turns) == 0 || !turns[0].IsCounselor() {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: bootstrapMessage})
	}
	for _, t := range turns {
		role := llm.RoleAssistant
		if t.IsCounselor() {
			role = llm.RoleUser
		}
		if n := len(msgs); n > 0 && msgs[n-1].Role == role {
			msgs[n-1].Content += "\n\n" + t.Text
			continue
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Text})
	}
	return msgs
}

// PostProcess trims the reply, substitutes FallbackReply for empty text and
// ensures terminal punctuation.
func PostProcess(reply string) string {
	out := strings.TrimSpace(reply)
	if out == "" {
		return FallbackReply
	}
	if !strings.HasSuffix(out, ".") && !strings.HasSuffix(out, "!") && !strings.HasSuffix(out, "?") {
		out += "."
	}
	return out
}
