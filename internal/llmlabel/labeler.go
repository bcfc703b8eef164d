// Package llmlabel is the alternate labeling strategy: it asks an LLM for
// OARS labels and reconciles them with the same rules as the rule labeler.
package llmlabel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/oars/internal/llm"
	"github.com/MikeSquared-Agency/oars/internal/oars"
	"github.com/MikeSquared-Agency/oars/internal/rules"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

// ErrInvalidLabels is returned when no attempt produced a structurally
// valid answer.
var ErrInvalidLabels = errors.New("invalid llm labels")

// DefaultMaxAttempts bounds calls per transcript.
const DefaultMaxAttempts = 2

type Labeler struct {
	llm         llm.Provider
	rules       *rules.RuleSet
	logger      *slog.Logger
	maxAttempts int
}

func New(provider llm.Provider, rs *rules.RuleSet, logger *slog.Logger) *Labeler {
	return &Labeler{llm: provider, rules: rs, logger: logger, maxAttempts: DefaultMaxAttempts}
}

// WithMaxAttempts overrides the attempt budget (minimum 1).
func (l *Labeler) WithMaxAttempts(n int) *Labeler {
	l.maxAttempts = max(1, n)
	return l
}

func (l *Labeler) Name() string { return "llm" }

type llmResponse struct {
	Labels []oars.TurnLabels `json:"labels"`
}

// Label asks the provider for labels, validates them and reconciles them.
// A transcript without counselor turns needs no call.
func (l *Labeler) Label(ctx context.Context, turns []transcript.Turn) ([]oars.TurnLabels, error) {
	want := transcript.CounselorIndexes(turns)
	if len(want) == 0 {
		return []oars.TurnLabels{}, nil
	}

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(userPrompt, l.rules.Language(), transcript.Format(turns))},
	}

	l.logger.Info("labeling transcript with llm",
		"provider", l.llm.Name(),
		"turns", len(turns),
		"counselor_turns", len(want),
	)

	var lastErr error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		resp, err := l.llm.Complete(ctx, llm.CompletionRequest{
			System:    systemPrompt,
			Messages:  messages,
			MaxTokens: 4096,
			JSONMode:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("llm labeling: %w", err)
		}

		labels, err := parse(resp.Content, turns, want)
		if err == nil {
			l.logger.Info("llm labeling complete", "attempt", attempt, "labels", len(labels))
			return oars.ReconcileExternal(l.rules, turns, labels), nil
		}

		lastErr = err
		l.logger.Warn("rejected llm labels",
			"attempt", attempt,
			"error", err,
			"raw", truncate(resp.Content, 500),
		)
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
			llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(retryPrompt, err, want)},
		)
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrInvalidLabels, l.maxAttempts, lastErr)
}

// parse decodes and structurally validates an answer: every index must be
// a counselor turn, appear once, and every counselor turn must be covered.
func parse(raw string, turns []transcript.Turn, want []int) ([]oars.TurnLabels, error) {
	var resp llmResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}

	counselor := make(map[int]bool, len(want))
	for _, i := range want {
		counselor[i] = true
	}
	seen := make(map[int]bool, len(resp.Labels))
	for _, tl := range resp.Labels {
		if tl.Index < 0 || tl.Index >= len(turns) {
			return nil, fmt.Errorf("index %d out of range", tl.Index)
		}
		if !counselor[tl.Index] {
			return nil, fmt.Errorf("index %d is not a counselor turn", tl.Index)
		}
		if seen[tl.Index] {
			return nil, fmt.Errorf("duplicate index %d", tl.Index)
		}
		seen[tl.Index] = true
	}
	for _, i := range want {
		if !seen[i] {
			return nil, fmt.Errorf("missing counselor turn %d", i)
		}
	}
	return resp.Labels, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
