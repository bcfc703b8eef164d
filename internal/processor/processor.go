// Package processor analyzes transcripts delivered as NATS events.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/hermes"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

const (
	defaultTimeout   = 60 * time.Second
	maxTranscriptLen = 4 << 20
)

// RequestEvent is the payload of hermes.SubjectAnalysisRequested. The
// transcript is either inline or fetched from TranscriptURL.
type RequestEvent struct {
	RequestID     string               `json:"request_id"`
	Transcript    []transcript.RawTurn `json:"transcript,omitempty"`
	TranscriptURL string               `json:"transcript_url,omitempty"`
	Topic         string               `json:"topic,omitempty"`
	Difficulty    string               `json:"difficulty,omitempty"`
	Language      string               `json:"language,omitempty"`
	Strategy      string               `json:"strategy,omitempty"`
}

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type Publisher interface {
	Publish(subject string, data any) error
}

// Processor turns request events into analyses. Finished results reach
// subscribers through the service's sinks; failures are published here.
type Processor struct {
	analyzer Analyzer
	pub      Publisher
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
}

func New(a Analyzer, pub Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		analyzer: a,
		pub:      pub,
		http:     &http.Client{Timeout: 30 * time.Second},
		timeout:  defaultTimeout,
		logger:   logger,
	}
}

// HandleAnalysisRequested is the NATS handler for oars.analysis.requested.
func (p *Processor) HandleAnalysisRequested(subject string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	var evt RequestEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse analysis request", "subject", subject, "error", err)
		return
	}

	p.logger.Info("processing analysis request",
		"request_id", evt.RequestID,
		"inline_turns", len(evt.Transcript),
		"transcript_url", evt.TranscriptURL,
	)

	res, err := p.process(ctx, evt)
	if err != nil {
		p.logger.Error("analysis request failed", "request_id", evt.RequestID, "error", err)
		p.fail(evt.RequestID, err)
		return
	}

	p.logger.Info("analysis request complete",
		"request_id", evt.RequestID,
		"analysis_id", res.ID,
		"total_score", res.TotalScore,
	)
}

func (p *Processor) process(ctx context.Context, evt RequestEvent) (*analysis.Result, error) {
	req := analysis.Request{
		Turns:      evt.Transcript,
		Topic:      evt.Topic,
		Difficulty: evt.Difficulty,
		Language:   evt.Language,
		Strategy:   evt.Strategy,
	}
	if len(req.Turns) == 0 && evt.TranscriptURL != "" {
		f, err := p.fetchTranscript(ctx, evt.TranscriptURL)
		if err != nil {
			return nil, err
		}
		req.Turns = f.Turns
		if req.Topic == "" {
			req.Topic = f.Topic
		}
		if req.Difficulty == "" {
			req.Difficulty = f.Difficulty
		}
	}
	return p.analyzer.Analyze(ctx, req)
}

// fetchTranscript downloads a transcript document in any format
// transcript.Parse accepts.
func (p *Processor) fetchTranscript(ctx context.Context, url string) (*transcript.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build transcript request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript source returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptLen))
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	f, err := transcript.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return f, nil
}

func (p *Processor) fail(requestID string, cause error) {
	msg := cause.Error()
	if errors.Is(cause, analysis.ErrEmptyTranscript) {
		msg = "empty transcript"
	}
	if err := p.pub.Publish(hermes.SubjectAnalysisFailed, hermes.FailedEvent{
		RequestID: requestID,
		Error:     msg,
		FailedAt:  time.Now().UTC(),
	}); err != nil {
		p.logger.Warn("failed to publish analysis failure", "request_id", requestID, "error", err)
	}
}
