package hermes

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/oars"
)

const (
	// SubjectAnalysisCompleted carries an AnalysisEvent per finished analysis.
	SubjectAnalysisCompleted = "oars.analysis.completed"
	// SubjectAnalysisRequested carries transcripts to analyze asynchronously.
	SubjectAnalysisRequested = "oars.analysis.requested"
	// SubjectAnalysisFailed carries a FailedEvent for requests that could not
	// be analyzed.
	SubjectAnalysisFailed = "oars.analysis.failed"
)

// AnalysisEvent is published once per finished analysis so downstream
// consumers (dashboards, LMS bridges) can track progress without polling.
type AnalysisEvent struct {
	AnalysisID   string            `json:"analysis_id"`
	TotalScore   int               `json:"total_score"`
	Counts       oars.Counts       `json:"counts"`
	StrategyUsed analysis.Strategy `json:"strategy_used"`
	Language     string            `json:"language"`
	Sufficient   bool              `json:"sufficient"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewAnalysisEvent extracts the event payload from a result.
func NewAnalysisEvent(r *analysis.Result) AnalysisEvent {
	return AnalysisEvent{
		AnalysisID:   r.ID,
		TotalScore:   r.TotalScore,
		Counts:       r.Counts,
		StrategyUsed: r.StrategyUsed,
		Language:     r.Language,
		Sufficient:   r.Feedback.Sufficient,
		CreatedAt:    r.CreatedAt,
	}
}

// FailedEvent reports a rejected analysis request.
type FailedEvent struct {
	RequestID string    `json:"request_id"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failed_at"`
}

type publisher interface {
	Publish(subject string, data any) error
}

// EventSink publishes an AnalysisEvent for every recorded result.
type EventSink struct {
	pub publisher
}

func NewEventSink(c *Client) *EventSink {
	return &EventSink{pub: c}
}

func (s *EventSink) Name() string { return "nats" }

func (s *EventSink) Record(_ context.Context, r *analysis.Result) error {
	if err := s.pub.Publish(SubjectAnalysisCompleted, NewAnalysisEvent(r)); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectAnalysisCompleted, err)
	}
	return nil
}
