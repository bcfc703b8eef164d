package analysis

import (
	"time"

	"github.com/MikeSquared-Agency/oars/internal/feedback"
	"github.com/MikeSquared-Agency/oars/internal/oars"
	"github.com/MikeSquared-Agency/oars/internal/score"
	"github.com/MikeSquared-Agency/oars/internal/topics"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

// Request is one transcript to analyze. Empty fields take the service
// defaults.
type Request struct {
	Turns      []transcript.RawTurn `json:"transcript"`
	Topic      string               `json:"topic,omitempty"`
	Difficulty string               `json:"difficulty,omitempty"`
	Language   string               `json:"language,omitempty"`
	Strategy   string               `json:"strategy,omitempty"`
}

// Result is the finished analysis. Counts, Ratios, Examples, TotalScore and
// Feedback form the report contract; the rest is provenance.
type Result struct {
	ID           string                `json:"id"`
	CreatedAt    time.Time             `json:"created_at"`
	Language     string                `json:"language"`
	Difficulty   transcript.Difficulty `json:"difficulty"`
	StrategyUsed Strategy              `json:"strategy_used"`

	Counts         oars.Counts       `json:"counts"`
	Ratios         oars.Ratios       `json:"ratios"`
	Examples       oars.Examples     `json:"examples"`
	TotalScore     int               `json:"total_score"`
	Band           string            `json:"band"`
	ScoreBreakdown score.Breakdown   `json:"score_breakdown"`
	Feedback       feedback.Feedback `json:"feedback"`

	Topics topics.Summary    `json:"topics"`
	Length transcript.Length `json:"length"`
	Turns  []oars.TurnLabels `json:"turns"`
}
