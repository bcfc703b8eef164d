package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
)

// ErrNotFound is returned when no archived analysis has the requested id.
var ErrNotFound = errors.New("analysis not found")

// ScoreRow is one entry of the score history.
type ScoreRow struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Language     string    `json:"language"`
	StrategyUsed string    `json:"strategy_used"`
	TotalScore   int       `json:"total_score"`
}

// SaveAnalysis archives the finished report document. Saving the same id
// twice overwrites the earlier document.
func (s *Store) SaveAnalysis(ctx context.Context, r *analysis.Result) error {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return fmt.Errorf("analysis id: %w", err)
	}
	counts, err := json.Marshal(r.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO oars_analyses (id, created_at, language, difficulty, strategy_used, total_score, counts, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET total_score = EXCLUDED.total_score, counts = EXCLUDED.counts, document = EXCLUDED.document`,
		id, r.CreatedAt, r.Language, string(r.Difficulty), string(r.StrategyUsed), r.TotalScore, counts, doc,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// GetAnalysis loads an archived analysis by id.
func (s *Store) GetAnalysis(ctx context.Context, id uuid.UUID) (*analysis.Result, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM oars_analyses WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis: %w", err)
	}

	var r analysis.Result
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return &r, nil
}

// Get loads an archived analysis by its string id. Malformed ids are
// reported as ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*analysis.Result, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.GetAnalysis(ctx, uid)
}

// RecentScores returns the newest analyses first.
func (s *Store) RecentScores(ctx context.Context, limit int) ([]ScoreRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, language, strategy_used, total_score
		FROM oars_analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := []ScoreRow{}
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Language, &r.StrategyUsed, &r.TotalScore); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sink adapts the store to analysis.Sink.
type Sink struct {
	store *Store
}

func NewSink(s *Store) *Sink { return &Sink{store: s} }

func (k *Sink) Name() string { return "postgres" }

func (k *Sink) Record(ctx context.Context, r *analysis.Result) error {
	return k.store.SaveAnalysis(ctx, r)
}
