// Package batch tracks progress of offline analysis runs so an interrupted
// run can resume without re-analyzing finished transcripts.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileRecord is the outcome of one analyzed transcript.
type FileRecord struct {
	AnalysisID  string    `json:"analysis_id"`
	TotalScore  int       `json:"total_score"`
	ProcessedAt time.Time `json:"processed_at"`
}

// State is persisted as JSON between runs.
type State struct {
	StartedAt       time.Time             `json:"started_at"`
	LastProcessedAt time.Time             `json:"last_processed_at"`
	Files           map[string]FileRecord `json:"files"`
	Errors          []string              `json:"errors"`

	path string // not serialized
}

// LoadState reads the state at path, or returns a fresh one when the file
// does not exist. A leading ~/ expands to the home directory.
func LoadState(path string) (*State, error) {
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{
				StartedAt: time.Now().UTC(),
				Files:     make(map[string]FileRecord),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if s.Files == nil {
		s.Files = make(map[string]FileRecord)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *State) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed reports whether path finished in an earlier run.
func (s *State) IsProcessed(path string) bool {
	_, ok := s.Files[path]
	return ok
}

// MarkProcessed records a finished transcript.
func (s *State) MarkProcessed(path, analysisID string, totalScore int) {
	s.Files[path] = FileRecord{
		AnalysisID:  analysisID,
		TotalScore:  totalScore,
		ProcessedAt: time.Now().UTC(),
	}
}

// AddError records a processing error.
func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// Pending filters out already processed paths, keeping order.
func (s *State) Pending(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !s.IsProcessed(p) {
			out = append(out, p)
		}
	}
	return out
}

// MeanScore averages the total score over processed files. It returns 0
// when nothing has been processed.
func (s *State) MeanScore() float64 {
	if len(s.Files) == 0 {
		return 0
	}
	sum := 0
	for _, r := range s.Files {
		sum += r.TotalScore
	}
	return float64(sum) / float64(len(s.Files))
}

// Paths lists processed files in sorted order.
func (s *State) Paths() []string {
	out := make([]string, 0, len(s.Files))
	for p := range s.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
