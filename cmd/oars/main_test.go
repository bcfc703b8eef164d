package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/batch"
	"github.com/MikeSquared-Agency/oars/internal/config"
	"github.com/MikeSquared-Agency/oars/internal/llm"
	"github.com/MikeSquared-Agency/oars/internal/rules"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
)

const sampleTranscript = `{"topic":"Jobbambivalens","turns":[
	{"speaker":"counselor","text":"What brought you here today?"},
	{"speaker":"client","text":"I keep putting off the applications."},
	{"speaker":"counselor","text":"Did you send any last week?"}
]}`

func testService(t *testing.T) *analysis.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Language = "en"
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc, err := newService(cfg, nil, nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}
	return svc
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExpandPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), sampleTranscript)
	writeFile(t, filepath.Join(dir, "week1", "b.jsonl"), "")
	writeFile(t, filepath.Join(dir, "week1", "deep", "c.jsonl"), "")

	files, err := expandPatterns([]string{
		filepath.Join(dir, "**", "*.jsonl"),
		filepath.Join(dir, "*.json"),
		filepath.Join(dir, "a.json"),
	})
	if err != nil {
		t.Fatalf("expandPatterns: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "week1", "b.jsonl"),
		filepath.Join(dir, "week1", "deep", "c.jsonl"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("files = %v, want %v", files, want)
	}

	if _, err := expandPatterns([]string{filepath.Join(dir, "*.txt")}); err == nil {
		t.Error("expected error for pattern without matches")
	}
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"sessions/a.jsonl":      "a.md",
		"b.json":                "b.md",
		"nested/dir/no-ext":     "no-ext.md",
		"dots/session.v2.jsonl": "session.v2.md",
	}
	for in, want := range tests {
		if got := outputName(in, "md"); got != want {
			t.Errorf("outputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAnalyzeFiles_Stdout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	writeFile(t, path, sampleTranscript)

	var out bytes.Buffer
	err := analyzeFiles(context.Background(), testService(t), []string{path}, analyzeOptions{Format: "json"}, &out)
	if err != nil {
		t.Fatalf("analyzeFiles: %v", err)
	}

	var res analysis.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if res.Counts.OpenQuestions != 1 || res.Counts.ClosedQuestions != 1 {
		t.Errorf("unexpected counts: %+v", res.Counts)
	}
	if res.StrategyUsed != analysis.StrategyRules {
		t.Errorf("expected rules strategy, got %q", res.StrategyUsed)
	}
}

func TestAnalyzeFiles_OutDir(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "in", "a.json")
	b := filepath.Join(dir, "in", "b.jsonl")
	writeFile(t, a, sampleTranscript)
	writeFile(t, b, `{"speaker":"counselor","text":"How do you feel about work?"}`+"\n")
	outDir := filepath.Join(dir, "out")

	for _, format := range []string{"md", "html"} {
		t.Run(format, func(t *testing.T) {
			opts := analyzeOptions{Format: format, OutDir: outDir}
			if err := analyzeFiles(context.Background(), testService(t), []string{a, b}, opts, io.Discard); err != nil {
				t.Fatalf("analyzeFiles: %v", err)
			}
			for _, name := range []string{"a." + format, "b." + format} {
				data, err := os.ReadFile(filepath.Join(outDir, name))
				if err != nil {
					t.Fatalf("expected %s: %v", name, err)
				}
				if len(data) == 0 {
					t.Errorf("%s is empty", name)
				}
			}
		})
	}
}

func TestAnalyzeFiles_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	empty := filepath.Join(dir, "empty.json")
	writeFile(t, good, sampleTranscript)
	writeFile(t, empty, `{"turns":[]}`)

	err := analyzeFiles(context.Background(), testService(t), []string{empty, good}, analyzeOptions{Format: "md"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 transcripts failed") {
		t.Errorf("expected partial failure, got %v", err)
	}
}

func TestAnalyzeFiles_ResumesFromState(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	writeFile(t, a, sampleTranscript)
	writeFile(t, b, sampleTranscript)
	statePath := filepath.Join(dir, "state.json")

	state, err := batch.LoadState(statePath)
	if err != nil {
		t.Fatal(err)
	}
	state.MarkProcessed(a, "earlier", 10)

	var out bytes.Buffer
	opts := analyzeOptions{Format: "json", State: state}
	if err := analyzeFiles(context.Background(), testService(t), []string{a, b}, opts, &out); err != nil {
		t.Fatalf("analyzeFiles: %v", err)
	}
	if n := strings.Count(out.String(), `"id":`); n != 1 {
		t.Errorf("expected only b analyzed, got %d results", n)
	}

	reloaded, err := batch.LoadState(statePath)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsProcessed(a) || !reloaded.IsProcessed(b) {
		t.Errorf("expected both files recorded, got %v", reloaded.Paths())
	}
	if reloaded.Files[a].AnalysisID != "earlier" {
		t.Error("expected earlier record kept")
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if _, err := render(&analysis.Result{}, "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := extension("pdf"); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestPracticeLoop(t *testing.T) {
	svc := testService(t)
	rs, err := rules.Load("nb")
	if err != nil {
		t.Fatal(err)
	}
	mock := llm.NewMock("Jeg vet ikke om jeg orker det", "Kanskje")
	sim := simulator.New(mock, rs, slog.Default())

	lines := []string{"What makes work feel hard right now?", "  ", "Did you talk to your manager?", "/slutt", "never read"}
	readLine := func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		l := lines[0]
		lines = lines[1:]
		return l, nil
	}

	var out bytes.Buffer
	err = practiceLoop(context.Background(), sim, svc, practiceSettings{Topic: "Jobbambivalens", Difficulty: "lett", Language: "en"}, readLine, &out)
	if err != nil {
		t.Fatalf("practiceLoop: %v", err)
	}

	if mock.CallCount() != 2 {
		t.Errorf("expected 2 replies, got %d", mock.CallCount())
	}
	if len(lines) != 1 {
		t.Errorf("expected input to stop at /slutt, %d lines left", len(lines))
	}
	text := out.String()
	for _, want := range []string{"Jobbsøker: Jeg vet ikke om jeg orker det.", "Jobbsøker: Kanskje.", "# "} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestPracticeLoop_NoTurns(t *testing.T) {
	svc := testService(t)
	rs, err := rules.Load("nb")
	if err != nil {
		t.Fatal(err)
	}
	sim := simulator.New(llm.NewMock("Hei"), rs, slog.Default())

	var out bytes.Buffer
	readLine := func() (string, error) { return "", io.EOF }
	if err := practiceLoop(context.Background(), sim, svc, practiceSettings{}, readLine, &out); err != nil {
		t.Fatalf("practiceLoop: %v", err)
	}
	if !strings.Contains(out.String(), "Ingen replikker") {
		t.Errorf("expected empty-session note, got:\n%s", out.String())
	}
}

func TestIsEndCommand(t *testing.T) {
	for _, in := range []string{"/slutt", " /END ", "/end"} {
		if !isEndCommand(in) {
			t.Errorf("isEndCommand(%q) = false", in)
		}
	}
	for _, in := range []string{"slutt", "/stop", ""} {
		if isEndCommand(in) {
			t.Errorf("isEndCommand(%q) = true", in)
		}
	}
}

func TestNewSimulator_UsesConfiguredLanguage(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name     string
		language string
		want     simulator.QuestionType
	}{
		{"english rules", "en", simulator.QuestionOpen},
		{"norwegian rules", "nb", simulator.QuestionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Language = tt.language
			svc, err := newService(cfg, nil, nil)
			if err != nil {
				t.Fatalf("newService: %v", err)
			}
			sim, err := newSimulator(cfg, svc, llm.NewMock("Ok."))
			if err != nil {
				t.Fatalf("newSimulator: %v", err)
			}
			if got := sim.Classify("What brought you here today?"); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
