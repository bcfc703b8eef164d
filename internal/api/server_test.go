package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/cache"
	"github.com/MikeSquared-Agency/oars/internal/llm"
	"github.com/MikeSquared-Agency/oars/internal/rules"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
	"github.com/MikeSquared-Agency/oars/internal/store"
)

const sessionJSON = `{
	"language": "en",
	"topic": "Jobbambivalens",
	"transcript": [
		{"speaker": "counselor", "text": "What brought you here today?"},
		{"speaker": "client", "text": "I keep putting off the job applications."},
		{"speaker": "counselor", "text": "Part of you wants the job, and at the same time it feels safer to wait."},
		{"speaker": "client", "text": "Yes, exactly."},
		{"speaker": "counselor", "text": "Did you send any applications last week?"}
	]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memReports map[string]*analysis.Result

func (m memReports) Get(_ context.Context, id string) (*analysis.Result, error) {
	if r, ok := m[id]; ok {
		return r, nil
	}
	return nil, cache.ErrNotFound
}

type failingReports struct{ err error }

func (f failingReports) Get(context.Context, string) (*analysis.Result, error) {
	return nil, f.err
}

type fakeHistory struct {
	rows      []store.ScoreRow
	lastLimit int
}

func (f *fakeHistory) RecentScores(_ context.Context, limit int) ([]store.ScoreRow, error) {
	f.lastLimit = limit
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func newTestServer(t *testing.T, mutate func(d *Deps)) *Server {
	t.Helper()
	svc, err := analysis.NewService(analysis.Options{DefaultLanguage: "en"}, discardLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	d := Deps{Analysis: svc, Logger: discardLogger()}
	if mutate != nil {
		mutate(&d)
	}
	return NewServer(8760, d)
}

func withSimulator(t *testing.T, provider llm.Provider) func(d *Deps) {
	t.Helper()
	rs, err := rules.Load("nb")
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}
	return func(d *Deps) {
		d.Simulator = simulator.New(provider, rs, discardLogger())
	}
}

func do(srv *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, "GET", "/api/v1/oars/status", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "oars" {
		t.Errorf("expected agent oars, got %v", body["agent"])
	}
	if body["llm"] != false || body["simulator"] != false || body["reports"] != false {
		t.Errorf("expected optional features off, got %v", body)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, "GET", "/nonexistent", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) { d.APIToken = "oars-secret" })

	tests := []struct {
		name   string
		path   string
		header []string
		want   int
	}{
		{"missing token", "/api/v1/oars/status", nil, http.StatusUnauthorized},
		{"wrong token", "/api/v1/oars/status", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"valid header", "/api/v1/oars/status", []string{"Authorization", "Bearer oars-secret"}, http.StatusOK},
		{"valid query", "/api/v1/oars/status?token=oars-secret", nil, http.StatusOK},
		{"health is open", "/health", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, "GET", tt.path, "", tt.header...)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, "POST", "/api/v1/analyze", sessionJSON, "Content-Type", "application/json")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected Cache-Control no-store, got %q", got)
	}
	var res analysis.Result
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if res.ID == "" {
		t.Error("expected an analysis id")
	}
	if res.Counts.OpenQuestions != 1 || res.Counts.ClosedQuestions != 1 {
		t.Errorf("unexpected question counts: %+v", res.Counts)
	}
	if res.StrategyUsed != analysis.StrategyRules {
		t.Errorf("expected rules strategy, got %q", res.StrategyUsed)
	}
	if res.TotalScore < 0 || res.TotalScore > 100 {
		t.Errorf("score out of range: %d", res.TotalScore)
	}
}

func TestAnalyzeEndpoint_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty transcript", `{"transcript":[]}`, "empty transcript"},
		{"blank turns", `{"transcript":[{"speaker":"counselor","text":"   "}]}`, "empty transcript"},
		{"invalid json", `{"transcript":`, "invalid JSON"},
		{"unsupported language", `{"language":"xx","transcript":[{"speaker":"counselor","text":"Hi?"}]}`, "unsupported language"},
		{"unknown strategy", `{"strategy":"magic","transcript":[{"speaker":"counselor","text":"Hi?"}]}`, "unknown strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, "POST", "/api/v1/analyze", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if !strings.Contains(body["error"], tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, body["error"])
			}
		})
	}
}

func TestReportEndpoint_FromTranscript(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, "POST", "/api/v1/report", sessionJSON)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "What brought you here today?") {
		t.Error("expected counselor example in the page")
	}
}

func TestReportEndpoint_FromAnalysis(t *testing.T) {
	srv := newTestServer(t, nil)
	res := analyzeSession(t, srv)

	body, err := json.Marshal(map[string]any{"analysis": res})
	if err != nil {
		t.Fatal(err)
	}
	w := do(srv, "POST", "/api/v1/report", string(body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "<html") {
		t.Error("expected an html page")
	}
}

func TestCachedReportEndpoint(t *testing.T) {
	base := newTestServer(t, nil)
	res := analyzeSession(t, base)

	t.Run("no cache", func(t *testing.T) {
		w := do(base, "GET", "/api/v1/report/"+res.ID, "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", w.Code)
		}
	})

	srv := newTestServer(t, func(d *Deps) { d.Reports = memReports{res.ID: res} })

	t.Run("hit", func(t *testing.T) {
		w := do(srv, "GET", "/api/v1/report/"+res.ID, "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Header().Get("Cache-Control") != "no-store" {
			t.Error("expected Cache-Control no-store")
		}
	})

	t.Run("miss", func(t *testing.T) {
		w := do(srv, "GET", "/api/v1/report/00000000-0000-0000-0000-000000000000", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}

func TestReplyEndpoint(t *testing.T) {
	body := `{"topic":"rus","difficulty":"lett","transcript":[{"speaker":"counselor","text":"Hva tenker du om drikkingen din?"}]}`

	t.Run("no llm", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w := do(srv, "POST", "/api/v1/reply", body)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", w.Code)
		}
	})

	t.Run("reply", func(t *testing.T) {
		mock := llm.NewMock("Jeg vet ikke helt")
		srv := newTestServer(t, withSimulator(t, mock))
		w := do(srv, "POST", "/api/v1/reply", body)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp replyResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Reply != "Jeg vet ikke helt." {
			t.Errorf("unexpected reply %q", resp.Reply)
		}
		if mock.CallCount() != 1 {
			t.Errorf("expected 1 provider call, got %d", mock.CallCount())
		}
	})

	t.Run("provider error", func(t *testing.T) {
		mock := &llm.Mock{Err: io.ErrUnexpectedEOF}
		srv := newTestServer(t, withSimulator(t, mock))
		w := do(srv, "POST", "/api/v1/reply", body)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		var resp replyResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Reply != simulator.FallbackReply {
			t.Errorf("expected fallback reply, got %q", resp.Reply)
		}
	})
}

func TestPracticeWebSocket(t *testing.T) {
	mock := llm.NewMock("Jeg har ikke tenkt så mye på det")
	srv := newTestServer(t, withSimulator(t, mock))
	server := httptest.NewServer(srv.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/practice"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	exchange := func(msg practiceMessage) practiceResponse {
		t.Helper()
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write: %v", err)
		}
		var resp practiceResponse
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read: %v", err)
		}
		return resp
	}

	if resp := exchange(practiceMessage{Type: "analyze"}); resp.Type != "error" || resp.Error != "empty transcript" {
		t.Errorf("expected empty transcript error, got %+v", resp)
	}

	if resp := exchange(practiceMessage{Type: "start", Topic: "oppmøte", Difficulty: "vanskelig", Language: "nb"}); resp.Type != "ready" {
		t.Errorf("expected ready, got %+v", resp)
	}

	resp := exchange(practiceMessage{Type: "turn", Text: "Hva gjør det vanskelig å komme på møtene?"})
	if resp.Type != "reply" || resp.Text != "Jeg har ikke tenkt så mye på det." {
		t.Errorf("unexpected reply %+v", resp)
	}

	if resp := exchange(practiceMessage{Type: "turn", Text: "  "}); resp.Type != "error" {
		t.Errorf("expected error for blank turn, got %+v", resp)
	}

	resp = exchange(practiceMessage{Type: "analyze"})
	if resp.Type != "analysis" || resp.Analysis == nil {
		t.Fatalf("expected analysis, got %+v", resp)
	}
	if resp.Analysis.Language != "nb" {
		t.Errorf("expected nb analysis, got %q", resp.Analysis.Language)
	}
	if resp.Analysis.Counts.OpenQuestions != 1 {
		t.Errorf("expected one open question, got %+v", resp.Analysis.Counts)
	}

	if resp := exchange(practiceMessage{Type: "dance"}); resp.Type != "error" {
		t.Errorf("expected unknown type error, got %+v", resp)
	}
}

func TestPracticeWebSocket_NoLLM(t *testing.T) {
	srv := newTestServer(t, nil)
	server := httptest.NewServer(srv.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/practice"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(practiceMessage{Type: "turn", Text: "Hei"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp practiceResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || !strings.Contains(resp.Error, "LLM provider not configured") {
		t.Errorf("expected LLM error, got %+v", resp)
	}
}

func analyzeSession(t *testing.T, srv *Server) *analysis.Result {
	t.Helper()
	w := do(srv, "POST", "/api/v1/analyze", sessionJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: %d %s", w.Code, w.Body.String())
	}
	var res analysis.Result
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &res
}

func TestChainReports(t *testing.T) {
	hit := &analysis.Result{ID: "a1"}
	down := failingReports{err: errors.New("connection refused")}

	if ChainReports() != nil || ChainReports(nil) != nil {
		t.Error("expected nil chain without stores")
	}

	tests := []struct {
		name    string
		stores  []ReportStore
		wantID  string
		wantErr error
	}{
		{"first hit", []ReportStore{memReports{"a1": hit}, down}, "a1", nil},
		{"miss then hit", []ReportStore{memReports{}, memReports{"a1": hit}}, "a1", nil},
		{"failure then hit", []ReportStore{down, memReports{"a1": hit}}, "a1", nil},
		{"all miss", []ReportStore{memReports{}, failingReports{err: store.ErrNotFound}}, "", cache.ErrNotFound},
		{"miss and failure", []ReportStore{memReports{}, down}, "", down.err},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ChainReports(tt.stores...).Get(context.Background(), "a1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || res.ID != tt.wantID {
				t.Errorf("Get = %+v, %v", res, err)
			}
		})
	}
}

func TestCachedReportEndpoint_StoreFailure(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) { d.Reports = failingReports{err: errors.New("redis down")} })

	w := do(srv, "GET", "/api/v1/report/a1", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestScoresEndpoint(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv := newTestServer(t, nil)
		w := do(srv, "GET", "/api/v1/scores", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", w.Code)
		}
	})

	history := &fakeHistory{rows: []store.ScoreRow{{TotalScore: 80}, {TotalScore: 60}, {TotalScore: 40}}}
	srv := newTestServer(t, func(d *Deps) { d.Scores = history })

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
		wantCount int
	}{
		{"default limit", "", http.StatusOK, 20, 3},
		{"explicit limit", "?limit=2", http.StatusOK, 2, 2},
		{"capped limit", "?limit=5000", http.StatusOK, maxScores, 3},
		{"bad limit", "?limit=abc", http.StatusBadRequest, 0, 0},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history.lastLimit = 0
			w := do(srv, "GET", "/api/v1/scores"+tt.query, "")
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if history.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", history.lastLimit, tt.wantLimit)
			}
			var body struct {
				Scores []store.ScoreRow `json:"scores"`
				Count  int              `json:"count"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Count != tt.wantCount || len(body.Scores) != tt.wantCount {
				t.Errorf("count = %d/%d, want %d", body.Count, len(body.Scores), tt.wantCount)
			}
		})
	}
}
