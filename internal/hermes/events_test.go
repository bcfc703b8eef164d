package hermes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/feedback"
	"github.com/MikeSquared-Agency/oars/internal/oars"
)

type fakePublisher struct {
	subject string
	data    any
	err     error
}

func (f *fakePublisher) Publish(subject string, data any) error {
	f.subject = subject
	f.data = data
	return f.err
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		ID:           "a1",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Language:     "nb",
		StrategyUsed: analysis.StrategyRules,
		Counts:       oars.Counts{OpenQuestions: 4, Summaries: 1},
		TotalScore:   57,
		Feedback:     feedback.Feedback{Sufficient: true},
	}
}

func TestEventSink_Record(t *testing.T) {
	pub := &fakePublisher{}
	sink := &EventSink{pub: pub}

	if err := sink.Record(context.Background(), sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.subject != SubjectAnalysisCompleted {
		t.Errorf("subject = %q", pub.subject)
	}
	ev, ok := pub.data.(AnalysisEvent)
	if !ok {
		t.Fatalf("expected AnalysisEvent, got %T", pub.data)
	}
	if ev.AnalysisID != "a1" || ev.TotalScore != 57 || ev.Counts.OpenQuestions != 4 || !ev.Sufficient {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestEventSink_PublishError(t *testing.T) {
	sink := &EventSink{pub: &fakePublisher{err: errors.New("no responders")}}
	if err := sink.Record(context.Background(), sampleResult()); err == nil {
		t.Fatal("expected error")
	}
	if sink.Name() != "nats" {
		t.Errorf("name = %q", sink.Name())
	}
}
