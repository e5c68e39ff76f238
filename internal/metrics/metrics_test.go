package metrics

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	ctx := context.Background()
	m, err := NewMetrics(nil)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.IncrementSessionsStarted(ctx)
	m.IncrementQuestionsGenerated(ctx, false)
	m.IncrementQuestionsGenerated(ctx, true)
	m.IncrementAnswersEvaluated(ctx, 50, true)
	m.IncrementOracleCall(ctx, KindQuestion, true, 10*time.Millisecond)
	m.IncrementOracleCall(ctx, KindEvaluation, false, 20*time.Millisecond)
	m.AddSessionsSwept(ctx, 3)
	m.AddSessionsSwept(ctx, 0)

	s := m.GetSnapshot()
	want := Snapshot{
		SessionsStarted:       1,
		QuestionsGenerated:    2,
		AnswersEvaluated:      1,
		OracleCallsTotal:      2,
		OracleCallsSuccessful: 1,
		QuestionFallbacks:     1,
		FeedbackFallbacks:     1,
		SessionsSwept:         3,
	}
	s.LastUpdateTime = time.Time{}
	if s != want {
		t.Errorf("snapshot = %+v, want %+v", s, want)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	m, _ := NewMetrics(nil)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementOracleCall(ctx, KindQuestion, true, time.Millisecond)
			_ = m.GetSnapshot()
		}()
	}
	wg.Wait()

	if got := m.GetSnapshot().OracleCallsTotal; got != 100 {
		t.Errorf("OracleCallsTotal = %d, want 100", got)
	}
}
