package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Oracle call kinds.
const (
	KindQuestion   = "question"
	KindEvaluation = "evaluation"
)

// Metrics keeps in-process counters and mirrors them into OpenTelemetry instruments.
type Metrics struct {
	mu       sync.RWMutex
	snapshot Snapshot

	sessionsStarted metric.Int64Counter
	oracleCalls     metric.Int64Counter
	oracleDuration  metric.Float64Histogram
	fallbacks       metric.Int64Counter
	answerScore     metric.Int64Histogram
	sessionsSwept   metric.Int64Counter
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SessionsStarted       int64     `json:"sessions_started"`
	QuestionsGenerated    int64     `json:"questions_generated"`
	AnswersEvaluated      int64     `json:"answers_evaluated"`
	OracleCallsTotal      int64     `json:"oracle_calls_total"`
	OracleCallsSuccessful int64     `json:"oracle_calls_successful"`
	QuestionFallbacks     int64     `json:"question_fallbacks"`
	FeedbackFallbacks     int64     `json:"feedback_fallbacks"`
	SessionsSwept         int64     `json:"sessions_swept"`
	LastUpdateTime        time.Time `json:"last_update_time"`
}

// NewMetrics creates the counters. A nil meter records nothing to OpenTelemetry.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("metrics")
	}

	m := &Metrics{snapshot: Snapshot{LastUpdateTime: time.Now()}}

	var err error
	if m.sessionsStarted, err = meter.Int64Counter("interview.sessions.started",
		metric.WithDescription("Interview sessions started")); err != nil {
		return nil, err
	}
	if m.oracleCalls, err = meter.Int64Counter("oracle.calls",
		metric.WithDescription("Generation oracle attempts by kind and outcome")); err != nil {
		return nil, err
	}
	if m.oracleDuration, err = meter.Float64Histogram("oracle.call.duration",
		metric.WithDescription("Generation oracle call duration"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.fallbacks, err = meter.Int64Counter("oracle.fallbacks",
		metric.WithDescription("Fallback values served instead of oracle output")); err != nil {
		return nil, err
	}
	if m.answerScore, err = meter.Int64Histogram("interview.answer.score",
		metric.WithDescription("Overall score of evaluated answers")); err != nil {
		return nil, err
	}
	if m.sessionsSwept, err = meter.Int64Counter("interview.sessions.swept",
		metric.WithDescription("Sessions removed by the age-based sweep")); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) IncrementSessionsStarted(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.SessionsStarted++
	m.snapshot.LastUpdateTime = time.Now()
	m.sessionsStarted.Add(ctx, 1)
}

// IncrementQuestionsGenerated counts a served question, fallback or not.
func (m *Metrics) IncrementQuestionsGenerated(ctx context.Context, fallback bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.QuestionsGenerated++
	if fallback {
		m.snapshot.QuestionFallbacks++
		m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", KindQuestion)))
	}
	m.snapshot.LastUpdateTime = time.Now()
}

// IncrementAnswersEvaluated counts served feedback and records its score.
func (m *Metrics) IncrementAnswersEvaluated(ctx context.Context, score int, fallback bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.AnswersEvaluated++
	if fallback {
		m.snapshot.FeedbackFallbacks++
		m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", KindEvaluation)))
	}
	m.snapshot.LastUpdateTime = time.Now()
	m.answerScore.Record(ctx, int64(score))
}

// IncrementOracleCall counts one oracle attempt.
func (m *Metrics) IncrementOracleCall(ctx context.Context, kind string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.OracleCallsTotal++
	if success {
		m.snapshot.OracleCallsSuccessful++
	}
	m.snapshot.LastUpdateTime = time.Now()

	attrs := metric.WithAttributes(attribute.String("kind", kind), attribute.Bool("success", success))
	m.oracleCalls.Add(ctx, 1, attrs)
	m.oracleDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (m *Metrics) AddSessionsSwept(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.SessionsSwept += int64(n)
	m.snapshot.LastUpdateTime = time.Now()
	m.sessionsSwept.Add(ctx, int64(n))
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
