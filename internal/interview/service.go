package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"interview-prep-simulator/internal/interviewer"
	"interview-prep-simulator/internal/metrics"
	"interview-prep-simulator/internal/storage"
	"interview-prep-simulator/internal/telemetry"
)

// QuestionGenerator produces questions. It never fails.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req interviewer.QuestionRequest) interviewer.Question
}

// AnswerEvaluator scores answers. It never fails.
type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, req interviewer.EvaluationRequest) interviewer.Feedback
}

// Service drives the interview lifecycle: start, submit answer, next question.
type Service struct {
	store     storage.Store
	questions QuestionGenerator
	evaluator AnswerEvaluator
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewService(
	store storage.Store,
	questions QuestionGenerator,
	evaluator AnswerEvaluator,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Service {
	if m == nil {
		m, _ = metrics.NewMetrics(nil)
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("interview")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		questions: questions,
		evaluator: evaluator,
		metrics:   m,
		tracer:    tracer,
		logger:    logger,
	}
}

type StartInput struct {
	InterviewType   storage.InterviewType
	Role            string
	ExperienceLevel storage.ExperienceLevel
	Domain          string
}

// StartInterview creates a session and returns its first question.
func (s *Service) StartInterview(ctx context.Context, in StartInput) (*interviewer.Question, error) {
	ctx, span := s.tracer.Start(ctx, "start_interview", trace.WithAttributes(
		attribute.String("interview.type", string(in.InterviewType)),
	))
	defer span.End()

	log := telemetry.LoggerFromContext(ctx, s.logger).With(
		"interview_type", in.InterviewType,
		"role", in.Role,
		"experience_level", in.ExperienceLevel,
	)
	log.Info("starting interview")

	sessionID, err := s.store.Create(ctx, in.InterviewType, in.Role, in.ExperienceLevel)
	if err != nil {
		log.Error("failed to create session", "error", err)
		span.RecordError(err)
		return nil, fmt.Errorf("create session: %w", err)
	}
	span.SetAttributes(attribute.String("session.id", sessionID))
	s.metrics.IncrementSessionsStarted(ctx)

	q := s.questions.GenerateQuestion(ctx, interviewer.QuestionRequest{
		SessionID:       sessionID,
		InterviewType:   in.InterviewType,
		Role:            in.Role,
		ExperienceLevel: in.ExperienceLevel,
		Domain:          in.Domain,
	})
	return &q, nil
}

type SubmitInput struct {
	SessionID string
	Question  string
	Answer    string
	// ExpectedTopics are the topics of the question being answered. Optional.
	ExpectedTopics []string
}

type SubmitOutput struct {
	Feedback interviewer.Feedback
	// Recorded is false when the turn could not be stored, e.g. the session
	// was swept while the answer was being evaluated.
	Recorded bool
}

// SubmitAnswer evaluates an answer and records the turn.
// An unknown session yields storage.ErrSessionNotFound and changes nothing.
func (s *Service) SubmitAnswer(ctx context.Context, in SubmitInput) (*SubmitOutput, error) {
	ctx, span := s.tracer.Start(ctx, "submit_answer", trace.WithAttributes(
		attribute.String("session.id", in.SessionID),
	))
	defer span.End()

	log := telemetry.LoggerFromContext(ctx, s.logger).With("session_id", in.SessionID)

	// Snapshot only: no lock is held across the evaluation.
	sess, err := s.store.Get(ctx, in.SessionID)
	if err != nil {
		return nil, s.lookupError(log, err)
	}

	topics := in.ExpectedTopics
	if topics == nil {
		topics = []string{}
	}

	feedback := s.evaluator.EvaluateAnswer(ctx, interviewer.EvaluationRequest{
		Question:       in.Question,
		Answer:         in.Answer,
		ExpectedTopics: topics,
		InterviewType:  sess.InterviewType,
	})
	span.SetAttributes(attribute.Int("overall_score", feedback.OverallScore))

	out := &SubmitOutput{Feedback: feedback, Recorded: true}
	if err := s.store.RecordTurn(ctx, in.SessionID, feedback.OverallScore, in.Question, in.Answer); err != nil {
		log.Warn("turn not recorded, returning feedback anyway", "error", err, "score", feedback.OverallScore)
		span.RecordError(err)
		out.Recorded = false
	}
	return out, nil
}

type NextInput struct {
	SessionID     string
	PreviousScore *int
}

// NextQuestion generates the next question of an existing session. The
// caller's previous score only steers difficulty; the session is not mutated.
func (s *Service) NextQuestion(ctx context.Context, in NextInput) (*interviewer.Question, error) {
	ctx, span := s.tracer.Start(ctx, "next_question", trace.WithAttributes(
		attribute.String("session.id", in.SessionID),
	))
	defer span.End()

	log := telemetry.LoggerFromContext(ctx, s.logger).With("session_id", in.SessionID)

	sess, err := s.store.Get(ctx, in.SessionID)
	if err != nil {
		return nil, s.lookupError(log, err)
	}

	if in.PreviousScore != nil {
		if last, ok := sess.LastScore(); ok && last != *in.PreviousScore {
			log.Warn("previous score differs from last recorded score", "previous_score", *in.PreviousScore, "last_recorded_score", last)
		}
	}

	q := s.questions.GenerateQuestion(ctx, interviewer.QuestionRequest{
		SessionID:       in.SessionID,
		InterviewType:   sess.InterviewType,
		Role:            sess.Role,
		ExperienceLevel: sess.ExperienceLevel,
		PreviousScore:   in.PreviousScore,
	})
	return &q, nil
}

// Stats returns the progress summary of a session.
func (s *Service) Stats(ctx context.Context, sessionID string) (*storage.Stats, error) {
	stats, err := s.store.Stats(ctx, sessionID)
	if err != nil {
		return nil, s.lookupError(telemetry.LoggerFromContext(ctx, s.logger).With("session_id", sessionID), err)
	}
	return stats, nil
}

// Sweep removes sessions older than maxAge.
func (s *Service) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	removed, err := s.store.Sweep(ctx, maxAge)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	s.metrics.AddSessionsSwept(ctx, removed)
	if removed > 0 {
		s.logger.Info("swept old sessions", "count", removed, "max_age", maxAge.String())
	}
	return removed, nil
}

// RunJanitor sweeps every interval until ctx is done. A non-positive interval
// disables periodic sweeping.
func (s *Service) RunJanitor(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, maxAge); err != nil && ctx.Err() == nil {
				s.logger.Error("periodic sweep failed", "error", err)
			}
		}
	}
}

func (s *Service) lookupError(log *slog.Logger, err error) error {
	if errors.Is(err, storage.ErrSessionNotFound) {
		log.Info("session not found")
		return err
	}
	log.Error("session lookup failed", "error", err)
	return fmt.Errorf("load session: %w", err)
}
