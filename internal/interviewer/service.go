package interviewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"interview-prep-simulator/internal/api"
	"interview-prep-simulator/internal/config"
	"interview-prep-simulator/internal/metrics"
	"interview-prep-simulator/internal/prompts"
	"interview-prep-simulator/internal/telemetry"
)

// ErrOracleUnavailable is the fallback reason when no oracle client is configured.
var ErrOracleUnavailable = errors.New("generation oracle not configured")

// Options tune a Service. Zero values are usable.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	Catalog      *config.Config
	Metrics      *metrics.Metrics
	Tracer       trace.Tracer
	Logger       *slog.Logger
}

// Service generates questions and evaluates answers through the oracle.
// Its public methods never fail: any oracle problem yields a fallback value.
type Service struct {
	client       api.Client
	maxRetries   int
	retryBackoff time.Duration
	catalog      *config.Config
	systemPrompt string
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	logger       *slog.Logger
}

// New creates the service. A nil client makes every call take the fallback path.
func New(client api.Client, opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = config.DefaultConfig()
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("interviewer")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics, _ = metrics.NewMetrics(nil)
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Service{
		client:       client,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		catalog:      opts.Catalog,
		systemPrompt: prompts.QuestionSystemPrompt(opts.Catalog),
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
		logger:       opts.Logger,
	}
}

// Ready reports whether an oracle client is configured.
func (s *Service) Ready() bool {
	return s.client != nil
}

// GenerateQuestion asks the oracle for the next question of a session.
func (s *Service) GenerateQuestion(ctx context.Context, req QuestionRequest) Question {
	hint := prompts.HintFor(req.PreviousScore)

	ctx, span := s.tracer.Start(ctx, "generate_question", trace.WithAttributes(
		attribute.String("session.id", req.SessionID),
		attribute.String("interview.type", string(req.InterviewType)),
		attribute.String("difficulty.hint", hint.String()),
	))
	defer span.End()

	logger := telemetry.LoggerFromContext(ctx, s.logger).With("session_id", req.SessionID)

	var focusAreas []string
	if entry, ok := s.catalog.Lookup(req.InterviewType); ok {
		focusAreas = entry.FocusAreas
	}

	prompt := api.Prompt{
		System: s.systemPrompt,
		User: prompts.GenerateQuestionPrompt(prompts.QuestionPrompt{
			InterviewType:   req.InterviewType,
			Role:            req.Role,
			ExperienceLevel: req.ExperienceLevel,
			Domain:          req.Domain,
			Hint:            hint,
		}, focusAreas),
		Schema: api.Schema{Name: prompts.QuestionSchemaName, JSON: prompts.QuestionSchema},
	}

	logger.Info("generating question", "role", req.Role, "interview_type", req.InterviewType, "difficulty_hint", hint.String())

	var question Question
	err := s.complete(ctx, metrics.KindQuestion, prompt, func(raw string) error {
		q, err := parseQuestion(raw)
		if err != nil {
			return err
		}
		question = q
		return nil
	})
	if err != nil {
		logger.Error("question generation failed, serving fallback", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		span.SetAttributes(attribute.Bool("fallback", true))
		s.metrics.IncrementQuestionsGenerated(ctx, true)
		return FallbackQuestion(req.SessionID, req.Role)
	}

	question.SessionID = req.SessionID
	span.SetAttributes(attribute.Bool("fallback", false), attribute.String("difficulty", string(question.Difficulty)))
	s.metrics.IncrementQuestionsGenerated(ctx, false)
	logger.Info("question generated", "difficulty", question.Difficulty, "topics", len(question.ExpectedTopics))
	return question
}

// EvaluateAnswer asks the oracle to score an answer against the rubric.
func (s *Service) EvaluateAnswer(ctx context.Context, req EvaluationRequest) Feedback {
	ctx, span := s.tracer.Start(ctx, "evaluate_answer", trace.WithAttributes(
		attribute.String("interview.type", string(req.InterviewType)),
		attribute.Int("expected_topics", len(req.ExpectedTopics)),
	))
	defer span.End()

	logger := telemetry.LoggerFromContext(ctx, s.logger)

	prompt := api.Prompt{
		System: prompts.FeedbackSystemPrompt,
		User: prompts.GenerateEvaluationPrompt(prompts.EvaluationPrompt{
			Question:       req.Question,
			Answer:         req.Answer,
			ExpectedTopics: req.ExpectedTopics,
			InterviewType:  req.InterviewType,
		}),
		Schema: api.Schema{Name: prompts.FeedbackSchemaName, JSON: prompts.FeedbackSchema},
	}

	logger.Info("evaluating answer", "question", truncate(req.Question, 50))

	var feedback Feedback
	err := s.complete(ctx, metrics.KindEvaluation, prompt, func(raw string) error {
		f, err := parseFeedback(raw)
		if err != nil {
			return err
		}
		feedback = f
		return nil
	})
	if err != nil {
		logger.Error("answer evaluation failed, serving fallback", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		span.SetAttributes(attribute.Bool("fallback", true))
		fallback := FallbackFeedback(req.ExpectedTopics)
		s.metrics.IncrementAnswersEvaluated(ctx, fallback.OverallScore, true)
		return fallback
	}

	span.SetAttributes(attribute.Bool("fallback", false), attribute.Int("overall_score", feedback.OverallScore))
	s.metrics.IncrementAnswersEvaluated(ctx, feedback.OverallScore, false)
	logger.Info("evaluation complete", "score", feedback.OverallScore)
	return feedback
}

// complete runs one oracle request with bounded retries. Only transient
// failures are retried; decode and validation errors end the loop at once.
func (s *Service) complete(ctx context.Context, kind string, prompt api.Prompt, parse func(string) error) error {
	if s.client == nil {
		return ErrOracleUnavailable
	}

	logger := telemetry.LoggerFromContext(ctx, s.logger)
	attempts := 1 + s.maxRetries

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, s.retryBackoff*time.Duration(attempt-1)); err != nil {
				return fmt.Errorf("%w (retry aborted: %v)", lastErr, err)
			}
		}

		start := time.Now()
		raw, err := s.client.Complete(ctx, prompt)
		if err == nil {
			err = parse(raw)
		}
		s.metrics.IncrementOracleCall(ctx, kind, err == nil, time.Since(start))
		if err == nil {
			return nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, attempts, err)
		if !api.IsTransient(err) || ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			logger.Warn("oracle call failed, retrying", "kind", kind, "attempt", attempt, "error", err)
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FallbackQuestion is served whenever question generation fails.
func FallbackQuestion(sessionID, role string) Question {
	return Question{
		SessionID:        sessionID,
		Question:         fmt.Sprintf("Tell me about your experience with %s responsibilities and what interests you about this role.", role),
		Context:          "Focus on relevant experience and genuine interest",
		Difficulty:       DifficultyEasy,
		ExpectedTopics:   []string{"relevant experience", "technical skills", "motivation", "learning approach"},
		TimeLimitSeconds: 180,
	}
}

// FallbackFeedback is served whenever evaluation fails. Nothing is assumed
// covered, so every expected topic is reported missing.
func FallbackFeedback(expectedTopics []string) Feedback {
	missing := make([]string, len(expectedTopics))
	copy(missing, expectedTopics)

	return Feedback{
		OverallScore: 50,
		FeedbackDetail: FeedbackDetail{
			Clarity:           50,
			TechnicalAccuracy: 50,
			Completeness:      50,
			Communication:     50,
		},
		Strengths: []string{"You provided an answer", "Shows effort"},
		Improvements: []string{
			"Try to structure your answer more clearly",
			"Include specific examples",
			"Cover the key topics mentioned in the question",
		},
		MissingTopics:   missing,
		SuggestedAnswer: "A strong answer would cover all expected topics with specific examples and clear structure.",
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
