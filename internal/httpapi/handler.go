package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"interview-prep-simulator/internal/interview"
	"interview-prep-simulator/internal/interviewer"
	"interview-prep-simulator/internal/metrics"
	"interview-prep-simulator/internal/storage"
	"interview-prep-simulator/internal/telemetry"
)

const (
	maxBodyBytes  = 1 << 20
	maxRoleLen    = 100
	maxDomainLen  = 100
	maxAnswerLen  = 5000
	maxTopicCount = 10
)

// InterviewService is the lifecycle the transport exposes.
type InterviewService interface {
	StartInterview(ctx context.Context, in interview.StartInput) (*interviewer.Question, error)
	SubmitAnswer(ctx context.Context, in interview.SubmitInput) (*interview.SubmitOutput, error)
	NextQuestion(ctx context.Context, in interview.NextInput) (*interviewer.Question, error)
	Stats(ctx context.Context, sessionID string) (*storage.Stats, error)
}

// Options configure the HTTP server. Zero values are usable.
type Options struct {
	// Ready reports whether the generation oracle is configured.
	Ready              func() bool
	Metrics            *metrics.Metrics
	AllowedOrigins     []string
	RateLimitPerMinute int
	Logger             *slog.Logger
}

type Server struct {
	svc     InterviewService
	ready   func() bool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewServer builds the HTTP handler with its middleware chain.
func NewServer(svc InterviewService, opts Options) http.Handler {
	if opts.Ready == nil {
		opts.Ready = func() bool { return false }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{svc: svc, ready: opts.Ready, metrics: opts.Metrics, logger: opts.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/interview/start", s.handleStart)
	mux.HandleFunc("POST /api/interview/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/interview/next", s.handleNext)
	mux.HandleFunc("GET /api/interview/stats/{session_id}", s.handleStats)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	var limiter *RateLimiter
	if opts.RateLimitPerMinute > 0 {
		limiter = NewRateLimiter(opts.RateLimitPerMinute, time.Minute)
	}

	return chainMiddlewares(mux,
		withRecover(opts.Logger),
		withRequestID,
		withLogging(opts.Logger),
		withCORS(opts.AllowedOrigins),
		withRateLimit(limiter),
	)
}

// DTOs

type healthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	AgentReady bool   `json:"agent_ready"`
}

type startInterviewRequest struct {
	InterviewType   string `json:"interview_type"`
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
	Domain          string `json:"domain,omitempty"`
}

type submitAnswerRequest struct {
	SessionID      string   `json:"session_id"`
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	ExpectedTopics []string `json:"expected_topics,omitempty"`
}

type submitAnswerResponse struct {
	interviewer.Feedback
	SessionUpdated bool `json:"session_updated"`
}

type nextQuestionRequest struct {
	SessionID     string `json:"session_id"`
	PreviousScore *int   `json:"previous_score,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Handlers

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		Service:    telemetry.ServiceName,
		Version:    telemetry.ServiceVersion,
		AgentReady: s.ready(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.ready()
	status := "healthy"
	if !ready {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     status,
		Service:    telemetry.ServiceName,
		Version:    telemetry.ServiceVersion,
		AgentReady: ready,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startInterviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := req.validate()
	if err != nil {
		validationError(w, err)
		return
	}

	q, err := s.svc.StartInterview(r.Context(), in)
	if err != nil {
		s.serviceError(w, r, "Failed to start interview", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := req.validate()
	if err != nil {
		validationError(w, err)
		return
	}

	out, err := s.svc.SubmitAnswer(r.Context(), in)
	if err != nil {
		s.serviceError(w, r, "Failed to evaluate answer", err)
		return
	}
	writeJSON(w, http.StatusOK, submitAnswerResponse{Feedback: out.Feedback, SessionUpdated: out.Recorded})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var req nextQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := req.validate()
	if err != nil {
		validationError(w, err)
		return
	}

	q, err := s.svc.NextQuestion(r.Context(), in)
	if err != nil {
		s.serviceError(w, r, "Failed to get next question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context(), r.PathValue("session_id"))
	if err != nil {
		s.serviceError(w, r, "Failed to get statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeJSON(w, http.StatusOK, metrics.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}

// Validation

func (req startInterviewRequest) validate() (interview.StartInput, error) {
	interviewType, err := storage.ParseInterviewType(req.InterviewType)
	if err != nil {
		return interview.StartInput{}, err
	}
	level, err := storage.ParseExperienceLevel(req.ExperienceLevel)
	if err != nil {
		return interview.StartInput{}, err
	}

	role := strings.TrimSpace(req.Role)
	if n := utf8.RuneCountInString(role); n == 0 || n > maxRoleLen {
		return interview.StartInput{}, fmt.Errorf("role must be 1-%d characters", maxRoleLen)
	}

	domain := strings.TrimSpace(req.Domain)
	if utf8.RuneCountInString(domain) > maxDomainLen {
		return interview.StartInput{}, fmt.Errorf("domain must be at most %d characters", maxDomainLen)
	}

	return interview.StartInput{
		InterviewType:   interviewType,
		Role:            role,
		ExperienceLevel: level,
		Domain:          domain,
	}, nil
}

func (req submitAnswerRequest) validate() (interview.SubmitInput, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return interview.SubmitInput{}, errors.New("session_id is required")
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return interview.SubmitInput{}, errors.New("question is required")
	}

	answer := strings.TrimSpace(req.Answer)
	if n := utf8.RuneCountInString(answer); n == 0 || n > maxAnswerLen {
		return interview.SubmitInput{}, fmt.Errorf("answer must be 1-%d characters", maxAnswerLen)
	}

	if len(req.ExpectedTopics) > maxTopicCount {
		return interview.SubmitInput{}, fmt.Errorf("expected_topics accepts at most %d items", maxTopicCount)
	}
	topics := make([]string, 0, len(req.ExpectedTopics))
	for _, t := range req.ExpectedTopics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}

	return interview.SubmitInput{
		SessionID:      sessionID,
		Question:       question,
		Answer:         answer,
		ExpectedTopics: topics,
	}, nil
}

func (req nextQuestionRequest) validate() (interview.NextInput, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return interview.NextInput{}, errors.New("session_id is required")
	}
	if req.PreviousScore != nil && (*req.PreviousScore < 0 || *req.PreviousScore > 100) {
		return interview.NextInput{}, errors.New("previous_score must be between 0 and 100")
	}
	return interview.NextInput{SessionID: sessionID, PreviousScore: req.PreviousScore}, nil
}

// Helpers

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	if errors.Is(err, storage.ErrSessionNotFound) {
		notFound(w)
		return
	}
	telemetry.LoggerFromContext(r.Context(), s.logger).Error(action, "error", err, "path", r.URL.Path)
	internalError(w, fmt.Errorf("%s: %w", action, err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorResponse{Error: msg, Detail: detail})
}

func badRequest(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusBadRequest, "Bad request", detail)
}

func validationError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnprocessableEntity, "Validation error", err.Error())
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Session not found", "Session not found. Please start a new interview.")
}

func internalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
}
