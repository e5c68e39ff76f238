package storage

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds interview sessions keyed by an opaque id.
// Implementations must make every call atomic with respect to the others.
type Store interface {
	// Create allocates a new session and returns its id.
	Create(ctx context.Context, interviewType InterviewType, role string, level ExperienceLevel) (string, error)
	// Get returns a snapshot of the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// RecordTurn appends one answered question and its score.
	RecordTurn(ctx context.Context, id string, score int, question, answer string) error
	// Stats returns the progress summary or ErrSessionNotFound.
	Stats(ctx context.Context, id string) (*Stats, error)
	// Sweep removes sessions older than maxAge and returns how many were removed.
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
	Close() error
}

// MemoryStore keeps sessions in a map guarded by a single RWMutex.
// It lives only as long as the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Create(_ context.Context, interviewType InterviewType, role string, level ExperienceLevel) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, exists := s.sessions[id]; !exists {
			break
		}
		id = s.newID()
	}

	s.sessions[id] = &Session{
		ID:              id,
		InterviewType:   interviewType,
		Role:            role,
		ExperienceLevel: level,
		CreatedAt:       s.now(),
		Scores:          []int{},
		History:         []Turn{},
	}
	s.logger.Info("created session", "session_id", id, "interview_type", interviewType)
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.clone(), nil
}

func (s *MemoryStore) RecordTurn(_ context.Context, id string, score int, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.logger.Warn("record turn for unknown session ignored", "session_id", id, "score", score)
		return ErrSessionNotFound
	}

	sess.QuestionsAsked++
	sess.TotalScore += score
	sess.Scores = append(sess.Scores, score)
	sess.History = append(sess.History, Turn{
		Question:  question,
		Answer:    answer,
		Score:     score,
		Timestamp: s.now(),
	})
	s.logger.Info("session updated", "session_id", id, "score", score, "questions_asked", sess.QuestionsAsked)
	return nil
}

func (s *MemoryStore) Stats(_ context.Context, id string) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return StatsOf(sess), nil
}

func (s *MemoryStore) Sweep(_ context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > maxAge {
			delete(s.sessions, id)
			removed++
			s.logger.Info("cleaned up session", "session_id", id)
		}
	}
	return removed, nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) Close() error { return nil }

// roundTo2 rounds half to even, so 70.125 becomes 70.12.
func roundTo2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
