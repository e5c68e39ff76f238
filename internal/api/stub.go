package api

import (
	"context"
	"sync"

	"interview-prep-simulator/internal/prompts"
)

// StubResponse is one scripted oracle outcome.
type StubResponse struct {
	Body string
	Err  error
}

// StubClient is a deterministic oracle. Scripted responses are consumed per
// schema name in FIFO order; once a queue is empty the default body for that
// schema is returned.
type StubClient struct {
	mu       sync.Mutex
	queues   map[string][]StubResponse
	defaults map[string]string
	calls    []Prompt
}

// Default bodies, also used by the stub provider in local development.
const (
	DefaultQuestionBody = `{
  "question": "Walk me through a recent project where you had to make a significant technical trade-off. What options did you consider and why did you choose the one you did?",
  "context": "Focus on the decision process and its outcome",
  "difficulty": "medium",
  "expected_topics": ["problem framing", "alternatives considered", "trade-offs", "outcome and lessons"],
  "time_limit_seconds": 240
}`
	DefaultFeedbackBody = `{
  "overall_score": 72,
  "feedback_detail": {"clarity": 75, "technical_accuracy": 70, "completeness": 68, "communication": 75},
  "strengths": ["Clear structure", "Relevant example"],
  "improvements": ["Quantify the impact of your decision", "Mention the alternatives you rejected"],
  "missing_topics": [],
  "suggested_answer": "Describe the context, the options, the criteria you used to compare them, the decision and the measurable result.",
  "follow_up_question": "What would you do differently today?"
}`
)

func NewStubClient() *StubClient {
	return &StubClient{
		queues: make(map[string][]StubResponse),
		defaults: map[string]string{
			prompts.QuestionSchemaName: DefaultQuestionBody,
			prompts.FeedbackSchemaName: DefaultFeedbackBody,
		},
	}
}

// Enqueue scripts the next responses for prompts carrying the given schema name.
func (s *StubClient) Enqueue(schemaName string, responses ...StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[schemaName] = append(s.queues[schemaName], responses...)
}

// SetDefault replaces the fallback body for a schema name.
func (s *StubClient) SetDefault(schemaName, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[schemaName] = body
}

func (s *StubClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if queue := s.queues[prompt.Schema.Name]; len(queue) > 0 {
		next := queue[0]
		s.queues[prompt.Schema.Name] = queue[1:]
		if next.Err != nil {
			return "", next.Err
		}
		return CleanJSONResponse(next.Body), nil
	}

	body, ok := s.defaults[prompt.Schema.Name]
	if !ok {
		return "", ErrEmptyResponse
	}
	return body, nil
}

// Calls returns every prompt received so far.
func (s *StubClient) Calls() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Prompt(nil), s.calls...)
}
