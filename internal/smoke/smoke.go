// Package smoke drives a running server through a full interview round trip.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Runner calls the public API of a server at BaseURL.
type Runner struct {
	BaseURL string
	Client  *http.Client
	Out     io.Writer
}

func NewRunner(baseURL string, out io.Writer) *Runner {
	return &Runner{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 2 * time.Minute},
		Out:     out,
	}
}

type question struct {
	SessionID      string   `json:"session_id"`
	Question       string   `json:"question"`
	Difficulty     string   `json:"difficulty"`
	ExpectedTopics []string `json:"expected_topics"`
}

type feedback struct {
	OverallScore   int  `json:"overall_score"`
	SessionUpdated bool `json:"session_updated"`
}

type stats struct {
	QuestionsAsked int     `json:"questions_asked"`
	AverageScore   float64 `json:"average_score"`
}

type health struct {
	Status     string `json:"status"`
	AgentReady bool   `json:"agent_ready"`
}

// Run executes every step in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context) error {
	var (
		h  health
		q  question
		fb feedback
		st stats
	)

	steps := []struct {
		name string
		run  func() error
	}{
		{"health", func() error {
			return r.call(ctx, http.MethodGet, "/health", nil, &h)
		}},
		{"start interview", func() error {
			err := r.call(ctx, http.MethodPost, "/api/interview/start", map[string]any{
				"interview_type":   "technical",
				"role":             "Backend Engineer",
				"experience_level": "intermediate",
				"domain":           "distributed systems",
			}, &q)
			if err == nil && q.SessionID == "" {
				err = errors.New("response has no session_id")
			}
			return err
		}},
		{"submit answer", func() error {
			return r.call(ctx, http.MethodPost, "/api/interview/answer", map[string]any{
				"session_id":      q.SessionID,
				"question":        q.Question,
				"answer":          "I would start from the requirements, sketch the data flow and then discuss trade-offs.",
				"expected_topics": q.ExpectedTopics,
			}, &fb)
		}},
		{"next question", func() error {
			return r.call(ctx, http.MethodPost, "/api/interview/next", map[string]any{
				"session_id":     q.SessionID,
				"previous_score": fb.OverallScore,
			}, &question{})
		}},
		{"stats", func() error {
			if err := r.call(ctx, http.MethodGet, "/api/interview/stats/"+q.SessionID, nil, &st); err != nil {
				return err
			}
			if fb.SessionUpdated && st.QuestionsAsked != 1 {
				return fmt.Errorf("questions_asked = %d, want 1", st.QuestionsAsked)
			}
			return nil
		}},
	}

	for _, step := range steps {
		start := time.Now()
		if err := step.run(); err != nil {
			fmt.Fprintf(r.Out, "FAIL %-16s %v\n", step.name, err)
			return fmt.Errorf("%s: %w", step.name, err)
		}
		fmt.Fprintf(r.Out, "ok   %-16s %s\n", step.name, time.Since(start).Round(time.Millisecond))
	}

	fmt.Fprintf(r.Out, "\nstatus=%s agent_ready=%t difficulty=%s score=%d average=%.2f\n",
		h.Status, h.AgentReady, q.Difficulty, fb.OverallScore, st.AverageScore)
	return nil
}

func (r *Runner) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
