package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"google.golang.org/genai"

	"interview-prep-simulator/internal/config"
	"interview-prep-simulator/internal/prompts"
)

func testOracleConfig(baseURL, format string) config.OracleConfig {
	return config.OracleConfig{
		Provider:       config.ProviderOpenRouter,
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "test-model",
		MaxTokens:      500,
		Temperature:    0.7,
		Timeout:        5 * time.Second,
		ResponseFormat: format,
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Title") == "" {
			t.Error("openrouter attribution header missing")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"`+"```json\\n{\\\"ok\\\":true}\\n```"+`"}}]}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(testOracleConfig(srv.URL+"/", config.ResponseFormatJSONSchema), nil)
	out, err := client.Complete(context.Background(), Prompt{
		System: "sys",
		User:   "usr",
		Schema: Schema{Name: prompts.QuestionSchemaName, JSON: prompts.QuestionSchema},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("content = %q, want fences stripped", out)
	}

	if got.Model != "test-model" || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("request = %+v", got)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_schema" || got.ResponseFormat.JSONSchema.Name != prompts.QuestionSchemaName {
		t.Errorf("response_format = %+v", got.ResponseFormat)
	}
}

func TestOpenAIClientResponseFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{config.ResponseFormatJSONObject, "json_object"},
		{config.ResponseFormatNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c := NewOpenAIClient(testOracleConfig("http://unused", tt.format), nil)
			rf := c.buildResponseFormat(Schema{Name: "x", JSON: json.RawMessage(`{}`)})
			switch {
			case tt.want == "" && rf != nil:
				t.Errorf("expected no response_format, got %+v", rf)
			case tt.want != "" && (rf == nil || rf.Type != tt.want):
				t.Errorf("response_format = %+v, want %s", rf, tt.want)
			}
		})
	}
}

func TestOpenAIClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"slow down"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAIClient(testOracleConfig(srv.URL, config.ResponseFormatNone), nil)
	_, err := client.Complete(context.Background(), Prompt{User: "hi"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want StatusError 429", err)
	}
	if !IsTransient(err) {
		t.Error("429 should be transient")
	}
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(testOracleConfig(srv.URL, config.ResponseFormatNone), nil)
	if _, err := client.Complete(context.Background(), Prompt{User: "hi"}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"server error", &StatusError{Code: 503}, true},
		{"request timeout", &StatusError{Code: 408}, true},
		{"unauthorized", &StatusError{Code: 401}, false},
		{"bad request", fmt.Errorf("wrap: %w", &StatusError{Code: 400}), false},
		{"genai rate limit", genai.APIError{Code: 429}, true},
		{"genai forbidden", genai.APIError{Code: 403}, false},
		{"empty", ErrEmptyResponse, false},
		{"decode", errors.New("invalid character"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsTransientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewOpenAIClient(testOracleConfig(url, config.ResponseFormatNone), nil)
	_, err := client.Complete(context.Background(), Prompt{User: "hi"})
	if err == nil {
		t.Fatal("expected a connection error")
	}
	if !IsTransient(err) {
		t.Errorf("connection error should be transient: %v", err)
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range tests {
		if got := CleanJSONResponse(in); got != want {
			t.Errorf("CleanJSONResponse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStubClientScriptsPerSchema(t *testing.T) {
	stub := NewStubClient()
	boom := errors.New("boom")
	stub.Enqueue(prompts.QuestionSchemaName, StubResponse{Err: boom}, StubResponse{Body: "```json\n{\"q\":1}\n```"})

	ctx := context.Background()
	question := Prompt{Schema: Schema{Name: prompts.QuestionSchemaName}}

	if _, err := stub.Complete(ctx, question); !errors.Is(err, boom) {
		t.Errorf("first call err = %v", err)
	}
	if out, _ := stub.Complete(ctx, question); out != `{"q":1}` {
		t.Errorf("second call = %q", out)
	}
	if out, _ := stub.Complete(ctx, question); out != DefaultQuestionBody {
		t.Errorf("third call should fall back to the default body, got %q", out)
	}
	if out, _ := stub.Complete(ctx, Prompt{Schema: Schema{Name: prompts.FeedbackSchemaName}}); out != DefaultFeedbackBody {
		t.Errorf("feedback default = %q", out)
	}
	if len(stub.Calls()) != 4 {
		t.Errorf("calls = %d, want 4", len(stub.Calls()))
	}
}
