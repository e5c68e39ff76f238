package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"interview-prep-simulator/internal/config"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself or OpenRouter).
type OpenAIClient struct {
	baseURL        string
	apiKey         string
	model          string
	maxTokens      int
	temperature    float64
	responseFormat string
	headers        map[string]string
	client         *http.Client
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type chatResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// NewOpenAIClient builds a client from the oracle config. httpClient may be nil.
func NewOpenAIClient(cfg config.OracleConfig, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	headers := map[string]string{}
	if cfg.Provider == config.ProviderOpenRouter {
		headers["HTTP-Referer"] = "http://localhost:3000"
		headers["X-Title"] = "Interview Prep Simulator"
	}

	return &OpenAIClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		responseFormat: cfg.ResponseFormat,
		headers:        headers,
		client:         httpClient,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	reqBody := chatRequest{
		Model:          c.model,
		Messages:       buildMessages(prompt),
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: c.buildResponseFormat(prompt.Schema),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("oracle API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := CleanJSONResponse(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func buildMessages(prompt Prompt) []Message {
	messages := make([]Message, 0, 2)
	if prompt.System != "" {
		messages = append(messages, Message{Role: "system", Content: prompt.System})
	}
	return append(messages, Message{Role: "user", Content: prompt.User})
}

func (c *OpenAIClient) buildResponseFormat(schema Schema) *responseFormat {
	switch c.responseFormat {
	case config.ResponseFormatJSONObject:
		return &responseFormat{Type: "json_object"}
	case config.ResponseFormatJSONSchema:
		if len(schema.JSON) == 0 {
			return &responseFormat{Type: "json_object"}
		}
		return &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: schema.Name, Schema: schema.JSON, Strict: true},
		}
	default:
		return nil
	}
}
