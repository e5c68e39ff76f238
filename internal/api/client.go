package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

// Client is a generation oracle: it turns an instruction into raw JSON text.
// Callers validate the returned text themselves.
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is one oracle request.
type Prompt struct {
	System string
	User   string
	Schema Schema
}

// Schema names the structured output the caller expects.
type Schema struct {
	Name string
	JSON json.RawMessage
}

// StatusError is a non-2xx answer from an oracle endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle API error: status %d, body: %s", e.Code, e.Body)
}

// ErrEmptyResponse is returned when the oracle answers without any content.
var ErrEmptyResponse = errors.New("oracle returned empty response")

// IsTransient reports whether a failed call is worth retrying:
// network errors, timeouts, 408, 429 and 5xx.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return transientStatus(statusErr.Code)
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return transientStatus(genaiErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func transientStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// CleanJSONResponse strips markdown code fences around a JSON payload.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```JSON")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
