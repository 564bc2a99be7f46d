package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message comes from the body's "detail" field, else its "message" field.
	// Empty when the body carried neither.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// ServerMessage returns the message the server sent for err, or "" when err
// is not an *APIError or the body had no detail/message field.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    extractMessage(body),
	}
}

// extractMessage applies the detail → message fallback chain to an error body.
func extractMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if msg := rawText(raw); msg != "" {
			return msg
		}
	}
	return ""
}

// rawText returns a JSON string's value, or the compact JSON of any other
// non-null value (validation errors put a list under "detail").
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}
