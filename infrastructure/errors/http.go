// Package errors provides error helpers shared by the Sunrain services.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an upstream error body is retained.
const maxErrorBody = 4 << 10

// HTTPError is a non-2xx response from an upstream API.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error (%d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
}

// Temporary reports whether retrying the request may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ParseHTTPError converts a response with status >= 400 into an *HTTPError.
// It returns nil for successful responses. The body is read but not closed.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		u := *resp.Request.URL
		u.RawQuery = ""
		httpErr.URL = u.String()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		httpErr.Message = fmt.Sprintf("failed to read error response body: %v", err)
		return httpErr
	}
	httpErr.Body = string(body)
	httpErr.Message = extractMessage(body)

	return httpErr
}

// extractMessage understands the error envelopes used by TMDB
// (status_message), Spotify (error.message) and generic APIs (error/message).
func extractMessage(body []byte) string {
	var envelope struct {
		Error         json.RawMessage `json:"error"`
		Message       string          `json:"message"`
		StatusMessage string          `json:"status_message"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return strings.TrimSpace(string(body))
	}

	if envelope.StatusMessage != "" {
		return envelope.StatusMessage
	}

	if len(envelope.Error) > 0 {
		var s string
		if json.Unmarshal(envelope.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}

	if envelope.Message != "" {
		return envelope.Message
	}
	return strings.TrimSpace(string(body))
}

// GetHTTPStatusCode extracts the status code from an *HTTPError in err's chain.
func GetHTTPStatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
