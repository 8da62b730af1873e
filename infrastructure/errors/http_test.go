package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/oe/sunrain-sub002/infrastructure/errors"
)

func response(status int, body string) *http.Response {
	u, _ := url.Parse("https://api.themoviedb.org/3/search/movie?api_key=secret&query=x")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{URL: u},
	}
}

func TestParseHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantNil bool
		wantMsg string
	}{
		{name: "success is nil", status: http.StatusOK, wantNil: true},
		{name: "tmdb envelope", status: http.StatusUnauthorized, body: `{"status_code":7,"status_message":"Invalid API key"}`, wantMsg: "Invalid API key"},
		{name: "spotify envelope", status: http.StatusBadRequest, body: `{"error":{"status":400,"message":"No search query"}}`, wantMsg: "No search query"},
		{name: "string error", status: http.StatusBadRequest, body: `{"error":"invalid_client"}`, wantMsg: "invalid_client"},
		{name: "plain text", status: http.StatusBadGateway, body: "upstream down\n", wantMsg: "upstream down"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := infraerrors.ParseHTTPError(response(tc.status, tc.body))
			if tc.wantNil {
				assert.NoError(t, err)
				return
			}

			var httpErr *infraerrors.HTTPError
			require.True(t, stderrors.As(err, &httpErr))
			assert.Equal(t, tc.status, httpErr.StatusCode)
			assert.Equal(t, tc.wantMsg, httpErr.Message)
			assert.NotContains(t, httpErr.URL, "secret", "query string must not leak into errors")
		})
	}
}

func TestHTTPError_Temporary(t *testing.T) {
	assert.True(t, (&infraerrors.HTTPError{StatusCode: http.StatusTooManyRequests}).Temporary())
	assert.True(t, (&infraerrors.HTTPError{StatusCode: http.StatusServiceUnavailable}).Temporary())
	assert.False(t, (&infraerrors.HTTPError{StatusCode: http.StatusNotFound}).Temporary())
}

func TestGetHTTPStatusCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("fetch movie: %w", &infraerrors.HTTPError{StatusCode: http.StatusNotFound})

	code, ok := infraerrors.GetHTTPStatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
}
