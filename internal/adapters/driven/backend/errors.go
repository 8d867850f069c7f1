package backend

import (
	"fmt"
	"net/http"

	"github.com/valyala/fastjson"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
	URL        string

	// Err is the domain sentinel for the status, nil when none applies.
	Err error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: HTTP %d (URL: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("backend: HTTP %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// ServerMessage returns the error text the backend sent, if any.
func (e *StatusError) ServerMessage() string {
	return e.Message
}

// statusSentinel maps an HTTP status to a domain error.
func statusSentinel(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return domain.ErrAuthRequired
	case code == http.StatusForbidden:
		return domain.ErrAccessDenied
	case code == http.StatusNotFound:
		return domain.ErrNotFound
	case code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case code >= http.StatusInternalServerError:
		return domain.ErrBackendUnavailable
	default:
		return nil
	}
}

// newStatusError builds a StatusError from a response status and body.
func newStatusError(status int, rawURL string, body []byte) *StatusError {
	return &StatusError{
		StatusCode: status,
		Message:    serverMessage(body),
		URL:        rawURL,
		Err:        statusSentinel(status),
	}
}

// serverMessage extracts the error text from a JSON error body.
// Non-JSON bodies yield an empty message.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		field := v.Get(key)
		if field == nil {
			continue
		}
		switch field.Type() {
		case fastjson.TypeString:
			if s := string(field.GetStringBytes()); s != "" {
				return s
			}
		case fastjson.TypeObject:
			if s := string(field.GetStringBytes("message")); s != "" {
				return s
			}
		}
	}
	return ""
}
