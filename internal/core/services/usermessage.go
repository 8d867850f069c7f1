package services

import (
	"errors"
	"net/http"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// Messages shown to users for common failures.
const (
	MsgNotFound       = "Resource not found"
	MsgServerError    = "Server error. Please try again later."
	MsgAccessDenied   = "Access denied"
	MsgUnauthorized   = "Unauthorized. Please login."
	MsgRateLimited    = "Too many requests. Please wait and try again."
	MsgRequestFailed  = "Request failed"
	MsgInvalidFormat  = "Invalid response format"
	MsgNotConfigured  = "Backend not configured. Run: agentops settings backend --url <url>"
	MsgNoConnectivity = "Backend unreachable. Check the base URL and your network."
)

// httpStatusError is implemented by transport errors that carry a response status.
type httpStatusError interface {
	HTTPStatus() int
	ServerMessage() string
}

// UserMessage returns a short, user-facing description of err.
// Errors the backend explains are shown with the server's own message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var statusErr httpStatusError
	if errors.As(err, &statusErr) {
		code := statusErr.HTTPStatus()
		switch {
		case code == http.StatusNotFound:
			return MsgNotFound
		case code >= http.StatusInternalServerError:
			return MsgServerError
		case code == http.StatusForbidden:
			return MsgAccessDenied
		case code == http.StatusUnauthorized:
			return MsgUnauthorized
		case code == http.StatusTooManyRequests:
			return MsgRateLimited
		case statusErr.ServerMessage() != "":
			return statusErr.ServerMessage()
		default:
			return MsgRequestFailed
		}
	}

	switch {
	case errors.Is(err, domain.ErrBackendNotConfigured):
		return MsgNotConfigured
	case errors.Is(err, domain.ErrInvalidResponse):
		return MsgInvalidFormat
	case errors.Is(err, domain.ErrBackendUnavailable):
		return MsgNoConnectivity
	case errors.Is(err, domain.ErrAuthRequired):
		return MsgUnauthorized
	case errors.Is(err, domain.ErrAccessDenied):
		return MsgAccessDenied
	case errors.Is(err, domain.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return MsgRateLimited
	default:
		return err.Error()
	}
}
