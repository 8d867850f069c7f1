package domain

import (
	"fmt"
	"time"
)

// UnknownAgentCode is returned when no agent code can be found in a log payload.
const UnknownAgentCode = "N/A"

// LogSource tags where a log record was produced.
type LogSource string

// Known log sources.
const (
	// LogSourceAgent marks an agent invocation.
	LogSourceAgent LogSource = "agent"

	// LogSourceInference marks a single model-call iteration.
	LogSourceInference LogSource = "inference"

	// LogSourceContextDiscovery marks context discovery lookups.
	LogSourceContextDiscovery LogSource = "contextdiscovery"
)

// AllLogSources returns the log sources the backend is known to emit.
func AllLogSources() []LogSource {
	return []LogSource{LogSourceAgent, LogSourceInference, LogSourceContextDiscovery}
}

// IsValid returns true if the source is recognised.
func (s LogSource) IsValid() bool {
	switch s {
	case LogSourceAgent, LogSourceInference, LogSourceContextDiscovery:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s LogSource) String() string {
	return string(s)
}

// LogRecord is a flat log entry as returned by the backend.
// Timestamps are kept verbatim; use CreatedTime and ModifiedTime for ordering.
type LogRecord struct {
	// ID is the backend identifier.
	ID string `json:"id"`

	// Source is the producing component (see LogSource).
	Source string `json:"source"`

	// SessionID groups records of one conversation.
	SessionID string `json:"sessionId"`

	// UserID is the end user on whose behalf the agent ran.
	UserID string `json:"userId"`

	// RequestID correlates an agent invocation with its inference calls.
	RequestID string `json:"requestId"`

	// CreatedOn is the raw creation timestamp.
	CreatedOn string `json:"createdOn"`

	// ModifiedOn is the raw modification timestamp.
	ModifiedOn string `json:"modifiedOn"`

	// Content is the heterogeneous payload.
	Content Content `json:"content"`
}

// CreatedTime returns CreatedOn parsed, or EpochZero when invalid or missing.
func (r LogRecord) CreatedTime() time.Time {
	return TimestampOrEpoch(r.CreatedOn)
}

// ModifiedTime returns ModifiedOn parsed, or EpochZero when invalid or missing.
func (r LogRecord) ModifiedTime() time.Time {
	return TimestampOrEpoch(r.ModifiedOn)
}

// LogQuery selects log records by creation time and optional source.
type LogQuery struct {
	// Start is the inclusive lower bound.
	Start time.Time

	// End is the upper bound.
	End time.Time

	// Source restricts results to one source; empty means all.
	Source string
}

// Validate checks that the range is set and Start is strictly before End.
func (q LogQuery) Validate() error {
	if q.Start.IsZero() || q.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidRange)
	}
	if q.Start.Equal(q.End) {
		return fmt.Errorf("%w: start and end cannot be the same", ErrInvalidRange)
	}
	if q.Start.After(q.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidRange)
	}
	return nil
}

// CorrelationWindow is the span searched on either side of an agent
// invocation for its inference logs.
const CorrelationWindow = 12 * time.Hour

// WindowAround returns a query covering CorrelationWindow on both sides of at.
func WindowAround(at time.Time, source LogSource) LogQuery {
	return LogQuery{
		Start:  at.Add(-CorrelationWindow),
		End:    at.Add(CorrelationWindow),
		Source: source.String(),
	}
}
