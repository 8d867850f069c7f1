package domain

import "time"

// HistoryKind identifies which query produced a history entry.
type HistoryKind string

// Recorded query kinds.
const (
	HistoryLogSearch      HistoryKind = "log_search"
	HistoryInferenceTree  HistoryKind = "inference_tree"
	HistoryContextTree    HistoryKind = "context_tree"
	HistoryContextVersion HistoryKind = "context_versions"
	HistoryAudit          HistoryKind = "audit"
	HistoryCosts          HistoryKind = "costs"
)

// IsValid returns true if the kind is recognised.
func (k HistoryKind) IsValid() bool {
	switch k {
	case HistoryLogSearch, HistoryInferenceTree, HistoryContextTree, HistoryContextVersion,
		HistoryAudit, HistoryCosts:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k HistoryKind) String() string {
	return string(k)
}

// HistoryEntry is one executed query with its outcome.
type HistoryEntry struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// Kind is the query type.
	Kind HistoryKind `json:"kind"`

	// Params holds the query parameters as entered.
	Params map[string]string `json:"params"`

	// ResultCount is the number of records, nodes or versions returned.
	ResultCount int `json:"resultCount"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the query ran.
	CreatedAt time.Time `json:"createdAt"`
}

// Succeeded returns true if the query completed without error.
func (e HistoryEntry) Succeeded() bool {
	return e.Error == ""
}
