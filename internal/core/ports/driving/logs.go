package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// LogService searches flat log records.
type LogService interface {
	// Search validates q and returns matching records, newest first.
	// Zero matches is an empty result, not an error.
	Search(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error)
}

// InferenceService correlates agent invocations with their inference calls.
type InferenceService interface {
	// BuildTree fetches inference logs within the correlation window around
	// parent's creation time and keeps those matching requestID and agentCode.
	// A fetch failure returns no tree.
	BuildTree(ctx context.Context, requestID, agentCode string, parent domain.LogRecord) (*domain.InferenceTree, error)

	// TreeFor derives the correlation key from parent and calls BuildTree.
	// Fails with domain.ErrMissingCorrelation when parent has no request ID
	// or no agent code.
	TreeFor(ctx context.Context, parent domain.LogRecord) (*domain.InferenceTree, error)

	// AgentLogs returns agent invocation logs for requestID within the
	// correlation window around at, oldest first.
	AgentLogs(ctx context.Context, requestID string, at time.Time) ([]domain.LogRecord, error)
}
