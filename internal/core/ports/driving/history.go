package driving

import (
	"context"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// HistoryService exposes previously executed queries.
type HistoryService interface {
	// List returns up to limit entries, most recent first.
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Enabled reports whether queries are being recorded.
	Enabled() bool
}
