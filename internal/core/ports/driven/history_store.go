package driven

import (
	"context"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// HistoryStore persists executed queries.
type HistoryStore interface {
	// Record appends an entry. The entry's ID must be set.
	Record(ctx context.Context, entry *domain.HistoryEntry) error

	// List returns up to limit entries, most recent first.
	// A limit of zero or less returns every entry.
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
