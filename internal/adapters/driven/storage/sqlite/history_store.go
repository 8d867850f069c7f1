package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Record appends an entry.
func (s *historyStore) Record(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("%w: history entry requires an id", domain.ErrInvalidInput)
	}

	params := entry.Params
	if params == nil {
		params = map[string]string{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshalling params: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO history (id, kind, params, result_count, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Kind), string(paramsJSON), entry.ResultCount, entry.Error, createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recent first.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, kind, params, result_count, error, created_at
		FROM history
		ORDER BY created_at DESC, seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.HistoryEntry
		var kind, paramsJSON string
		var createdAt int64
		if err := rows.Scan(&entry.ID, &kind, &paramsJSON, &entry.ResultCount, &entry.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}

		if err := json.Unmarshal([]byte(paramsJSON), &entry.Params); err != nil {
			return nil, fmt.Errorf("unmarshaling params: %w", err)
		}
		entry.Kind = domain.HistoryKind(kind)
		entry.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return entries, nil
}

// Clear removes every entry.
func (s *historyStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
