package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService records executed queries and lists them back.
// A nil *HistoryService or one without a store records nothing.
type HistoryService struct {
	mu    sync.RWMutex
	store driven.HistoryStore
	now   func() time.Time
}

// NewHistoryService creates a history service.
// The store parameter is optional (can be nil) and disables recording.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{
		store: store,
		now:   time.Now,
	}
}

// Enabled reports whether queries are being recorded.
func (s *HistoryService) Enabled() bool {
	return s.current() != nil
}

// SetStore replaces the backing store. Nil disables recording.
func (s *HistoryService) SetStore(store driven.HistoryStore) {
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
}

func (s *HistoryService) current() driven.HistoryStore {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Record stores one executed query. Failures are logged, never returned.
func (s *HistoryService) Record(
	ctx context.Context, kind domain.HistoryKind, params map[string]string, resultCount int, queryErr error,
) {
	store := s.current()
	if store == nil {
		return
	}

	entry := &domain.HistoryEntry{
		ID:          uuid.New().String(),
		Kind:        kind,
		Params:      params,
		ResultCount: resultCount,
		CreatedAt:   s.now().UTC(),
	}
	if queryErr != nil {
		entry.Error = queryErr.Error()
	}

	// Recorded even when the query context was cancelled.
	if err := store.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("Failed to record %s history: %v", kind, err)
	}
}

// List returns up to limit entries, most recent first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	store := s.current()
	if store == nil {
		return []domain.HistoryEntry{}, nil
	}
	return store.List(ctx, limit)
}

// Clear removes every entry.
func (s *HistoryService) Clear(ctx context.Context) error {
	store := s.current()
	if store == nil {
		return nil
	}
	return store.Clear(ctx)
}
