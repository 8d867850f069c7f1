package services

import (
	"sort"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// sortOldestFirst orders records ascending by createdOn.
// Unparseable timestamps count as the epoch and sort first.
func sortOldestFirst(records []domain.LogRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedTime().Before(records[j].CreatedTime())
	})
}

// sortNewestFirst orders records descending by createdOn.
// Unparseable timestamps count as the epoch and sort last.
func sortNewestFirst(records []domain.LogRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedTime().After(records[j].CreatedTime())
	})
}
