package driving

import (
	"context"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// ContextService browses an agent's prompt contexts.
type ContextService interface {
	// Tree fetches an agent's contexts and groups them by intent, type and version.
	// An empty versionID includes every version.
	Tree(ctx context.Context, agentCode, versionID string) (*domain.ContextTree, error)

	// Versions summarises the stored versions of one prompt, newest first.
	Versions(ctx context.Context, promptCode string) ([]domain.VersionSummary, error)
}
