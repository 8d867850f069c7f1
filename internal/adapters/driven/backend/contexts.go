package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/logger"
	"github.com/custodia-labs/agentops-cli/internal/payload"
)

// FetchContexts returns the contexts of one agent, optionally at one version.
func (c *Client) FetchContexts(ctx context.Context, agentCode, versionID string) ([]domain.Context, error) {
	if agentCode == "" {
		return nil, fmt.Errorf("%w: agent code is required", domain.ErrInvalidInput)
	}

	var query url.Values
	if versionID != "" {
		query = url.Values{"version_id": {versionID}}
	}

	contexts, err := c.fetchContexts(ctx, c.endpoint(query, "agents", agentCode, "contexts"))
	if err != nil {
		return nil, err
	}
	logger.Debug("Fetched %d contexts for agent %s", len(contexts), agentCode)
	return contexts, nil
}

// FetchContextHistory returns every stored version of one prompt.
func (c *Client) FetchContextHistory(ctx context.Context, promptCode string) ([]domain.Context, error) {
	if promptCode == "" {
		return nil, fmt.Errorf("%w: prompt code is required", domain.ErrInvalidInput)
	}

	contexts, err := c.fetchContexts(ctx, c.endpoint(nil, "context-code", promptCode, "contexts"))
	if err != nil {
		return nil, err
	}
	logger.Debug("Fetched %d versions for prompt %s", len(contexts), promptCode)
	return contexts, nil
}

func (c *Client) fetchContexts(ctx context.Context, rawURL string) ([]domain.Context, error) {
	body, err := c.getJSON(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	contexts, err := payload.DecodeContexts(body)
	if err != nil {
		return nil, fmt.Errorf("decode contexts: %w", err)
	}
	return contexts, nil
}
