package backend

import (
	"context"
	"fmt"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/logger"
	"github.com/custodia-labs/agentops-cli/internal/payload"
)

// auditPath prefixes the audit trail endpoints.
const auditPath = "audit"

// FetchAuditByRequest returns every log written for one request.
func (c *Client) FetchAuditByRequest(ctx context.Context, requestID string) ([]domain.LogRecord, error) {
	return c.fetchAudit(ctx, "request", requestID)
}

// FetchAuditBySession returns every log written in one session.
func (c *Client) FetchAuditBySession(ctx context.Context, sessionID string) ([]domain.LogRecord, error) {
	return c.fetchAudit(ctx, "session", sessionID)
}

func (c *Client) fetchAudit(ctx context.Context, scope, id string) ([]domain.LogRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: %s ID is required", domain.ErrInvalidInput, scope)
	}

	body, err := c.getJSON(ctx, c.endpoint(nil, auditPath, scope, id))
	if err != nil {
		return nil, err
	}

	records, err := payload.DecodeLogRecords(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s audit: %w", scope, err)
	}
	logger.Debug("Fetched %d audit records for %s %s", len(records), scope, id)
	return records, nil
}
