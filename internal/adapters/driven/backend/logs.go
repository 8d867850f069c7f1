package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/logger"
	"github.com/custodia-labs/agentops-cli/internal/payload"
)

// logsPath is the datetime-range log search endpoint.
const logsPath = "logs-by-datetime-source"

// FetchLogs returns records created within the query range.
func (c *Client) FetchLogs(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error) {
	query := url.Values{}
	query.Set("start_time", domain.FormatTimestamp(q.Start))
	query.Set("end_time", domain.FormatTimestamp(q.End))
	if q.Source != "" {
		query.Set("source", q.Source)
	}

	body, err := c.getJSON(ctx, c.endpoint(query, logsPath))
	if err != nil {
		return nil, err
	}

	records, err := payload.DecodeLogRecords(body)
	if err != nil {
		return nil, fmt.Errorf("decode logs: %w", err)
	}
	logger.Debug("Fetched %d log records (source=%q)", len(records), q.Source)
	return records, nil
}
