package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestHandleHistoryResource(t *testing.T) {
	t.Run("lists recent entries", func(t *testing.T) {
		history := &mockHistoryService{entries: []domain.HistoryEntry{{
			ID:          "h-1",
			Kind:        domain.HistoryContextTree,
			Params:      map[string]string{"agent_code": "BILLING"},
			ResultCount: 4,
			CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}}}
		ports := validPorts()
		ports.History = history
		server := newTestServer(t, ports, testNow)

		result, err := server.handleHistoryResource(context.Background(), makeReadResourceRequest(historyURI))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, historyURI, result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Equal(t, historyLimit, history.limit)

		var entries []domain.HistoryEntry
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "h-1", entries[0].ID)
		assert.Equal(t, 4, entries[0].ResultCount)
	})

	t.Run("without history service returns empty array", func(t *testing.T) {
		server := newTestServer(t, validPorts(), testNow)

		result, err := server.handleHistoryResource(context.Background(), makeReadResourceRequest(historyURI))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("list error", func(t *testing.T) {
		ports := validPorts()
		ports.History = &mockHistoryService{err: errors.New("db locked")}
		server := newTestServer(t, ports, testNow)

		_, err := server.handleHistoryResource(context.Background(), makeReadResourceRequest(historyURI))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list history")
	})
}
