package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

const (
	historyURI   = "agentops://history"
	historyLimit = 50
)

// registerResources registers all MCP resources.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         historyURI,
		Name:        "Query History",
		Description: "Recently executed log, inference and context queries",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleHistoryResource returns recent history entries as JSON.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries := []domain.HistoryEntry{}
	if s.ports.History != nil {
		list, err := s.ports.History.List(ctx, historyLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list history: %w", err)
		}
		if list != nil {
			entries = list
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
