package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

const (
	defaultSearchLimit = 50
	summaryWidth       = 120
)

// SearchLogsInput defines the input for the search_logs tool.
type SearchLogsInput struct {
	Start  string `json:"start,omitempty" jsonschema:"range start as RFC3339, defaults to local midnight"`
	End    string `json:"end,omitempty" jsonschema:"range end as RFC3339, defaults to now"`
	Source string `json:"source,omitempty" jsonschema:"restrict to one source: agent, inference or contextdiscovery"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 50)"`
}

// LogOutput is a single log record in tool output.
type LogOutput struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	CreatedOn string `json:"created_on"`
	AgentCode string `json:"agent_code"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
}

// SearchLogsOutput defines the output for the search_logs tool.
type SearchLogsOutput struct {
	Records []LogOutput `json:"records"`
	Count   int         `json:"count"`
	Total   int         `json:"total"`
}

// InferenceTreeInput defines the input for the inference_tree tool.
type InferenceTreeInput struct {
	RequestID string `json:"request_id" jsonschema:"request ID of the agent invocation"`
	At        string `json:"at" jsonschema:"approximate time of the invocation as RFC3339"`
	AgentCode string `json:"agent_code,omitempty" jsonschema:"agent code to correlate on, looked up from the agent log when empty"`
}

// InferenceTreeOutput defines the output for the inference_tree tool.
type InferenceTreeOutput struct {
	Agent     LogOutput   `json:"agent"`
	AgentCode string      `json:"agent_code"`
	Inference []LogOutput `json:"inference"`
	Count     int         `json:"count"`
}

// ContextTreeInput defines the input for the context_tree tool.
type ContextTreeInput struct {
	AgentCode string `json:"agent_code" jsonschema:"agent whose contexts to fetch"`
	VersionID string `json:"version_id,omitempty" jsonschema:"restrict to one version ID"`
}

// ContextTreeOutput defines the output for the context_tree tool.
type ContextTreeOutput struct {
	Tree  *domain.ContextTree `json:"tree"`
	Count int                 `json:"count"`
}

// ContextVersionsInput defines the input for the context_versions tool.
type ContextVersionsInput struct {
	PromptCode string `json:"prompt_code" jsonschema:"prompt code to list versions of"`
}

// ContextVersionsOutput defines the output for the context_versions tool.
type ContextVersionsOutput struct {
	Versions []domain.VersionSummary `json:"versions"`
	Count    int                     `json:"count"`
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolSearchLogs,
		Description: "Search agent, inference and context discovery logs in a time range, newest first",
	}, s.handleSearchLogs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolInferenceTree,
		Description: "Show the inference calls made for one agent request",
	}, s.handleInferenceTree)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolContextTree,
		Description: "Fetch an agent's prompt contexts grouped by intent, type and version",
	}, s.handleContextTree)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolContextVersions,
		Description: "List the stored versions of one prompt, newest first",
	}, s.handleContextVersions)
}

// handleSearchLogs handles the search_logs tool.
func (s *Server) handleSearchLogs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchLogsInput,
) (*mcp.CallToolResult, SearchLogsOutput, error) {
	q, err := s.logQuery(input)
	if err != nil {
		return nil, SearchLogsOutput{}, err
	}

	records, err := s.ports.Logs.Search(ctx, q)
	if err != nil {
		return nil, SearchLogsOutput{}, fmt.Errorf("search failed: %w", err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	output := SearchLogsOutput{
		Records: make([]LogOutput, 0, min(limit, len(records))),
		Total:   len(records),
	}
	for i := range records {
		if i >= limit {
			break
		}
		output.Records = append(output.Records, toLogOutput(records[i]))
	}
	output.Count = len(output.Records)

	return nil, output, nil
}

// logQuery builds a query from tool input. Missing bounds cover today.
func (s *Server) logQuery(input SearchLogsInput) (domain.LogQuery, error) {
	now := s.now()
	q := domain.LogQuery{
		Start:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		End:    now,
		Source: strings.TrimSpace(input.Source),
	}

	if input.Start != "" {
		t, err := time.Parse(time.RFC3339, input.Start)
		if err != nil {
			return q, fmt.Errorf("%w: start must be RFC3339: %q", domain.ErrInvalidInput, input.Start)
		}
		q.Start = t
	}
	if input.End != "" {
		t, err := time.Parse(time.RFC3339, input.End)
		if err != nil {
			return q, fmt.Errorf("%w: end must be RFC3339: %q", domain.ErrInvalidInput, input.End)
		}
		q.End = t
	}
	return q, nil
}

// handleInferenceTree handles the inference_tree tool.
func (s *Server) handleInferenceTree(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InferenceTreeInput,
) (*mcp.CallToolResult, InferenceTreeOutput, error) {
	requestID := strings.TrimSpace(input.RequestID)
	if requestID == "" {
		return nil, InferenceTreeOutput{}, fmt.Errorf("%w: request_id is required", domain.ErrInvalidInput)
	}
	at, err := time.Parse(time.RFC3339, input.At)
	if err != nil {
		return nil, InferenceTreeOutput{}, fmt.Errorf("%w: at must be RFC3339: %q", domain.ErrInvalidInput, input.At)
	}

	tree, err := s.inferenceTree(ctx, requestID, strings.TrimSpace(input.AgentCode), at)
	if err != nil {
		return nil, InferenceTreeOutput{}, fmt.Errorf("inference lookup failed: %w", err)
	}
	if tree == nil {
		return nil, InferenceTreeOutput{}, fmt.Errorf("inference lookup failed: %w", domain.ErrNotFound)
	}

	output := InferenceTreeOutput{
		Agent:     toLogOutput(tree.Agent),
		AgentCode: tree.AgentCode,
		Inference: make([]LogOutput, 0, len(tree.Inference)),
	}
	for _, rec := range tree.Inference {
		output.Inference = append(output.Inference, toLogOutput(rec))
	}
	output.Count = len(output.Inference)

	return nil, output, nil
}

// inferenceTree builds the tree directly when the agent code is known and
// otherwise correlates from the earliest agent log of the request.
func (s *Server) inferenceTree(ctx context.Context, requestID, agentCode string, at time.Time) (*domain.InferenceTree, error) {
	if agentCode != "" {
		parent := domain.LogRecord{
			RequestID: requestID,
			Source:    domain.LogSourceAgent.String(),
			CreatedOn: domain.FormatTimestamp(at),
		}
		return s.ports.Inference.BuildTree(ctx, requestID, agentCode, parent)
	}

	parents, err := s.ports.Inference.AgentLogs(ctx, requestID, at)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, fmt.Errorf("%w: no agent log for request %s", domain.ErrNotFound, requestID)
	}
	return s.ports.Inference.TreeFor(ctx, parents[0])
}

// handleContextTree handles the context_tree tool.
func (s *Server) handleContextTree(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ContextTreeInput,
) (*mcp.CallToolResult, ContextTreeOutput, error) {
	agentCode := strings.TrimSpace(input.AgentCode)
	if agentCode == "" {
		return nil, ContextTreeOutput{}, fmt.Errorf("%w: agent_code is required", domain.ErrInvalidInput)
	}

	tree, err := s.ports.Contexts.Tree(ctx, agentCode, strings.TrimSpace(input.VersionID))
	if err != nil {
		return nil, ContextTreeOutput{}, fmt.Errorf("context lookup failed: %w", err)
	}
	if tree == nil {
		tree = &domain.ContextTree{AgentCode: agentCode}
	}

	return nil, ContextTreeOutput{Tree: tree, Count: tree.Len()}, nil
}

// handleContextVersions handles the context_versions tool.
func (s *Server) handleContextVersions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ContextVersionsInput,
) (*mcp.CallToolResult, ContextVersionsOutput, error) {
	promptCode := strings.TrimSpace(input.PromptCode)
	if promptCode == "" {
		return nil, ContextVersionsOutput{}, fmt.Errorf("%w: prompt_code is required", domain.ErrInvalidInput)
	}

	versions, err := s.ports.Contexts.Versions(ctx, promptCode)
	if err != nil {
		return nil, ContextVersionsOutput{}, fmt.Errorf("version lookup failed: %w", err)
	}
	if versions == nil {
		versions = []domain.VersionSummary{}
	}

	return nil, ContextVersionsOutput{Versions: versions, Count: len(versions)}, nil
}

func toLogOutput(rec domain.LogRecord) LogOutput {
	return LogOutput{
		ID:        rec.ID,
		Source:    rec.Source,
		RequestID: rec.RequestID,
		SessionID: rec.SessionID,
		UserID:    rec.UserID,
		CreatedOn: rec.CreatedOn,
		AgentCode: services.AgentCodeOf(rec),
		Summary:   services.Summary(rec.Content, summaryWidth),
		Content:   services.FormatContent(rec.Content),
	}
}
