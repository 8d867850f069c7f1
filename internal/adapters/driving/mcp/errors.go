// Package mcp provides an MCP (Model Context Protocol) server adapter for agentops.
// It lets AI assistants search logs, correlate inference calls and browse
// context trees through the same services as the CLI.
package mcp

import "errors"

// Port validation errors.
var (
	ErrMissingLogService       = errors.New("mcp: log service is required")
	ErrMissingInferenceService = errors.New("mcp: inference service is required")
	ErrMissingContextService   = errors.New("mcp: context service is required")
	ErrInvalidPorts            = errors.New("mcp: invalid ports configuration")
)
