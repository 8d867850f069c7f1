package mcp

import (
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Logs searches logs.
	Logs driving.LogService

	// Inference correlates agent logs with inference calls.
	Inference driving.InferenceService

	// Contexts builds context trees and version histories.
	Contexts driving.ContextService

	// History backs the history resource. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Logs == nil {
		return ErrMissingLogService
	}
	if p.Inference == nil {
		return ErrMissingInferenceService
	}
	if p.Contexts == nil {
		return ErrMissingContextService
	}
	// History is optional
	return nil
}
