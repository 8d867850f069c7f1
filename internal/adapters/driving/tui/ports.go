// Package tui provides an interactive terminal user interface for agentops.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Logs searches agent and inference logs.
	Logs driving.LogService

	// Inference correlates an agent log with its inference calls.
	Inference driving.InferenceService

	// Contexts builds context trees and version histories.
	Contexts driving.ContextService

	// History lists and clears recorded searches. Optional.
	History driving.HistoryService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(
	logs driving.LogService,
	inference driving.InferenceService,
	contexts driving.ContextService,
) *Ports {
	return &Ports{
		Logs:      logs,
		Inference: inference,
		Contexts:  contexts,
	}
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
	return nil
}
