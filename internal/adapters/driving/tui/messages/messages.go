// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
//
// Completions of backend requests carry the latest.Ticket of the request that
// produced them. A view applies a completion only while its ticket is current.
package messages

import (
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/latest"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewLogs is the log search view.
	ViewLogs
	// ViewInference shows an agent log with its inference calls.
	ViewInference
	// ViewContexts is the context tree browser.
	ViewContexts
	// ViewHistory lists recorded searches.
	ViewHistory
	// ViewSettings shows and toggles settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewLogs:
		return "logs"
	case ViewInference:
		return "inference"
	case ViewContexts:
		return "contexts"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// LogsLoaded carries log search results.
type LogsLoaded struct {
	Ticket  latest.Ticket
	Query   domain.LogQuery
	Records []domain.LogRecord
	Err     error
}

// LogsExported signals the current log list was written to a file.
type LogsExported struct {
	Path  string
	Count int
	Err   error
}

// LogSelected asks for the inference tree of an agent log.
type LogSelected struct {
	Record domain.LogRecord
}

// InferenceLoaded carries a correlated inference tree.
type InferenceLoaded struct {
	Ticket latest.Ticket
	Tree   *domain.InferenceTree
	Err    error
}

// ContextsLoaded carries an agent's context tree.
type ContextsLoaded struct {
	Ticket latest.Ticket
	Tree   *domain.ContextTree
	Err    error
}

// VersionsLoaded carries the version history of a prompt code.
type VersionsLoaded struct {
	Ticket     latest.Ticket
	PromptCode string
	Versions   []domain.VersionSummary
	Err        error
}

// HistoryLoaded carries recorded searches, newest first.
type HistoryLoaded struct {
	Entries []domain.HistoryEntry
	Err     error
}

// HistoryCleared signals the history was cleared.
type HistoryCleared struct {
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}

// ConfigReloaded signals the configuration file changed on disk.
type ConfigReloaded struct {
	Err error
}
