package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/views/contexts"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/views/inference"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/views/logs"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// menuView is the main navigation menu.
	menuView *menu.View

	// logsView searches logs.
	logsView *logs.View

	// inferenceView shows the inference calls of the selected agent log.
	inferenceView *inference.View

	// contextsView browses context trees.
	contextsView *contexts.View

	// historyView lists recorded queries.
	historyView *history.View

	// settingsView is the settings configuration view component.
	settingsView *settings.View

	// selectedLog is the agent log the inference view was opened for.
	selectedLog *domain.LogRecord

	// currentView tracks which view is active.
	currentView messages.ViewType

	// notice is a transient message shown above the active view.
	notice string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		menuView:      menu.NewView(s),
		logsView:      logs.NewView(s, km, ports.Logs),
		inferenceView: inference.NewView(s, km, ports.Inference),
		contextsView:  contexts.NewView(s, km, ports.Contexts),
		historyView:   history.NewView(s, km, ports.History),
		settingsView:  settings.NewView(s, ports.Settings),
		currentView:   messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.logsView.WithContext(ctx)
	a.inferenceView.WithContext(ctx)
	a.contextsView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("agentops"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		a.notice = ""

		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		// Initialise views when switching to them
		switch msg.View {
		case messages.ViewLogs:
			if a.selectedLog == nil {
				a.logsView.Reset()
				return a, a.logsView.Init()
			}
			// Returning from inference keeps the results.
			a.selectedLog = nil
		case messages.ViewContexts:
			return a, a.contextsView.Init()
		case messages.ViewHistory:
			return a, a.historyView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu:
			a.selectedLog = nil
		case messages.ViewInference, messages.ViewHelp:
			// No initialisation needed
		}
		return a, nil

	case messages.LogSelected:
		a.selectedLog = &msg.Record
		a.currentView = messages.ViewInference
		return a, a.inferenceView.SetParent(msg.Record)

	case messages.LogsLoaded, messages.LogsExported:
		a.logsView, cmd = a.logsView.Update(msg)
		return a, cmd

	case messages.InferenceLoaded:
		a.inferenceView, cmd = a.inferenceView.Update(msg)
		return a, cmd

	case messages.ContextsLoaded, messages.VersionsLoaded:
		a.contextsView, cmd = a.contextsView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded, messages.HistoryCleared:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ConfigReloaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.notice = "Config reload failed: " + services.UserMessage(msg.Err)
			return a, nil
		}
		a.err = nil
		a.notice = "Configuration reloaded"
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	return a, a.forward(msg)
}

// forward sends msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewLogs:
		a.logsView, cmd = a.logsView.Update(msg)
	case messages.ViewInference:
		a.inferenceView, cmd = a.inferenceView.Update(msg)
	case messages.ViewContexts:
		a.contextsView, cmd = a.contextsView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	body := a.viewBody()
	if a.notice != "" {
		return a.styles.Muted.Render(a.notice) + "\n" + body
	}
	return body
}

func (a *App) viewBody() string {
	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewLogs:
		return a.logsView.View()
	case messages.ViewInference:
		return a.inferenceView.View()
	case messages.ViewContexts:
		return a.contextsView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Logs:
  tab         Next field (start, end, source)
  enter       Search / open inference calls
  n           New search
  r           Re-run search
  x           Export results as CSV

Inference and contexts:
  j/k, ↑/↓    Move
  space       Expand or collapse
  e / c       Expand all / collapse all
  enter       Show content
  v           Version history (contexts)

History:
  r           Refresh
  c           Clear

[esc] back to menu`
}

// Program builds the Bubbletea program for the app. Callers may Send
// messages such as messages.ConfigReloaded to it while it runs.
func (a *App) Program(opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(a.ctx)}, opts...)
	return tea.NewProgram(a, opts...)
}

// Run starts the TUI application.
func (a *App) Run() error {
	_, err := a.Program().Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SelectedLog returns the agent log whose inference calls are shown, or nil.
func (a *App) SelectedLog() *domain.LogRecord {
	return a.selectedLog
}

// Notice returns the transient status message.
func (a *App) Notice() string {
	return a.notice
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.logsView.SetDimensions(width, height)
	a.inferenceView.SetDimensions(width, height)
	a.contextsView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
