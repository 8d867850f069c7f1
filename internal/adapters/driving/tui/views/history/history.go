// Package history provides the query history view for the TUI.
package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

// DefaultLimit is the number of entries loaded.
const DefaultLimit = 50

// View lists recently executed queries.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	historyService driving.HistoryService
	ctx            context.Context

	entries []domain.HistoryEntry
	cursor  int
	loading bool
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a new history view. A nil service shows history as disabled.
func NewView(s *styles.Styles, km *keymap.KeyMap, historyService driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetNoun("entries")

	return &View{
		styles:         s,
		keymap:         km,
		statusbar:      bar,
		historyService: historyService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) enabled() bool {
	return v.historyService != nil && v.historyService.Enabled()
}

func (v *View) load() tea.Cmd {
	if !v.enabled() {
		return nil
	}
	v.loading = true
	v.statusbar.SetState(status.StateLoading)

	svc := v.historyService
	ctx := v.ctx
	return func() tea.Msg {
		entries, err := svc.List(ctx, DefaultLimit)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

func (v *View) clear() tea.Cmd {
	if !v.enabled() {
		return nil
	}
	svc := v.historyService
	ctx := v.ctx
	return func() tea.Msg {
		return messages.HistoryCleared{Err: svc.Clear(ctx)}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.HistoryLoaded:
		v.loading = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.entries = msg.Entries
		sort.SliceStable(v.entries, func(i, j int) bool {
			return v.entries[i].CreatedAt.After(v.entries[j].CreatedAt)
		})
		if v.cursor >= len(v.entries) {
			v.cursor = 0
		}
		v.statusbar.SetState(status.StateResults)
		v.statusbar.SetMessage("")
		v.statusbar.SetResultCount(len(v.entries))

	case messages.HistoryCleared:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.entries = nil
		v.cursor = 0
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("History cleared")

	case messages.ErrorOccurred:
		v.setError(msg.Err)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.entries)-1 {
				v.cursor++
			}
		case "r":
			return v, v.load()
		case "c":
			return v, v.clear()
		}
	}

	return v, nil
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(services.UserMessage(err))
}

// View renders the history view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("History"), ""}

	switch {
	case !v.enabled():
		sections = append(sections, v.styles.Muted.Render("Query history is disabled. Enable it in Settings."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+services.UserMessage(v.err)))
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case len(v.entries) == 0:
		sections = append(sections, v.styles.Muted.Render("No queries recorded"))
	default:
		sections = append(sections, v.renderEntries())
	}

	sections = append(sections, "", v.styles.Help.Render("r refresh • c clear • esc back"), v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderEntries() string {
	visible := v.height - 8
	if visible < 1 {
		visible = 1
	}
	start := 0
	if v.cursor >= visible {
		start = v.cursor - visible + 1
	}
	end := start + visible
	if end > len(v.entries) {
		end = len(v.entries)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		e := v.entries[i]
		outcome := fmt.Sprintf("%d results", e.ResultCount)
		style := v.styles.Normal
		if !e.Succeeded() {
			outcome = "failed: " + e.Error
			style = v.styles.Error
		}
		line := fmt.Sprintf("%s  %-17s %s  %s",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Kind, formatParams(e.Params), outcome)
		if i == v.cursor {
			style = v.styles.Selected
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

// formatParams renders params as sorted key=value pairs.
func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if params[k] == "" {
			continue
		}
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, " ")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Entries returns the loaded entries, newest first.
func (v *View) Entries() []domain.HistoryEntry {
	return v.entries
}

// Cursor returns the selected entry index.
func (v *View) Cursor() int {
	return v.cursor
}

// Loading returns whether entries are being loaded.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
