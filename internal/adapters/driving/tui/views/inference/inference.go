// Package inference provides the inference tree view for the TUI.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
	"github.com/custodia-labs/agentops-cli/internal/latest"
)

// ErrNoInferenceService indicates that no inference service was provided.
var ErrNoInferenceService = errors.New("inference service is required")

const timeLayout = "2006-01-02 15:04:05"

// View shows an agent log with its correlated inference calls.
// Row 0 is the parent; rows 1..n are the children, oldest first.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	detail    viewport.Model

	inferenceService driving.InferenceService
	tracker          *latest.Tracker
	ctx              context.Context

	parent     *domain.LogRecord
	tree       *domain.InferenceTree
	cursor     int
	collapsed  bool
	showDetail bool
	loading    bool
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a new inference view.
func NewView(s *styles.Styles, km *keymap.KeyMap, inferenceService driving.InferenceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetNoun("inference calls")

	return &View{
		styles:           s,
		keymap:           km,
		statusbar:        bar,
		detail:           viewport.New(80, 10),
		inferenceService: inferenceService,
		tracker:          latest.New(),
		ctx:              context.Background(),
		width:            80,
		height:           24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetParent resets the view to parent and starts loading its tree.
func (v *View) SetParent(parent domain.LogRecord) tea.Cmd {
	v.parent = &parent
	v.tree = nil
	v.cursor = 0
	v.collapsed = false
	v.showDetail = false
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetHints(nil)
	return v.load()
}

// load starts a new generation for the current parent.
func (v *View) load() tea.Cmd {
	if v.parent == nil {
		return nil
	}
	if v.inferenceService == nil {
		v.setError(ErrNoInferenceService)
		return nil
	}

	ctx, ticket := v.tracker.Begin(v.ctx)
	v.loading = true
	v.statusbar.SetState(status.StateLoading)

	svc := v.inferenceService
	parent := *v.parent
	return func() tea.Msg {
		tree, err := svc.TreeFor(ctx, parent)
		return messages.InferenceLoaded{Ticket: ticket, Tree: tree, Err: err}
	}
}

// Update handles messages for the inference view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.InferenceLoaded:
		v.handleLoaded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleLoaded(msg messages.InferenceLoaded) {
	if !v.tracker.Finish(msg.Ticket) {
		return
	}
	v.loading = false

	if msg.Err != nil {
		v.tree = nil
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.tree = msg.Tree
	v.cursor = 0
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	if msg.Tree != nil {
		v.statusbar.SetResultCount(len(msg.Tree.Inference))
	}
	v.statusbar.SetHints(v.keymap.TreeHelp())
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.showDetail {
		switch msg.String() {
		case "esc", "enter", "q":
			v.showDetail = false
			return v, nil
		}
		var cmd tea.Cmd
		v.detail, cmd = v.detail.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "esc":
		v.tracker.Cancel()
		v.loading = false
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewLogs}
		}
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < v.rowCount()-1 {
			v.cursor++
		}
	case " ":
		v.collapsed = !v.collapsed
		if v.collapsed {
			v.cursor = 0
		}
	case "e":
		v.collapsed = false
	case "c":
		v.collapsed = true
		v.cursor = 0
	case "enter":
		if rec := v.SelectedRecord(); rec != nil {
			v.openDetail(rec)
		}
	case "r":
		return v, v.load()
	}
	return v, nil
}

// rowCount returns the number of visible rows.
func (v *View) rowCount() int {
	if v.tree == nil {
		return 0
	}
	if v.collapsed {
		return 1
	}
	return 1 + len(v.tree.Inference)
}

// SelectedRecord returns the record under the cursor, or nil before the tree loads.
func (v *View) SelectedRecord() *domain.LogRecord {
	if v.tree == nil {
		return nil
	}
	if v.cursor == 0 {
		return &v.tree.Agent
	}
	i := v.cursor - 1
	if i < 0 || i >= len(v.tree.Inference) {
		return nil
	}
	return &v.tree.Inference[i]
}

func (v *View) openDetail(rec *domain.LogRecord) {
	header := fmt.Sprintf("%s  %s  %s\n\n", rec.Source, displayTime(rec), orDash(rec.ID))
	v.detail.SetContent(header + services.FormatContent(rec.Content))
	v.detail.GotoTop()
	v.showDetail = true
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(services.UserMessage(err))
}

// View renders the inference view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	title := "Inference"
	if v.parent != nil && v.parent.RequestID != "" {
		title += "  " + v.styles.Muted.Render("request "+v.parent.RequestID)
	}
	sections = append(sections, v.styles.Title.Render(title), "")

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+services.UserMessage(v.err)))
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading inference calls..."))
	case v.tree == nil:
		sections = append(sections, v.styles.Muted.Render("Select an agent log to view its inference calls."))
	case v.showDetail:
		sections = append(sections, v.styles.Detail.Render(v.detail.View()))
	default:
		sections = append(sections, v.renderTree())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTree() string {
	t := v.tree
	marker := "▾"
	if v.collapsed {
		marker = "▸"
	}

	lines := make([]string, 0, 2+len(t.Inference))
	parent := fmt.Sprintf("%s %s  %s  %s (%d)", marker, displayTime(&t.Agent),
		t.Source, t.AgentCode, len(t.Inference))
	lines = append(lines, v.renderRow(0, parent))

	if !v.collapsed {
		if t.IsEmpty() {
			lines = append(lines, v.styles.Muted.Render("    No inference calls found in the correlation window."))
		}
		width := v.width - 40
		if width < 20 {
			width = 20
		}
		for i := range t.Inference {
			guide := "├── "
			if i == len(t.Inference)-1 {
				guide = "└── "
			}
			rec := &t.Inference[i]
			row := fmt.Sprintf("%s  %s", displayTime(rec), services.Summary(rec.Content, width))
			lines = append(lines, "  "+v.styles.TreeGuide.Render(guide)+v.renderRow(i+1, row))
		}
	}

	return strings.Join(lines, "\n")
}

func (v *View) renderRow(index int, text string) string {
	if index == v.cursor {
		return v.styles.Selected.Render(text)
	}
	return v.styles.Normal.Render(text)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.detail.Width = width - 4
	v.detail.Height = height - 8
	if v.detail.Height < 3 {
		v.detail.Height = 3
	}
	v.statusbar.SetWidth(width)
}

// Tree returns the loaded tree, or nil.
func (v *View) Tree() *domain.InferenceTree {
	return v.tree
}

// Cursor returns the selected row index.
func (v *View) Cursor() int {
	return v.cursor
}

// Collapsed returns whether the children are hidden.
func (v *View) Collapsed() bool {
	return v.collapsed
}

// DetailVisible returns whether the formatted content pane is shown.
func (v *View) DetailVisible() bool {
	return v.showDetail
}

// Loading returns whether a tree is being loaded.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

func displayTime(rec *domain.LogRecord) string {
	t := rec.CreatedTime()
	if t.Equal(domain.EpochZero) {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
