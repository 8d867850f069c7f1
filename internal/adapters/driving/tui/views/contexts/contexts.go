// Package contexts provides the context tree browser for the TUI.
package contexts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
	"github.com/custodia-labs/agentops-cli/internal/latest"
)

// Errors returned by the contexts view.
var (
	ErrNoContextService = errors.New("context service is required")
	ErrNoAgentCode      = errors.New("agent code is required")
)

// Form field indices.
const (
	fieldAgent = iota
	fieldVersion
)

// pane selects what is drawn below the title.
type pane int

const (
	paneTree pane = iota
	paneDetail
	paneVersions
)

// row is one visible line of the tree: a group node, or a context under
// an expanded version node.
type row struct {
	path    domain.NodePath
	context *domain.Context
}

// View browses an agent's contexts grouped by intent, type and version.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	form      *input.Form
	statusbar *status.Bar
	detail    viewport.Model

	contextService  driving.ContextService
	treeTracker     *latest.Tracker
	versionsTracker *latest.Tracker
	ctx             context.Context

	tree      *domain.ContextTree
	state     *domain.ViewState
	rows      []row
	cursor    int
	pane      pane
	versions  []domain.VersionSummary
	prompt    string
	focusForm bool
	err       error

	width  int
	height int
	ready  bool
}

// NewView creates a new contexts view.
func NewView(s *styles.Styles, km *keymap.KeyMap, contextService driving.ContextService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	form := input.NewForm(
		input.NewField(s, "Agent code", "e.g. AGENT_001"),
		input.NewField(s, "Version", "all versions"),
	)

	bar := status.NewBar(s, km)
	bar.SetNoun("contexts")

	return &View{
		styles:          s,
		keymap:          km,
		form:            form,
		statusbar:       bar,
		detail:          viewport.New(80, 10),
		contextService:  contextService,
		treeTracker:     latest.New(),
		versionsTracker: latest.New(),
		ctx:             context.Background(),
		state:           domain.NewViewState(),
		focusForm:       true,
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	if !v.focusForm {
		return nil
	}
	i := v.form.Focused()
	if i < 0 {
		i = fieldAgent
	}
	return v.form.FocusIndex(i)
}

// Update handles messages for the contexts view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ContextsLoaded:
		v.handleContextsLoaded(msg)
		return v, nil

	case messages.VersionsLoaded:
		v.handleVersionsLoaded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	if v.focusForm {
		return v, v.form.Update(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.pane != paneTree {
			v.pane = paneTree
			return v, nil
		}
		v.cancelLoads()
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusForm {
		return v.handleFormKey(msg)
	}
	if v.pane != paneTree {
		var cmd tea.Cmd
		v.detail, cmd = v.detail.Update(msg)
		return v, cmd
	}
	return v.handleTreeKey(msg)
}

func (v *View) handleFormKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return v, v.form.Next()
	case "shift+tab", "up":
		return v, v.form.Prev()
	case "enter":
		return v, v.submit()
	}
	return v, v.form.Update(msg)
}

func (v *View) handleTreeKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.rows)-1 {
			v.cursor++
		}
	case " ":
		v.toggleSelected()
	case "enter":
		if r, ok := v.selectedRow(); ok {
			if r.context != nil {
				v.openDetail(r.context)
			} else {
				v.toggleSelected()
			}
		}
	case "e":
		if v.tree != nil {
			v.state.ExpandAll(*v.tree)
			v.rebuildRows()
		}
	case "c":
		v.state.Reset()
		v.cursor = 0
		v.rebuildRows()
	case "v":
		if r, ok := v.selectedRow(); ok && r.context != nil {
			return v, v.loadVersions(r.context.PromptCode)
		}
	case "r":
		return v, v.submit()
	case "n", "/":
		v.focusForm = true
		return v, v.form.FocusIndex(fieldAgent)
	}
	return v, nil
}

// submit validates the form and loads the tree.
func (v *View) submit() tea.Cmd {
	fields := v.form.Fields()
	agent := strings.TrimSpace(fields[fieldAgent].Value())
	version := strings.TrimSpace(fields[fieldVersion].Value())

	if agent == "" {
		v.setError(ErrNoAgentCode)
		return nil
	}
	if v.contextService == nil {
		v.setError(ErrNoContextService)
		return nil
	}

	ctx, ticket := v.treeTracker.Begin(v.ctx)
	v.err = nil
	v.pane = paneTree
	v.focusForm = false
	v.form.Blur()
	v.statusbar.SetState(status.StateLoading)
	v.statusbar.SetMessage("")

	svc := v.contextService
	return func() tea.Msg {
		tree, err := svc.Tree(ctx, agent, version)
		return messages.ContextsLoaded{Ticket: ticket, Tree: tree, Err: err}
	}
}

func (v *View) handleContextsLoaded(msg messages.ContextsLoaded) {
	if !v.treeTracker.Finish(msg.Ticket) {
		return
	}

	if msg.Err != nil {
		v.tree = nil
		v.rows = nil
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.tree = msg.Tree
	v.state.Reset()
	v.cursor = 0
	v.rebuildRows()

	count := 0
	if msg.Tree != nil {
		count = msg.Tree.Len()
	}
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(count)
	v.statusbar.SetHints(v.keymap.TreeHelp())
}

func (v *View) loadVersions(promptCode string) tea.Cmd {
	if v.contextService == nil {
		v.setError(ErrNoContextService)
		return nil
	}

	ctx, ticket := v.versionsTracker.Begin(v.ctx)
	v.prompt = promptCode
	v.statusbar.SetState(status.StateLoading)

	svc := v.contextService
	return func() tea.Msg {
		versions, err := svc.Versions(ctx, promptCode)
		return messages.VersionsLoaded{Ticket: ticket, PromptCode: promptCode, Versions: versions, Err: err}
	}
}

func (v *View) handleVersionsLoaded(msg messages.VersionsLoaded) {
	if !v.versionsTracker.Finish(msg.Ticket) {
		return
	}

	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.versions = msg.Versions
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage(fmt.Sprintf("%d versions of %s", len(msg.Versions), msg.PromptCode))
	v.detail.SetContent(renderVersions(msg.PromptCode, msg.Versions))
	v.detail.GotoTop()
	v.pane = paneVersions
}

// rebuildRows flattens the visible part of the tree.
func (v *View) rebuildRows() {
	v.rows = v.rows[:0]
	if v.tree == nil {
		v.cursor = 0
		return
	}
	for _, p := range v.state.Visible(*v.tree) {
		v.rows = append(v.rows, row{path: p})
		if p.Level() != domain.LevelVersion || !v.state.IsExpanded(p) {
			continue
		}
		bucket, ok := v.tree.Bucket(p)
		if !ok {
			continue
		}
		for i := range bucket.Contexts {
			v.rows = append(v.rows, row{path: p, context: &bucket.Contexts[i]})
		}
	}
	if v.cursor >= len(v.rows) {
		v.cursor = len(v.rows) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *View) selectedRow() (row, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return row{}, false
	}
	return v.rows[v.cursor], true
}

// toggleSelected flips the group under the cursor. On a context row it
// collapses the enclosing version.
func (v *View) toggleSelected() {
	r, ok := v.selectedRow()
	if !ok {
		return
	}
	if r.context != nil {
		v.state.Collapse(r.path)
	} else {
		v.state.Toggle(r.path)
	}
	v.rebuildRows()
	v.focusPath(r.path)
}

// focusPath moves the cursor to the group row for p.
func (v *View) focusPath(p domain.NodePath) {
	for i, r := range v.rows {
		if r.context == nil && r.path == p {
			v.cursor = i
			return
		}
	}
}

func (v *View) openDetail(c *domain.Context) {
	v.detail.SetContent(renderContext(c))
	v.detail.GotoTop()
	v.pane = paneDetail
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(services.UserMessage(err))
}

// View renders the contexts view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	title := "Contexts"
	if v.tree != nil && v.tree.AgentCode != "" {
		title += "  " + v.styles.Muted.Render(v.tree.AgentCode)
	}
	sections = append(sections, v.styles.Title.Render(title), "")

	if v.focusForm {
		sections = append(sections, v.form.View(), "")
	}

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+services.UserMessage(v.err)))
	case v.Loading():
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case v.pane != paneTree:
		sections = append(sections, v.styles.Detail.Render(v.detail.View()))
	case v.tree == nil:
		if !v.focusForm {
			sections = append(sections, v.styles.Muted.Render("Press n to enter an agent code."))
		}
	case len(v.rows) == 0:
		sections = append(sections, v.styles.Muted.Render("No contexts found"))
	default:
		sections = append(sections, v.renderRows())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderRows() string {
	visible := v.height - 8
	if visible < 1 {
		visible = 1
	}
	start := 0
	if v.cursor >= visible {
		start = v.cursor - visible + 1
	}
	end := start + visible
	if end > len(v.rows) {
		end = len(v.rows)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, v.renderRow(i, v.rows[i]))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderRow(index int, r row) string {
	var text string
	if r.context != nil {
		indent := strings.Repeat("  ", int(domain.LevelVersion))
		flags := ""
		if r.context.Latest {
			flags += " [latest]"
		}
		if r.context.Default {
			flags += " [default]"
		}
		text = indent + v.styles.TreeGuide.Render("• ") + r.context.PromptCode + flags
	} else {
		indent := strings.Repeat("  ", int(r.path.Level())-1)
		marker := "▸ "
		if v.state.IsExpanded(r.path) {
			marker = "▾ "
		}
		text = indent + v.styles.TreeGuide.Render(marker) + r.path.Name() + v.styles.Muted.Render(v.countLabel(r.path))
	}

	if index == v.cursor {
		return v.styles.Selected.Render(text)
	}
	return v.styles.Normal.Render(text)
}

// countLabel shows the number of contexts in a version bucket.
func (v *View) countLabel(p domain.NodePath) string {
	if p.Level() != domain.LevelVersion {
		return ""
	}
	bucket, ok := v.tree.Bucket(p)
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (%d)", len(bucket.Contexts))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.form.SetWidth(width - 4)
	v.detail.Width = width - 4
	v.detail.Height = height - 8
	if v.detail.Height < 3 {
		v.detail.Height = 3
	}
	v.statusbar.SetWidth(width)
}

// Reset clears the loaded tree and focuses the form.
func (v *View) Reset() {
	v.cancelLoads()
	v.tree = nil
	v.rows = nil
	v.cursor = 0
	v.pane = paneTree
	v.versions = nil
	v.err = nil
	v.state.Reset()
	v.focusForm = true
	v.statusbar.Clear()
	v.statusbar.SetHints(nil)
}

// Tree returns the loaded tree, or nil.
func (v *View) Tree() *domain.ContextTree {
	return v.tree
}

// RowCount returns the number of visible rows.
func (v *View) RowCount() int {
	return len(v.rows)
}

// Cursor returns the selected row index.
func (v *View) Cursor() int {
	return v.cursor
}

// SelectedContext returns the context under the cursor, or nil on a group row.
func (v *View) SelectedContext() *domain.Context {
	r, ok := v.selectedRow()
	if !ok {
		return nil
	}
	return r.context
}

// Versions returns the last loaded version history.
func (v *View) Versions() []domain.VersionSummary {
	return v.versions
}

// FormFocused returns whether the query form has focus.
func (v *View) FormFocused() bool {
	return v.focusForm
}

// DetailVisible returns whether the detail or versions pane is shown.
func (v *View) DetailVisible() bool {
	return v.pane != paneTree
}

// Loading returns whether a tree or versions request is in flight.
func (v *View) Loading() bool {
	return v.treeTracker.Pending() || v.versionsTracker.Pending()
}

// cancelLoads abandons both in-flight requests.
func (v *View) cancelLoads() {
	v.treeTracker.Cancel()
	v.versionsTracker.Cancel()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

func renderContext(c *domain.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prompt:    %s\n", c.PromptCode)
	if c.ParentPromptCode != "" {
		fmt.Fprintf(&b, "Parent:    %s\n", c.ParentPromptCode)
	}
	fmt.Fprintf(&b, "Intent:    %s\n", orDash(c.Intent))
	fmt.Fprintf(&b, "Type:      %s\n", orDash(c.Type))
	fmt.Fprintf(&b, "Version:   %s (%s)\n", orDash(c.VersionID), orDash(c.ContextVersion))
	fmt.Fprintf(&b, "Default:   %t  Latest: %t\n", c.Default, c.Latest)
	fmt.Fprintf(&b, "Modified:  %s by %s\n", orDash(c.ModifiedOn), orDash(c.ModifiedBy))
	for _, e := range c.Entity {
		fmt.Fprintf(&b, "Entity:    %s=%s\n", e.Key, e.Value)
	}
	b.WriteString("\n")
	b.WriteString(c.Content)
	return b.String()
}

func renderVersions(promptCode string, versions []domain.VersionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Versions of %s\n\n", promptCode)
	if len(versions) == 0 {
		b.WriteString("No versions found")
		return b.String()
	}
	for _, s := range versions {
		fmt.Fprintf(&b, "%-12s %3d  %-25s %s\n", s.Version, s.Count, orDash(s.ModifiedOn), orDash(s.ModifiedBy))
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
