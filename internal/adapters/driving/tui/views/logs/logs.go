// Package logs provides the log search view for the TUI.
package logs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
	"github.com/custodia-labs/agentops-cli/internal/latest"
)

// Form field positions.
const (
	fieldStart = iota
	fieldEnd
	fieldSource
)

// inputLayout is the format used to prefill and read the range fields.
const inputLayout = "2006-01-02 15:04:05"

// inputLayouts are accepted in local time besides RFC 3339 and "now".
var inputLayouts = []string{
	inputLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// View is the log search view: a range form, a result list and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	form      *input.Form
	list      *list.LogList
	statusbar *status.Bar

	logService driving.LogService
	tracker    *latest.Tracker
	ctx        context.Context
	now        func() time.Time
	exportDir  string

	query     domain.LogQuery
	searched  bool
	loading   bool
	focusForm bool
	err       error

	width  int
	height int
	ready  bool
}

// NewView creates a new log search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, logService driving.LogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	form := input.NewForm(
		input.NewField(s, "Start", "YYYY-MM-DD HH:MM:SS"),
		input.NewField(s, "End", "YYYY-MM-DD HH:MM:SS or now"),
		input.NewField(s, "Source", "agent, inference, contextdiscovery or empty for all"),
	)

	bar := status.NewBar(s, km)
	bar.SetNoun("logs")

	v := &View{
		styles:     s,
		keymap:     km,
		form:       form,
		list:       list.NewLogList(s),
		statusbar:  bar,
		logService: logService,
		tracker:    latest.New(),
		ctx:        context.Background(),
		now:        time.Now,
		exportDir:  ".",
		width:      80,
		height:     24,
	}
	v.Reset()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetExportDir sets the directory exports are written to.
func (v *View) SetExportDir(dir string) {
	v.exportDir = dir
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	if !v.focusForm {
		return nil
	}
	i := v.form.Focused()
	if i < 0 {
		i = fieldStart
	}
	return v.form.FocusIndex(i)
}

// Update handles messages for the logs view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.LogsLoaded:
		v.handleLogsLoaded(msg)
		return v, nil

	case messages.LogsExported:
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage("Export: " + services.UserMessage(msg.Err))
			return v, nil
		}
		v.statusbar.SetMessage(fmt.Sprintf("Exported %d logs to %s", msg.Count, msg.Path))
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Esc abandons any request in flight and goes back to the menu
	if msg.Type == tea.KeyEsc {
		v.tracker.Cancel()
		v.loading = false
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusForm {
		switch {
		case keymap.Matches(msg.String(), v.keymap.NextField):
			return v, v.form.Next()
		case keymap.Matches(msg.String(), v.keymap.PrevField):
			return v, v.form.Prev()
		case msg.Type == tea.KeyEnter:
			return v, v.submit()
		}
		return v, v.form.Update(msg)
	}

	switch msg.String() {
	case "enter":
		if rec := v.list.SelectedRecord(); rec != nil {
			selected := *rec
			return v, func() tea.Msg {
				return messages.LogSelected{Record: selected}
			}
		}
		return v, nil
	case "n", "/":
		v.focusForm = true
		return v, v.form.FocusIndex(fieldStart)
	case "r":
		if v.searched {
			return v, v.search(v.query)
		}
		return v, nil
	case "x":
		return v, v.export()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// submit validates the form and starts a search.
func (v *View) submit() tea.Cmd {
	q, err := v.parseForm()
	if err != nil {
		v.setError(err)
		return nil
	}
	return v.search(q)
}

// parseForm reads the range fields into a query.
func (v *View) parseForm() (domain.LogQuery, error) {
	fields := v.form.Fields()

	start, err := v.parseTime("start", fields[fieldStart].Value())
	if err != nil {
		return domain.LogQuery{}, err
	}
	end, err := v.parseTime("end", fields[fieldEnd].Value())
	if err != nil {
		return domain.LogQuery{}, err
	}

	q := domain.LogQuery{
		Start:  start,
		End:    end,
		Source: strings.ToLower(strings.TrimSpace(fields[fieldSource].Value())),
	}
	if err := q.Validate(); err != nil {
		return domain.LogQuery{}, err
	}
	return q, nil
}

func (v *View) parseTime(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidRange, name)
	}
	if strings.EqualFold(value, "now") {
		return v.now(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q is not a timestamp", domain.ErrInvalidInput, name, value)
}

// search starts a new generation and returns the command that runs it.
// Completions of older generations are dropped on arrival.
func (v *View) search(q domain.LogQuery) tea.Cmd {
	if v.logService == nil {
		v.setError(ErrNoLogService)
		return nil
	}

	ctx, ticket := v.tracker.Begin(v.ctx)
	v.query = q
	v.searched = true
	v.loading = true
	v.err = nil
	v.focusForm = false
	v.form.Blur()
	v.statusbar.SetState(status.StateLoading)
	v.statusbar.SetMessage("")

	svc := v.logService
	return func() tea.Msg {
		records, err := svc.Search(ctx, q)
		return messages.LogsLoaded{Ticket: ticket, Query: q, Records: records, Err: err}
	}
}

// handleLogsLoaded applies a completion if it belongs to the current generation.
func (v *View) handleLogsLoaded(msg messages.LogsLoaded) {
	if !v.tracker.Finish(msg.Ticket) {
		return
	}
	v.loading = false

	if msg.Err != nil {
		v.list.SetRecords(nil)
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetRecords(msg.Records)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(msg.Records))
}

// export writes the current results as CSV into the export directory.
func (v *View) export() tea.Cmd {
	records := v.list.Records()
	if len(records) == 0 {
		return func() tea.Msg {
			return messages.LogsExported{Err: ErrNothingToExport}
		}
	}

	path := filepath.Join(v.exportDir, services.ExportFileName(services.ExportCSV, v.now()))
	return func() tea.Msg {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return messages.LogsExported{Path: path, Err: err}
		}
		if err := services.ExportLogs(f, records, services.ExportCSV); err != nil {
			_ = f.Close()
			return messages.LogsExported{Path: path, Err: err}
		}
		if err := f.Close(); err != nil {
			return messages.LogsExported{Path: path, Err: err}
		}
		return messages.LogsExported{Path: path, Count: len(records)}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(services.UserMessage(err))
}

// View renders the logs view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Logs"), "")
	sections = append(sections, v.form.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+services.UserMessage(v.err)), "")
	}

	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Searching..."))
	case v.searched:
		sections = append(sections, v.list.View())
	default:
		sections = append(sections, v.styles.Help.Render(
			"[tab] Next field  [enter] Search  [esc] Back"))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.form.SetWidth(width)
	// Reserve space for header, three fields and the status bar
	v.list.SetDimensions(width, height-16)
	v.statusbar.SetWidth(width)
}

// Reset restores the form to today's range and clears results.
func (v *View) Reset() {
	v.tracker.Cancel()
	now := v.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	fields := v.form.Fields()
	fields[fieldStart].SetValue(midnight.Format(inputLayout))
	fields[fieldEnd].SetValue("now")
	fields[fieldSource].SetValue("")

	v.focusForm = true
	v.form.FocusIndex(fieldStart)
	v.list.SetRecords(nil)
	v.query = domain.LogQuery{}
	v.searched = false
	v.loading = false
	v.err = nil
	v.statusbar.Clear()
}

// Query returns the last submitted query.
func (v *View) Query() domain.LogQuery {
	return v.query
}

// Records returns the current results.
func (v *View) Records() []domain.LogRecord {
	return v.list.Records()
}

// SelectedRecord returns the highlighted record, or nil.
func (v *View) SelectedRecord() *domain.LogRecord {
	return v.list.SelectedRecord()
}

// FormFocused returns whether keystrokes go to the form.
func (v *View) FormFocused() bool {
	return v.focusForm
}

// Loading returns whether a search is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
