// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

// timeLayout renders creation times in the local zone.
const timeLayout = "2006-01-02 15:04:05"

// LogList displays log records in a navigable list.
type LogList struct {
	records  []domain.LogRecord
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewLogList creates a new log list component.
func NewLogList(s *styles.Styles) *LogList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &LogList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the log list.
func (l *LogList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *LogList) Update(msg tea.Msg) (*LogList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.records) > 0 {
				l.selected = len(l.records) - 1
			}
		}
	}
	return l, nil
}

// View renders the log list.
func (l *LogList) View() string {
	if len(l.records) == 0 {
		return l.styles.Muted.Render("No logs")
	}

	lines := make([]string, 0, len(l.records)*2+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Logs (%d)", len(l.records))), "")

	// Each record takes two lines.
	visibleCount := (l.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.records) {
		end = len(l.records)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderRecord(i, &l.records[i]))
	}

	return strings.Join(lines, "\n")
}

// renderRecord formats one record as a heading line and a content preview.
func (l *LogList) renderRecord(index int, rec *domain.LogRecord) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	created := "-"
	if t := rec.CreatedTime(); !t.Equal(domain.EpochZero) {
		created = t.Local().Format(timeLayout)
	}

	source := rec.Source
	if source == "" {
		source = "-"
	}
	heading := fmt.Sprintf("%s%s  %-16s  %s", indicator, created, source, services.AgentCodeOf(*rec))

	var headLine string
	if index == l.selected {
		headLine = l.styles.Selected.Render(heading)
	} else {
		headLine = l.styles.Normal.Render(fmt.Sprintf("%s%s  ", indicator, created)) +
			l.styles.Source(rec.Source).Render(fmt.Sprintf("%-16s", source)) +
			l.styles.Muted.Render("  "+services.AgentCodeOf(*rec))
	}

	previewWidth := l.width - 6
	if previewWidth < 20 {
		previewWidth = 20
	}
	preview := l.styles.Muted.Render("    " + services.Summary(rec.Content, previewWidth))

	return headLine + "\n" + preview
}

// SetRecords replaces the records and resets the selection.
func (l *LogList) SetRecords(records []domain.LogRecord) {
	l.records = records
	l.selected = 0
}

// Records returns the current records.
func (l *LogList) Records() []domain.LogRecord {
	return l.records
}

// Selected returns the index of the selected record.
func (l *LogList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *LogList) SetSelected(index int) {
	if index >= 0 && index < len(l.records) {
		l.selected = index
	}
}

// SelectedRecord returns the currently selected record, or nil if none.
func (l *LogList) SelectedRecord() *domain.LogRecord {
	if len(l.records) == 0 || l.selected < 0 || l.selected >= len(l.records) {
		return nil
	}
	return &l.records[l.selected]
}

// MoveUp moves selection up.
func (l *LogList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *LogList) MoveDown() {
	if l.selected < len(l.records)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *LogList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the current width.
func (l *LogList) Width() int {
	return l.width
}

// Height returns the current height.
func (l *LogList) Height() int {
	return l.height
}

// Count returns the number of records.
func (l *LogList) Count() int {
	return len(l.records)
}

// IsEmpty returns whether the list is empty.
func (l *LogList) IsEmpty() bool {
	return len(l.records) == 0
}
