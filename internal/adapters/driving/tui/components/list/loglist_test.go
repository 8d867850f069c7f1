package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

func sampleRecords() []domain.LogRecord {
	return []domain.LogRecord{
		{
			ID:        "1",
			Source:    "agent",
			RequestID: "req-1",
			CreatedOn: "2024-05-01T10:00:00Z",
			Content:   domain.ObjectContent(map[string]any{"agent_code": "billing-bot"}),
		},
		{
			ID:        "2",
			Source:    "inference",
			RequestID: "req-1",
			CreatedOn: "2024-05-01T10:00:01Z",
			Content:   domain.ItemsContent([]domain.IterationItem{{Iteration: 1, Request: "hello"}}),
		},
		{
			ID:      "3",
			Source:  "contextdiscovery",
			Content: domain.TextContent("plain text payload"),
		},
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewLogList(t *testing.T) {
	list := NewLogList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.SelectedRecord())
}

func TestNewLogList_NilStyles(t *testing.T) {
	list := NewLogList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
	assert.Nil(t, list.Init())
}

func TestLogList_SetRecords_ResetsSelection(t *testing.T) {
	list := NewLogList(nil)
	list.SetRecords(sampleRecords())
	list.SetSelected(2)

	list.SetRecords(sampleRecords()[:2])

	assert.Equal(t, 2, list.Count())
	assert.Equal(t, 0, list.Selected())
}

func TestLogList_Navigation(t *testing.T) {
	list := NewLogList(nil)
	list.SetRecords(sampleRecords())

	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, list.Selected())

	list.Update(keyRune('j'))
	assert.Equal(t, 2, list.Selected())

	// Stops at the last record
	list.Update(keyRune('j'))
	assert.Equal(t, 2, list.Selected())

	list.Update(keyRune('k'))
	assert.Equal(t, 1, list.Selected())

	list.Update(keyRune('g'))
	assert.Equal(t, 0, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, list.Selected())

	list.Update(keyRune('G'))
	assert.Equal(t, 2, list.Selected())
}

func TestLogList_SetSelected_OutOfRange(t *testing.T) {
	list := NewLogList(nil)
	list.SetRecords(sampleRecords())

	list.SetSelected(5)
	assert.Equal(t, 0, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestLogList_SelectedRecord(t *testing.T) {
	list := NewLogList(nil)
	list.SetRecords(sampleRecords())
	list.MoveDown()

	rec := list.SelectedRecord()

	require.NotNil(t, rec)
	assert.Equal(t, "2", rec.ID)
}

func TestLogList_View_Empty(t *testing.T) {
	list := NewLogList(nil)

	assert.Contains(t, list.View(), "No logs")
}

func TestLogList_View_RendersRecords(t *testing.T) {
	list := NewLogList(nil)
	list.SetDimensions(120, 20)
	list.SetRecords(sampleRecords())

	view := list.View()

	assert.Contains(t, view, "Logs (3)")
	assert.Contains(t, view, "billing-bot")
	assert.Contains(t, view, "1 iterations: hello")
	assert.Contains(t, view, "plain text payload")
	assert.Contains(t, view, "contextdiscovery")
}

func TestLogList_View_ScrollsToSelection(t *testing.T) {
	list := NewLogList(nil)
	list.SetDimensions(120, 4) // Room for a single record
	list.SetRecords(sampleRecords())
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "plain text payload")
	assert.NotContains(t, view, "billing-bot")
}

func TestLogList_Dimensions(t *testing.T) {
	list := NewLogList(nil)

	assert.Equal(t, 80, list.Width())
	assert.Equal(t, 10, list.Height())

	list.SetDimensions(100, 30)

	assert.Equal(t, 100, list.Width())
	assert.Equal(t, 30, list.Height())
}
