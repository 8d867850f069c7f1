package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// MockHistoryService implements driving.HistoryService for testing.
type MockHistoryService struct {
	Entries  []domain.HistoryEntry
	ListErr  error
	ClearErr error
	Disabled bool
	Limits   []int
	Cleared  int
}

func (m *MockHistoryService) List(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.Limits = append(m.Limits, limit)
	return m.Entries, m.ListErr
}

func (m *MockHistoryService) Clear(_ context.Context) error {
	m.Cleared++
	if m.ClearErr == nil {
		m.Entries = nil
	}
	return m.ClearErr
}

func (m *MockHistoryService) Enabled() bool {
	return !m.Disabled
}

func testEntries() []domain.HistoryEntry {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []domain.HistoryEntry{
		{ID: "1", Kind: domain.HistoryLogSearch, Params: map[string]string{"source": "agent"}, ResultCount: 3, CreatedAt: base},
		{ID: "2", Kind: domain.HistoryContextTree, Params: map[string]string{"agent_code": "AG1"}, Error: "backend unavailable",
			CreatedAt: base.Add(time.Minute)},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedView(t *testing.T, svc *MockHistoryService) *View {
	t.Helper()
	view := NewView(nil, nil, svc)
	view.SetDimensions(120, 30)
	cmd := view.Init()
	require.NotNil(t, cmd)
	view.Update(cmd())
	return view
}

func TestView_Init_LoadsNewestFirst(t *testing.T) {
	svc := &MockHistoryService{Entries: testEntries()}
	view := loadedView(t, svc)

	assert.Equal(t, []int{DefaultLimit}, svc.Limits)
	require.Len(t, view.Entries(), 2)
	assert.Equal(t, "2", view.Entries()[0].ID)

	out := view.View()
	assert.Contains(t, out, "context_tree")
	assert.Contains(t, out, "agent_code=AG1")
	assert.Contains(t, out, "failed: backend unavailable")
	assert.Contains(t, out, "3 results")
}

func TestView_Disabled(t *testing.T) {
	view := NewView(nil, nil, &MockHistoryService{Disabled: true})
	view.SetDimensions(80, 24)

	assert.Nil(t, view.Init())
	assert.Contains(t, view.View(), "disabled")
}

func TestView_NilService(t *testing.T) {
	view := NewView(nil, nil, nil)

	assert.Equal(t, "Initialising...", view.View())
	assert.Nil(t, view.Init())

	_, cmd := view.Update(key("c"))
	assert.Nil(t, cmd)
}

func TestView_Clear(t *testing.T) {
	svc := &MockHistoryService{Entries: testEntries()}
	view := loadedView(t, svc)

	_, cmd := view.Update(key("c"))
	require.NotNil(t, cmd)
	view.Update(cmd())

	assert.Equal(t, 1, svc.Cleared)
	assert.Empty(t, view.Entries())
	assert.Contains(t, view.View(), "No queries recorded")
}

func TestView_ClearError(t *testing.T) {
	svc := &MockHistoryService{Entries: testEntries(), ClearErr: errors.New("disk full")}
	view := loadedView(t, svc)

	_, cmd := view.Update(key("c"))
	view.Update(cmd())

	assert.EqualError(t, view.Err(), "disk full")
	assert.Len(t, view.Entries(), 2)
}

func TestView_ListError(t *testing.T) {
	view := loadedView(t, &MockHistoryService{ListErr: errors.New("locked")})

	assert.EqualError(t, view.Err(), "locked")
	assert.Contains(t, view.View(), "Error:")
}

func TestView_Refresh(t *testing.T) {
	svc := &MockHistoryService{Entries: testEntries()}
	view := loadedView(t, svc)

	_, cmd := view.Update(key("r"))
	require.NotNil(t, cmd)
	assert.True(t, view.Loading())
	view.Update(cmd())

	assert.Len(t, svc.Limits, 2)
	assert.False(t, view.Loading())
}

func TestView_Navigation(t *testing.T) {
	view := loadedView(t, &MockHistoryService{Entries: testEntries()})

	view.Update(key("down"))
	assert.Equal(t, 1, view.Cursor())
	view.Update(key("down"))
	assert.Equal(t, 1, view.Cursor())
	view.Update(key("k"))
	assert.Equal(t, 0, view.Cursor())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	view := loadedView(t, &MockHistoryService{})

	_, cmd := view.Update(key("esc"))

	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, msg.View)
}

func TestFormatParams(t *testing.T) {
	got := formatParams(map[string]string{"start": "a", "end": "b", "source": ""})

	assert.Equal(t, "end=b start=a", got)
}
