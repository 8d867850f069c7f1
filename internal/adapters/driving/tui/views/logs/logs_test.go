package logs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// MockLogService implements driving.LogService for testing.
type MockLogService struct {
	SearchFunc func(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error)
	Queries    []domain.LogQuery
}

func (m *MockLogService) Search(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error) {
	m.Queries = append(m.Queries, q)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return nil, nil
}

var fixedNow = time.Date(2024, 5, 1, 15, 30, 0, 0, time.Local)

func testRecords() []domain.LogRecord {
	return []domain.LogRecord{
		{ID: "a1", Source: "agent", RequestID: "req-1", CreatedOn: "2024-05-01T10:00:00Z"},
		{ID: "i1", Source: "inference", RequestID: "req-1", CreatedOn: "2024-05-01T10:00:01Z"},
	}
}

func newTestView(svc *MockLogService) *View {
	view := NewView(nil, nil, svc)
	view.now = func() time.Time { return fixedNow }
	view.Reset()
	view.SetDimensions(100, 40)
	return view
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into the view.
func run(t *testing.T, view *View, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	view.Update(msg)
	return msg
}

func TestNewView_Defaults(t *testing.T) {
	view := newTestView(&MockLogService{})

	assert.True(t, view.FormFocused())
	assert.False(t, view.Loading())
	fields := view.form.Fields()
	assert.Equal(t, "2024-05-01 00:00:00", fields[fieldStart].Value())
	assert.Equal(t, "now", fields[fieldEnd].Value())
	assert.Equal(t, "", fields[fieldSource].Value())
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keymap)
	assert.NotNil(t, view.Init())
}

func TestView_Submit_LoadsRecords(t *testing.T) {
	svc := &MockLogService{
		SearchFunc: func(_ context.Context, _ domain.LogQuery) ([]domain.LogRecord, error) {
			return testRecords(), nil
		},
	}
	view := newTestView(svc)

	_, cmd := view.Update(key("enter"))
	assert.True(t, view.Loading())
	assert.False(t, view.FormFocused())
	run(t, view, cmd)

	require.Len(t, svc.Queries, 1)
	q := svc.Queries[0]
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), q.Start)
	assert.Equal(t, fixedNow, q.End)
	assert.Equal(t, "", q.Source)

	assert.False(t, view.Loading())
	assert.NoError(t, view.Err())
	assert.Len(t, view.Records(), 2)
	assert.Contains(t, view.View(), "Logs (2)")
}

func TestView_Submit_SourceIsNormalised(t *testing.T) {
	svc := &MockLogService{}
	view := newTestView(svc)
	view.form.Fields()[fieldSource].SetValue("  Inference ")

	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)

	require.Len(t, svc.Queries, 1)
	assert.Equal(t, "inference", svc.Queries[0].Source)
}

func TestView_Submit_InvalidRange(t *testing.T) {
	svc := &MockLogService{}
	view := newTestView(svc)
	view.form.Fields()[fieldStart].SetValue("2024-05-02")
	view.form.Fields()[fieldEnd].SetValue("2024-05-01")

	_, cmd := view.Update(key("enter"))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, view.Err(), domain.ErrInvalidRange)
	assert.Empty(t, svc.Queries)
	assert.True(t, view.FormFocused())
}

func TestView_Submit_UnparseableTime(t *testing.T) {
	view := newTestView(&MockLogService{})
	view.form.Fields()[fieldStart].SetValue("yesterday")

	_, cmd := view.Update(key("enter"))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, view.Err(), domain.ErrInvalidInput)
}

func TestView_Submit_AcceptsRFC3339(t *testing.T) {
	svc := &MockLogService{}
	view := newTestView(svc)
	view.form.Fields()[fieldStart].SetValue("2024-05-01T08:00:00Z")
	view.form.Fields()[fieldEnd].SetValue("2024-05-01T09:00:00Z")

	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)

	require.Len(t, svc.Queries, 1)
	assert.True(t, svc.Queries[0].Start.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
}

func TestView_SearchError(t *testing.T) {
	svc := &MockLogService{
		SearchFunc: func(_ context.Context, _ domain.LogQuery) ([]domain.LogRecord, error) {
			return nil, domain.ErrBackendUnavailable
		},
	}
	view := newTestView(svc)

	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)

	assert.ErrorIs(t, view.Err(), domain.ErrBackendUnavailable)
	assert.Empty(t, view.Records())
	assert.Contains(t, view.View(), "Backend unreachable")
}

func TestView_StaleCompletionIsDropped(t *testing.T) {
	calls := 0
	svc := &MockLogService{
		SearchFunc: func(_ context.Context, _ domain.LogQuery) ([]domain.LogRecord, error) {
			calls++
			if calls == 1 {
				return testRecords(), nil
			}
			return testRecords()[:1], nil
		},
	}
	view := newTestView(svc)

	_, first := view.Update(key("enter"))
	_, second := view.Update(key("r"))
	require.NotNil(t, first)
	require.NotNil(t, second)

	// The newer search completes first
	view.Update(second())
	assert.Len(t, view.Records(), 1)

	// The superseded one arrives late and must not overwrite
	view.Update(first())
	assert.Len(t, view.Records(), 1)
}

func TestView_SupersededSearchContextIsCancelled(t *testing.T) {
	var firstCtx context.Context
	svc := &MockLogService{
		SearchFunc: func(ctx context.Context, _ domain.LogQuery) ([]domain.LogRecord, error) {
			if firstCtx == nil {
				firstCtx = ctx
			}
			return nil, ctx.Err()
		},
	}
	view := newTestView(svc)

	_, first := view.Update(key("enter"))
	_, _ = view.Update(key("r"))
	first()

	require.NotNil(t, firstCtx)
	assert.ErrorIs(t, firstCtx.Err(), context.Canceled)
}

func TestView_EnterOnResultSelectsLog(t *testing.T) {
	svc := &MockLogService{
		SearchFunc: func(_ context.Context, _ domain.LogQuery) ([]domain.LogRecord, error) {
			return testRecords(), nil
		},
	}
	view := newTestView(svc)
	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)

	view.Update(key("down"))
	_, cmd = view.Update(key("enter"))

	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.LogSelected)
	require.True(t, ok)
	assert.Equal(t, "i1", selected.Record.ID)
}

func TestView_EnterWithNoResults(t *testing.T) {
	view := newTestView(&MockLogService{})
	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)

	_, cmd = view.Update(key("enter"))

	assert.Nil(t, cmd)
	assert.Contains(t, view.View(), "No logs")
}

func TestView_Esc_ReturnsToMenu(t *testing.T) {
	view := newTestView(&MockLogService{})

	_, cmd := view.Update(key("esc"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_TabMovesBetweenFields(t *testing.T) {
	view := newTestView(&MockLogService{})

	view.Update(key("tab"))
	view.Update(key("tab"))
	view.Update(key("x"))

	assert.Equal(t, fieldSource, view.form.Focused())
	assert.Equal(t, "x", view.form.Fields()[fieldSource].Value())
}

func TestView_NewSearchRefocusesForm(t *testing.T) {
	view := newTestView(&MockLogService{})
	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)
	require.False(t, view.FormFocused())

	view.Update(key("n"))

	assert.True(t, view.FormFocused())
	assert.Equal(t, fieldStart, view.form.Focused())
}

func TestView_NoService(t *testing.T) {
	view := NewView(nil, nil, nil)

	_, cmd := view.Update(key("enter"))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, view.Err(), ErrNoLogService)
}

func TestView_Export_WritesCSV(t *testing.T) {
	dir := t.TempDir()
	svc := &MockLogService{
		SearchFunc: func(_ context.Context, _ domain.LogQuery) ([]domain.LogRecord, error) {
			return testRecords(), nil
		},
	}
	view := newTestView(svc)
	view.SetExportDir(dir)
	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)

	_, cmd = view.Update(key("x"))
	msg := run(t, view, cmd)

	exported, ok := msg.(messages.LogsExported)
	require.True(t, ok)
	require.NoError(t, exported.Err)
	assert.Equal(t, 2, exported.Count)
	assert.Equal(t, dir, filepath.Dir(exported.Path))

	data, err := os.ReadFile(exported.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ID,Content,Created On"))
	assert.Contains(t, view.View(), "Exported 2 logs")
}

func TestView_Export_NothingToExport(t *testing.T) {
	view := newTestView(&MockLogService{})
	_, cmd := view.Update(key("enter"))
	run(t, view, cmd)

	_, cmd = view.Update(key("x"))
	msg := run(t, view, cmd)

	exported, ok := msg.(messages.LogsExported)
	require.True(t, ok)
	assert.ErrorIs(t, exported.Err, ErrNothingToExport)
}

func TestView_ErrorOccurred(t *testing.T) {
	view := newTestView(&MockLogService{})

	view.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, view.Err(), "boom")
}

func TestView_View_NotReady(t *testing.T) {
	view := NewView(nil, nil, nil)

	assert.Equal(t, "Initialising...", view.View())
}
