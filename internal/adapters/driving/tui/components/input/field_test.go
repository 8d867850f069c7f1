package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
)

func TestNewField(t *testing.T) {
	s := styles.DefaultStyles()
	field := NewField(s, "Start", "2024-01-01 00:00")

	require.NotNil(t, field)
	assert.Equal(t, "", field.Value())
	assert.Equal(t, "Start", field.Label())
	assert.False(t, field.Focused())
}

func TestNewField_NilStyles(t *testing.T) {
	field := NewField(nil, "Source", "")

	require.NotNil(t, field)
	assert.NotNil(t, field.styles)
}

func TestField_Init(t *testing.T) {
	field := NewField(nil, "Start", "")

	// Blink command should be returned
	assert.NotNil(t, field.Init())
}

func TestField_Update_TypesWhenFocused(t *testing.T) {
	field := NewField(nil, "Agent code", "")
	field.Focus()

	for _, r := range "hello" {
		field.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "hello", field.Value())
}

func TestField_Update_IgnoredWhenBlurred(t *testing.T) {
	field := NewField(nil, "Agent code", "")

	field.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, "", field.Value())
}

func TestField_Update_Backspace(t *testing.T) {
	field := NewField(nil, "Start", "")
	field.Focus()
	field.SetValue("test")

	field.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Equal(t, "tes", field.Value())
}

func TestField_View(t *testing.T) {
	field := NewField(nil, "Source", "")

	assert.Contains(t, field.View(), "Source")
}

func TestField_FocusAndBlur(t *testing.T) {
	field := NewField(nil, "Start", "")

	cmd := field.Focus()
	assert.NotNil(t, cmd)
	assert.True(t, field.Focused())

	field.Blur()
	assert.False(t, field.Focused())
}

func TestField_SetWidth(t *testing.T) {
	field := NewField(nil, "Start", "")

	assert.Equal(t, 40, field.Width()) // Default width

	field.SetWidth(100)
	assert.Equal(t, 100, field.Width())

	field.SetWidth(5)
	assert.Equal(t, 5, field.Width())
	assert.Equal(t, minInputWidth, field.textinput.Width)
}

func TestField_Reset(t *testing.T) {
	field := NewField(nil, "Start", "")
	field.SetValue("some text")

	field.Reset()

	assert.Equal(t, "", field.Value())
}

func newTestForm() *Form {
	return NewForm(
		NewField(nil, "Start", ""),
		NewField(nil, "End", ""),
		NewField(nil, "Source", ""),
	)
}

func TestNewForm_FocusesFirstField(t *testing.T) {
	form := newTestForm()

	assert.Equal(t, 0, form.Focused())
	assert.True(t, form.Fields()[0].Focused())
	assert.False(t, form.Fields()[1].Focused())
}

func TestNewForm_Empty(t *testing.T) {
	form := NewForm()

	assert.Equal(t, -1, form.Focused())
	assert.Nil(t, form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
}

func TestForm_NextAndPrevWrap(t *testing.T) {
	form := newTestForm()

	form.Next()
	assert.Equal(t, 1, form.Focused())
	form.Next()
	form.Next()
	assert.Equal(t, 0, form.Focused())

	form.Prev()
	assert.Equal(t, 2, form.Focused())
	assert.True(t, form.Fields()[2].Focused())
	assert.False(t, form.Fields()[0].Focused())
}

func TestForm_UpdateGoesToFocusedField(t *testing.T) {
	form := newTestForm()
	form.Next()

	form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Equal(t, "", form.Fields()[0].Value())
	assert.Equal(t, "x", form.Fields()[1].Value())
}

func TestForm_Blur(t *testing.T) {
	form := newTestForm()

	form.Blur()

	assert.Equal(t, -1, form.Focused())
	for _, f := range form.Fields() {
		assert.False(t, f.Focused())
	}
}

func TestForm_View(t *testing.T) {
	form := newTestForm()

	view := form.View()

	assert.Contains(t, view, "Start")
	assert.Contains(t, view, "End")
	assert.Contains(t, view, "Source")
}
