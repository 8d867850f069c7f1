// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
)

// minInputWidth bounds the inner textinput width on narrow terminals.
const minInputWidth = 20

// Field wraps a bubbles textinput with a label and form styling.
// A new Field is not focused.
type Field struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewField creates a labelled input with a placeholder.
func NewField(s *styles.Styles, label, placeholder string) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 30

	return &Field{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     40,
	}
}

// Init initialises the field.
func (f *Field) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *Field) Update(msg tea.Msg) (*Field, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label and the bordered input.
func (f *Field) View() string {
	label := f.styles.Muted.Render(f.label + ": ")
	box := f.styles.InputField
	if f.textinput.Focused() {
		label = f.styles.Title.Render(f.label + ": ")
		box = f.styles.FocusedField
	}
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box.Render(f.textinput.View()))
}

// Label returns the field label.
func (f *Field) Label() string {
	return f.label
}

// Value returns the current input value.
func (f *Field) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *Field) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *Field) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *Field) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *Field) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the width of the field, label included.
func (f *Field) SetWidth(width int) {
	f.width = width
	inputWidth := width - len(f.label) - 6
	if inputWidth < minInputWidth {
		inputWidth = minInputWidth
	}
	f.textinput.Width = inputWidth
}

// Width returns the current width.
func (f *Field) Width() int {
	return f.width
}

// Reset clears the input.
func (f *Field) Reset() {
	f.textinput.Reset()
}

// Form is an ordered set of fields with a single focus.
type Form struct {
	fields  []*Field
	focused int
}

// NewForm creates a form and focuses its first field.
func NewForm(fields ...*Field) *Form {
	form := &Form{fields: fields}
	form.FocusIndex(0)
	return form
}

// Fields returns the form fields in order.
func (f *Form) Fields() []*Field {
	return f.fields
}

// Focused returns the index of the focused field, or -1 when the form is blurred.
func (f *Form) Focused() int {
	return f.focused
}

// FocusIndex focuses the field at i and blurs the others.
func (f *Form) FocusIndex(i int) tea.Cmd {
	if len(f.fields) == 0 {
		f.focused = -1
		return nil
	}
	if i < 0 {
		i = len(f.fields) - 1
	}
	if i >= len(f.fields) {
		i = 0
	}

	var cmd tea.Cmd
	for idx, field := range f.fields {
		if idx == i {
			cmd = field.Focus()
		} else {
			field.Blur()
		}
	}
	f.focused = i
	return cmd
}

// Next moves focus to the next field, wrapping around.
func (f *Form) Next() tea.Cmd {
	return f.FocusIndex(f.focused + 1)
}

// Prev moves focus to the previous field, wrapping around.
func (f *Form) Prev() tea.Cmd {
	return f.FocusIndex(f.focused - 1)
}

// Blur removes focus from every field.
func (f *Form) Blur() {
	for _, field := range f.fields {
		field.Blur()
	}
	f.focused = -1
}

// Update forwards msg to the focused field.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if f.focused < 0 || f.focused >= len(f.fields) {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focused], cmd = f.fields[f.focused].Update(msg)
	return cmd
}

// SetWidth sets the width of every field.
func (f *Form) SetWidth(width int) {
	for _, field := range f.fields {
		field.SetWidth(width)
	}
}

// View renders the fields one per line.
func (f *Form) View() string {
	rows := make([]string, 0, len(f.fields))
	for _, field := range f.fields {
		rows = append(rows, field.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
