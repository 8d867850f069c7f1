// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionBackend
	SectionAuth
	SectionVersionOrder
)

// Overview rows.
const (
	itemBackend = iota
	itemAuth
	itemVersionOrder
	itemHistory
	overviewItems
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	// Current settings
	settings *domain.AppSettings
	err      error
	notice   string

	// Navigation state
	section  Section
	selected int

	// Backend URL input
	urlInput textinput.Model

	// Credential inputs for the auth method being edited; nil while choosing.
	credInputs []textinput.Model
	credFocus  int

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	urlInput := textinput.New()
	urlInput.Placeholder = "https://agentops.example.com/api"
	urlInput.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		urlInput:        urlInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// save runs fn against the service and reports the outcome.
func (v *View) save(fn func(driving.SettingsService) error) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Err: fn(svc)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Settings saved"
		v.backToOverview()
		return v, v.loadSettings()

	case messages.ConfigReloaded:
		if msg.Err == nil {
			return v, v.loadSettings()
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current section.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		if v.section == SectionAuth && v.credInputs != nil {
			v.credInputs = nil
			return v, nil
		}
		v.backToOverview()
		return v, nil
	}

	v.notice = ""
	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionBackend:
		return v.handleBackendKeys(msg)
	case SectionAuth:
		return v.handleAuthKeys(msg)
	case SectionVersionOrder:
		return v.handleVersionOrderKeys(msg)
	}

	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < overviewItems-1 {
			v.selected++
		}
	case "r":
		return v, v.loadSettings()
	case keyEnter, " ":
		if v.settings == nil {
			return v, nil
		}
		switch v.selected {
		case itemBackend:
			v.section = SectionBackend
			v.urlInput.SetValue(v.settings.Backend.BaseURL)
			v.urlInput.CursorEnd()
			return v, v.urlInput.Focus()
		case itemAuth:
			v.section = SectionAuth
			v.selected = v.authMethodIndex()
		case itemVersionOrder:
			v.section = SectionVersionOrder
			v.selected = v.versionOrderIndex()
		case itemHistory:
			enabled := !v.settings.History.Enabled
			return v, v.save(func(svc driving.SettingsService) error {
				return svc.SetHistoryEnabled(enabled)
			})
		}
	}
	return v, nil
}

func (v *View) handleBackendKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == keyEnter {
		url := v.urlInput.Value()
		rate := v.settings.Backend.RateLimit
		return v, v.save(func(svc driving.SettingsService) error {
			return svc.SetBackend(url, 0, rate)
		})
	}
	var cmd tea.Cmd
	v.urlInput, cmd = v.urlInput.Update(msg)
	return v, cmd
}

func (v *View) handleAuthKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	methods := domain.AllAuthMethods()

	if v.credInputs != nil {
		return v.handleCredentialKeys(msg)
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(methods)-1 {
			v.selected++
		}
	case keyEnter:
		if v.selected < 0 || v.selected >= len(methods) {
			return v, nil
		}
		method := methods[v.selected]
		if method == domain.AuthMethodNone {
			return v, v.save(func(svc driving.SettingsService) error {
				return svc.SetAuth(domain.AuthSettings{Method: domain.AuthMethodNone})
			})
		}
		return v, v.startCredentials(method)
	}
	return v, nil
}

// startCredentials builds the inputs the method needs, prefilled with
// non-secret current values.
func (v *View) startCredentials(method domain.AuthMethod) tea.Cmd {
	var current domain.AuthSettings
	if v.settings != nil {
		current = v.settings.Auth
	}

	switch method {
	case domain.AuthMethodToken:
		v.credInputs = []textinput.Model{newInput("Bearer token", true, "")}
	case domain.AuthMethodClientCredentials:
		v.credInputs = []textinput.Model{
			newInput("Token URL", false, current.TokenURL),
			newInput("Client ID", false, current.ClientID),
			newInput("Client secret", true, ""),
		}
	default:
		return nil
	}
	v.credFocus = 0
	return v.credInputs[0].Focus()
}

func newInput(placeholder string, secret bool, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	if secret {
		ti.EchoMode = textinput.EchoPassword
	}
	ti.SetValue(value)
	return ti
}

func (v *View) handleCredentialKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyTab:
		return v, v.focusCredential(v.credFocus + 1)
	case "shift+tab":
		return v, v.focusCredential(v.credFocus - 1)
	case keyEnter:
		if v.credFocus < len(v.credInputs)-1 {
			return v, v.focusCredential(v.credFocus + 1)
		}
		return v, v.saveCredentials()
	}
	var cmd tea.Cmd
	v.credInputs[v.credFocus], cmd = v.credInputs[v.credFocus].Update(msg)
	return v, cmd
}

func (v *View) focusCredential(i int) tea.Cmd {
	n := len(v.credInputs)
	i = ((i % n) + n) % n
	for idx := range v.credInputs {
		v.credInputs[idx].Blur()
	}
	v.credFocus = i
	return v.credInputs[i].Focus()
}

func (v *View) saveCredentials() tea.Cmd {
	methods := domain.AllAuthMethods()
	auth := domain.AuthSettings{Method: methods[v.selected]}
	if v.settings != nil {
		auth.Scopes = v.settings.Auth.Scopes
	}

	value := func(i int) string { return strings.TrimSpace(v.credInputs[i].Value()) }
	switch auth.Method {
	case domain.AuthMethodToken:
		auth.Token = value(0)
	case domain.AuthMethodClientCredentials:
		auth.TokenURL = value(0)
		auth.ClientID = value(1)
		auth.ClientSecret = value(2)
	}

	return v.save(func(svc driving.SettingsService) error {
		return svc.SetAuth(auth)
	})
}

func (v *View) handleVersionOrderKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	orders := domain.AllVersionOrders()

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(orders)-1 {
			v.selected++
		}
	case keyEnter:
		if v.selected >= 0 && v.selected < len(orders) {
			order := orders[v.selected]
			return v, v.save(func(svc driving.SettingsService) error {
				return svc.SetVersionOrder(order)
			})
		}
	}
	return v, nil
}

func (v *View) backToOverview() {
	v.section = SectionOverview
	v.selected = 0
	v.credInputs = nil
	v.credFocus = 0
	v.urlInput.Blur()
}

// Helper methods to get current selection indices.

func (v *View) authMethodIndex() int {
	for i, m := range domain.AllAuthMethods() {
		if m == v.settings.Auth.Method {
			return i
		}
	}
	return 0
}

func (v *View) versionOrderIndex() int {
	for i, o := range domain.AllVersionOrders() {
		if o == v.settings.Contexts.VersionOrder {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + services.UserMessage(v.err)))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionBackend:
		b.WriteString(v.renderBackend())
	case SectionAuth:
		b.WriteString(v.renderAuth())
	case SectionVersionOrder:
		b.WriteString(v.renderVersionOrder())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	backendValue := "Not Set"
	if v.settings.Backend.IsConfigured() {
		backendValue = v.settings.Backend.BaseURL
	}

	authStatus := v.styles.Success.Render("[configured]")
	if !v.settings.Auth.IsConfigured() {
		authStatus = v.styles.Warning.Render("[needs credentials]")
	}

	history := "Off"
	if v.settings.History.Enabled {
		history = "On"
	}

	items := []struct {
		label  string
		value  string
		status string
	}{
		{label: "Backend URL", value: backendValue},
		{label: "Authentication", value: v.settings.Auth.Method.Description(), status: authStatus},
		{label: "Version Order", value: v.settings.Contexts.VersionOrder.Description()},
		{label: "Query History", value: history},
	}

	for i, item := range items {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		line := fmt.Sprintf("%s%s: %s", indicator, item.label, item.value)
		if item.status != "" {
			line += " " + item.status
		}

		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	// Validation status
	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render("Warning: " + services.UserMessage(err)))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderBackend() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Backend URL"))
	b.WriteString("\n\n")
	b.WriteString(v.urlInput.View())
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Timeout: %s", v.settings.Backend.Timeout)))
	b.WriteString("\n")

	return b.String()
}

func (v *View) renderAuth() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Authentication"))
	b.WriteString("\n\n")

	for i, method := range domain.AllAuthMethods() {
		indicator := "  "
		if i == v.selected && v.credInputs == nil {
			indicator = "> "
		}

		current := ""
		if method == v.settings.Auth.Method {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, method.Description(), current)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	if v.credInputs != nil {
		b.WriteString("\n")
		for _, in := range v.credInputs {
			b.WriteString(v.styles.Normal.Render(in.Placeholder + ":"))
			b.WriteString("\n")
			b.WriteString(in.View())
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (v *View) renderVersionOrder() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Version Order"))
	b.WriteString("\n\n")

	for i, order := range domain.AllVersionOrders() {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		current := ""
		if order == v.settings.Contexts.VersionOrder {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, order.Description(), current)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [r] reload  [esc] back")
	case SectionBackend:
		return v.styles.Help.Render("[enter] save  [esc] cancel")
	case SectionAuth:
		if v.credInputs != nil {
			return v.styles.Help.Render("[tab] next field  [enter] save  [esc] back to list")
		}
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionVersionOrder:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.urlInput.Width = width - 8
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Settings returns the loaded settings, or nil.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.backToOverview()
	v.err = nil
	v.notice = ""
	v.urlInput.SetValue("")
}
