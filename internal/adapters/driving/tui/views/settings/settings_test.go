package settings

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// MockSettingsService is a mock implementation of driving.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSettings), args.Error(1)
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockSettingsService) SetBackend(baseURL string, timeout time.Duration, rateLimit float64) error {
	args := m.Called(baseURL, timeout, rateLimit)
	return args.Error(0)
}

func (m *MockSettingsService) SetAuth(auth domain.AuthSettings) error {
	args := m.Called(auth)
	return args.Error(0)
}

func (m *MockSettingsService) SetVersionOrder(order domain.VersionOrder) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockSettingsService) SetHistoryEnabled(enabled bool) error {
	args := m.Called(enabled)
	return args.Error(0)
}

func (m *MockSettingsService) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	args := m.Called()
	return args.Get(0).(domain.AppSettings)
}

// Helper function to create test settings.
func testSettings() *domain.AppSettings {
	return &domain.AppSettings{
		Backend: domain.BackendSettings{
			BaseURL:   "https://ops.example.com/api",
			Timeout:   30 * time.Second,
			RateLimit: 5,
		},
		Auth: domain.AuthSettings{
			Method:   domain.AuthMethodClientCredentials,
			TokenURL: "https://auth.example.com/token",
			ClientID: "cli",
			Scopes:   []string{"logs.read"},
		},
		Contexts: domain.ContextSettings{VersionOrder: domain.VersionOrderLexicographic},
		History:  domain.HistorySettings{Enabled: true},
	}
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

// loadedView returns a view with testSettings applied.
func loadedView(svc *MockSettingsService) *View {
	view := NewView(nil, svc)
	view.SetDimensions(100, 40)
	view.Update(messages.SettingsLoaded{Settings: testSettings()})
	return view
}

// typeText feeds s to the view one rune at a time.
func typeText(view *View, s string) {
	for _, r := range s {
		view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewView(t *testing.T) {
	s := styles.DefaultStyles()
	mockService := new(MockSettingsService)

	view := NewView(s, mockService)

	require.NotNil(t, view)
	assert.Equal(t, mockService, view.settingsService)
	assert.Equal(t, SectionOverview, view.Section())
	assert.Equal(t, 0, view.selected)
	assert.Nil(t, view.credInputs)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, new(MockSettingsService))

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_Init_LoadSettings_Success(t *testing.T) {
	mockService := new(MockSettingsService)
	settings := testSettings()
	mockService.On("Get").Return(settings, nil)

	view := NewView(nil, mockService)
	cmd := view.Init()

	require.NotNil(t, cmd)
	loaded, ok := cmd().(messages.SettingsLoaded)
	require.True(t, ok)
	assert.NoError(t, loaded.Err)
	assert.Equal(t, settings, loaded.Settings)
	mockService.AssertExpectations(t)
}

func TestView_Init_LoadSettings_Error(t *testing.T) {
	mockService := new(MockSettingsService)
	expectedErr := fmt.Errorf("failed to load settings")
	mockService.On("Get").Return(nil, expectedErr)

	view := NewView(nil, mockService)
	loaded, ok := view.Init()().(messages.SettingsLoaded)

	require.True(t, ok)
	assert.Equal(t, expectedErr, loaded.Err)
	assert.Nil(t, loaded.Settings)
}

func TestView_Init_NoService(t *testing.T) {
	view := NewView(nil, nil)

	loaded, ok := view.Init()().(messages.SettingsLoaded)

	require.True(t, ok)
	assert.ErrorIs(t, loaded.Err, ErrNoSettingsService)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, new(MockSettingsService))

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 120, Height: 60})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 120, view.width)
}

func TestView_View_Loading(t *testing.T) {
	view := NewView(nil, new(MockSettingsService))

	assert.Contains(t, view.View(), "Loading settings...")
}

func TestView_View_Overview(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("Validate").Return(fmt.Errorf("auth method requires credentials to be configured"))
	view := loadedView(mockService)

	out := view.View()

	assert.Contains(t, out, "Backend URL: https://ops.example.com/api")
	assert.Contains(t, out, "OAuth2 client credentials")
	assert.Contains(t, out, "[needs credentials]")
	assert.Contains(t, out, "Query History: On")
	assert.Contains(t, out, "Warning:")
}

func TestView_View_Valid(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("Validate").Return(nil)
	view := loadedView(mockService)

	assert.Contains(t, view.View(), "Configuration is valid")
}

func TestView_EditBackendURL(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetBackend", "https://new.example.com", time.Duration(0), 5.0).Return(nil)
	mockService.On("Get").Return(testSettings(), nil)
	view := loadedView(mockService)

	view.Update(key("enter"))
	require.Equal(t, SectionBackend, view.Section())
	assert.Equal(t, "https://ops.example.com/api", view.urlInput.Value())

	view.urlInput.SetValue("")
	typeText(view, "https://new.example.com")
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	saved, ok := cmd().(messages.SettingsSaved)
	require.True(t, ok)
	assert.NoError(t, saved.Err)

	_, reload := view.Update(saved)
	assert.NotNil(t, reload)
	assert.Equal(t, SectionOverview, view.Section())
	mockService.AssertCalled(t, "SetBackend", "https://new.example.com", time.Duration(0), 5.0)
}

func TestView_SaveError_StaysInSection(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetBackend", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: bad url", domain.ErrInvalidInput))
	view := loadedView(mockService)

	view.Update(key("enter"))
	_, cmd := view.Update(key("enter"))
	view.Update(cmd())

	assert.Equal(t, SectionBackend, view.Section())
	assert.ErrorIs(t, view.Err(), domain.ErrInvalidInput)
}

func TestView_AuthNone_SavesDirectly(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetAuth", domain.AuthSettings{Method: domain.AuthMethodNone}).Return(nil)
	view := loadedView(mockService)

	view.Update(key("down"))
	view.Update(key("enter"))
	require.Equal(t, SectionAuth, view.Section())
	assert.Equal(t, 2, view.selected)

	view.Update(key("k"))
	view.Update(key("k"))
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	saved := cmd().(messages.SettingsSaved)

	assert.NoError(t, saved.Err)
	mockService.AssertExpectations(t)
}

func TestView_AuthToken(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetAuth", domain.AuthSettings{
		Method: domain.AuthMethodToken,
		Token:  "secret",
		Scopes: []string{"logs.read"},
	}).Return(nil)
	view := loadedView(mockService)

	view.Update(key("down"))
	view.Update(key("enter"))
	view.Update(key("k"))
	view.Update(key("enter"))
	require.Len(t, view.credInputs, 1)

	typeText(view, "secret")
	assert.NotContains(t, view.View(), "secret")
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	cmd()

	mockService.AssertExpectations(t)
}

func TestView_AuthClientCredentials(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetAuth", domain.AuthSettings{
		Method:       domain.AuthMethodClientCredentials,
		TokenURL:     "https://auth.example.com/token",
		ClientID:     "cli",
		ClientSecret: "s3",
		Scopes:       []string{"logs.read"},
	}).Return(nil)
	view := loadedView(mockService)

	view.Update(key("down"))
	view.Update(key("enter"))
	view.Update(key("enter"))
	require.Len(t, view.credInputs, 3)

	view.Update(key("enter"))
	view.Update(key("tab"))
	assert.Equal(t, 2, view.credFocus)
	typeText(view, "s3")
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	cmd()

	mockService.AssertExpectations(t)
}

func TestView_AuthEscBackToList(t *testing.T) {
	view := loadedView(new(MockSettingsService))
	view.Update(key("down"))
	view.Update(key("enter"))
	view.Update(key("enter"))
	require.NotNil(t, view.credInputs)

	view.Update(key("esc"))
	assert.Nil(t, view.credInputs)
	assert.Equal(t, SectionAuth, view.Section())

	view.Update(key("esc"))
	assert.Equal(t, SectionOverview, view.Section())
}

func TestView_VersionOrder(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetVersionOrder", domain.VersionOrderNumeric).Return(nil)
	view := loadedView(mockService)

	view.Update(key("down"))
	view.Update(key("down"))
	view.Update(key("enter"))
	require.Equal(t, SectionVersionOrder, view.Section())
	assert.Contains(t, view.View(), "(current)")

	view.Update(key("j"))
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	cmd()

	mockService.AssertExpectations(t)
}

func TestView_ToggleHistory(t *testing.T) {
	mockService := new(MockSettingsService)
	mockService.On("SetHistoryEnabled", false).Return(nil)
	view := loadedView(mockService)

	for i := 0; i < 3; i++ {
		view.Update(key("down"))
	}
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	cmd()

	mockService.AssertExpectations(t)
}

func TestView_NoServiceSave(t *testing.T) {
	view := NewView(nil, nil)
	view.Update(messages.SettingsLoaded{Settings: testSettings()})
	for i := 0; i < 3; i++ {
		view.Update(key("down"))
	}

	_, cmd := view.Update(key("enter"))
	saved := cmd().(messages.SettingsSaved)

	assert.ErrorIs(t, saved.Err, ErrNoSettingsService)
}

func TestView_EscFromOverview(t *testing.T) {
	view := loadedView(new(MockSettingsService))

	_, cmd := view.Update(key("esc"))

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_ConfigReloaded(t *testing.T) {
	view := loadedView(new(MockSettingsService))

	_, cmd := view.Update(messages.ConfigReloaded{})
	assert.NotNil(t, cmd)

	_, cmd = view.Update(messages.ConfigReloaded{Err: fmt.Errorf("parse")})
	assert.Nil(t, cmd)
}

func TestView_Reset(t *testing.T) {
	view := loadedView(new(MockSettingsService))
	view.Update(key("enter"))
	view.Update(messages.SettingsSaved{Err: fmt.Errorf("boom")})

	view.Reset()

	assert.Equal(t, SectionOverview, view.Section())
	assert.NoError(t, view.Err())
	assert.Equal(t, "", view.urlInput.Value())
}
