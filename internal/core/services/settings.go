package services

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBackendURL       = "backend.base_url"
	keyBackendTimeout   = "backend.timeout_seconds"
	keyBackendRateLimit = "backend.rate_limit"
	keyAuthMethod       = "auth.method"
	keyAuthToken        = "auth.token"
	keyAuthTokenURL     = "auth.token_url"
	keyAuthClientID     = "auth.client_id"
	keyAuthClientSecret = "auth.client_secret"
	keyAuthScopes       = "auth.scopes"
	keyVersionOrder     = "contexts.version_order"
	keyHistoryEnabled   = "history.enabled"
)

// Environment overrides, applied on read and never persisted.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvBaseURL = "AGENTOPS_BASE_URL"
	EnvToken   = "AGENTOPS_TOKEN"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
// AGENTOPS_BASE_URL and AGENTOPS_TOKEN take precedence over stored values.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()

	if v, ok := s.lookupEnv(EnvBaseURL); ok && v != "" {
		settings.Backend.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := s.lookupEnv(EnvToken); ok && v != "" {
		settings.Auth.Method = domain.AuthMethodToken
		settings.Auth.Token = v
	}

	return settings, nil
}

// stored reads settings from the config store without environment overrides.
// Setters start from it so overrides are never persisted.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Backend: domain.BackendSettings{
			BaseURL:   strings.TrimRight(s.configStore.GetString(keyBackendURL), "/"),
			Timeout:   s.getSeconds(keyBackendTimeout, defaults.Backend.Timeout),
			RateLimit: s.configStore.GetFloat(keyBackendRateLimit),
		},
		Auth: domain.AuthSettings{
			Method:       s.getAuthMethod(defaults.Auth.Method),
			Token:        s.configStore.GetString(keyAuthToken),
			TokenURL:     s.configStore.GetString(keyAuthTokenURL),
			ClientID:     s.configStore.GetString(keyAuthClientID),
			ClientSecret: s.configStore.GetString(keyAuthClientSecret),
			Scopes:       s.configStore.GetStringSlice(keyAuthScopes),
		},
		Contexts: domain.ContextSettings{
			VersionOrder: s.getVersionOrder(defaults.Contexts.VersionOrder),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
		},
	}
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save backend settings
	if err := s.configStore.Set(keyBackendURL, settings.Backend.BaseURL); err != nil {
		return fmt.Errorf("save backend base_url: %w", err)
	}
	if err := s.configStore.Set(keyBackendTimeout, int(settings.Backend.Timeout/time.Second)); err != nil {
		return fmt.Errorf("save backend timeout: %w", err)
	}
	if err := s.configStore.Set(keyBackendRateLimit, settings.Backend.RateLimit); err != nil {
		return fmt.Errorf("save backend rate_limit: %w", err)
	}

	// Save auth settings
	if err := s.configStore.Set(keyAuthMethod, settings.Auth.Method.String()); err != nil {
		return fmt.Errorf("save auth method: %w", err)
	}
	if settings.Auth.Token != "" {
		if err := s.configStore.Set(keyAuthToken, settings.Auth.Token); err != nil {
			return fmt.Errorf("save auth token: %w", err)
		}
	}
	if err := s.configStore.Set(keyAuthTokenURL, settings.Auth.TokenURL); err != nil {
		return fmt.Errorf("save auth token_url: %w", err)
	}
	if err := s.configStore.Set(keyAuthClientID, settings.Auth.ClientID); err != nil {
		return fmt.Errorf("save auth client_id: %w", err)
	}
	if settings.Auth.ClientSecret != "" {
		if err := s.configStore.Set(keyAuthClientSecret, settings.Auth.ClientSecret); err != nil {
			return fmt.Errorf("save auth client_secret: %w", err)
		}
	}
	if err := s.configStore.Set(keyAuthScopes, settings.Auth.Scopes); err != nil {
		return fmt.Errorf("save auth scopes: %w", err)
	}

	// Save presentation and history settings
	if err := s.configStore.Set(keyVersionOrder, settings.Contexts.VersionOrder.String()); err != nil {
		return fmt.Errorf("save version order: %w", err)
	}
	if err := s.configStore.Set(keyHistoryEnabled, settings.History.Enabled); err != nil {
		return fmt.Errorf("save history enabled: %w", err)
	}

	return nil
}

// SetBackend updates the backend URL, request timeout and rate limit.
// A zero timeout keeps the current one.
func (s *SettingsService) SetBackend(baseURL string, timeout time.Duration, rateLimit float64) error {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if err := validateBaseURL(baseURL); err != nil {
		return err
	}
	if timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", domain.ErrInvalidInput)
	}
	if rateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", domain.ErrInvalidInput)
	}

	settings := s.stored()

	settings.Backend.BaseURL = baseURL
	if timeout > 0 {
		settings.Backend.Timeout = timeout
	}
	settings.Backend.RateLimit = rateLimit

	return s.Save(settings)
}

// SetAuth replaces the authentication settings.
func (s *SettingsService) SetAuth(auth domain.AuthSettings) error {
	if !auth.Method.IsValid() {
		return fmt.Errorf("invalid auth method: %s", auth.Method)
	}
	if !auth.IsConfigured() {
		return fmt.Errorf("%w: auth method %q is missing required fields", domain.ErrInvalidInput, auth.Method)
	}

	settings := s.stored()

	settings.Auth = auth

	return s.Save(settings)
}

// SetVersionOrder selects how context tree versions are ordered.
func (s *SettingsService) SetVersionOrder(order domain.VersionOrder) error {
	if !order.IsValid() {
		return fmt.Errorf("invalid version order: %s", order)
	}

	settings := s.stored()

	settings.Contexts.VersionOrder = order

	return s.Save(settings)
}

// SetHistoryEnabled turns query history on or off.
func (s *SettingsService) SetHistoryEnabled(enabled bool) error {
	settings := s.stored()

	settings.History.Enabled = enabled

	return s.Save(settings)
}

// Validate checks that the backend and auth settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Backend.IsConfigured() {
		return domain.ErrBackendNotConfigured
	}
	if err := validateBaseURL(settings.Backend.BaseURL); err != nil {
		return err
	}

	if !settings.Auth.Method.IsValid() {
		return fmt.Errorf("invalid auth method: %s", settings.Auth.Method)
	}
	if !settings.Auth.IsConfigured() {
		return fmt.Errorf(
			"auth method %q requires credentials to be configured",
			settings.Auth.Method.Description(),
		)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return domain.ErrBackendNotConfigured
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: backend url must be an absolute http(s) URL: %q", domain.ErrInvalidInput, raw)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getAuthMethod(defaultVal domain.AuthMethod) domain.AuthMethod {
	val := s.configStore.GetString(keyAuthMethod)
	if val == "" {
		return defaultVal
	}
	method := domain.AuthMethod(val)
	if !method.IsValid() {
		return defaultVal
	}
	return method
}

func (s *SettingsService) getVersionOrder(defaultVal domain.VersionOrder) domain.VersionOrder {
	val := s.configStore.GetString(keyVersionOrder)
	if val == "" {
		return defaultVal
	}
	order := domain.VersionOrder(val)
	if !order.IsValid() {
		return defaultVal
	}
	return order
}
