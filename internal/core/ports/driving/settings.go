package driving

import (
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetBackend updates the backend URL, request timeout and rate limit.
	SetBackend(baseURL string, timeout time.Duration, rateLimit float64) error

	// SetAuth replaces the authentication settings.
	SetAuth(auth domain.AuthSettings) error

	// SetVersionOrder selects how context tree versions are ordered.
	SetVersionOrder(order domain.VersionOrder) error

	// SetHistoryEnabled turns query history on or off.
	SetHistoryEnabled(enabled bool) error

	// Validate checks that the backend and auth settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
