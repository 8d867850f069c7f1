package domain

import "time"

const unknownDescription = "Unknown"

// AuthMethod identifies how requests to the log backend are authenticated.
type AuthMethod string

// Supported authentication methods.
const (
	// AuthMethodNone sends requests without credentials.
	AuthMethodNone AuthMethod = "none"

	// AuthMethodToken sends a static bearer token.
	AuthMethodToken AuthMethod = "token"

	// AuthMethodClientCredentials fetches tokens with the OAuth2 client credentials grant.
	AuthMethodClientCredentials AuthMethod = "client_credentials"
)

// IsValid returns true if the method is recognised.
func (m AuthMethod) IsValid() bool {
	switch m {
	case AuthMethodNone, AuthMethodToken, AuthMethodClientCredentials:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m AuthMethod) String() string {
	return string(m)
}

// Description returns a human-readable description of the method.
func (m AuthMethod) Description() string {
	switch m {
	case AuthMethodNone:
		return "None (unauthenticated)"
	case AuthMethodToken:
		return "Static bearer token"
	case AuthMethodClientCredentials:
		return "OAuth2 client credentials"
	default:
		return unknownDescription
	}
}

// AllAuthMethods returns all supported authentication methods.
func AllAuthMethods() []AuthMethod {
	return []AuthMethod{AuthMethodNone, AuthMethodToken, AuthMethodClientCredentials}
}

// VersionOrder selects how context versions are ordered in trees.
type VersionOrder string

// Available version orderings.
const (
	// VersionOrderLexicographic compares version strings byte-wise, descending.
	VersionOrderLexicographic VersionOrder = "lexicographic"

	// VersionOrderNumeric compares numeric versions by value, descending.
	VersionOrderNumeric VersionOrder = "numeric"
)

// IsValid returns true if the ordering is recognised.
func (o VersionOrder) IsValid() bool {
	return o == VersionOrderLexicographic || o == VersionOrderNumeric
}

// String returns the string representation.
func (o VersionOrder) String() string {
	return string(o)
}

// Description returns a human-readable description of the ordering.
func (o VersionOrder) Description() string {
	switch o {
	case VersionOrderLexicographic:
		return "Lexicographic (string order, \"10\" before \"9\")"
	case VersionOrderNumeric:
		return "Numeric aware (\"10\" after \"9\")"
	default:
		return unknownDescription
	}
}

// AllVersionOrders returns all available version orderings.
func AllVersionOrders() []VersionOrder {
	return []VersionOrder{VersionOrderLexicographic, VersionOrderNumeric}
}

// BackendSettings holds log backend connection configuration.
type BackendSettings struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64
}

// IsConfigured returns true if a base URL is set.
func (b BackendSettings) IsConfigured() bool {
	return b.BaseURL != ""
}

// AuthSettings holds backend authentication configuration.
type AuthSettings struct {
	// Method is the authentication method.
	Method AuthMethod

	// Token is the static bearer token for AuthMethodToken.
	Token string

	// TokenURL is the OAuth2 token endpoint.
	TokenURL string

	// ClientID is the OAuth2 client identifier.
	ClientID string

	// ClientSecret is the OAuth2 client secret.
	ClientSecret string

	// Scopes are requested with client credentials tokens.
	Scopes []string
}

// IsConfigured returns true if the selected method has what it needs.
func (a AuthSettings) IsConfigured() bool {
	switch a.Method {
	case AuthMethodNone:
		return true
	case AuthMethodToken:
		return a.Token != ""
	case AuthMethodClientCredentials:
		return a.TokenURL != "" && a.ClientID != "" && a.ClientSecret != ""
	default:
		return false
	}
}

// ContextSettings holds context tree presentation configuration.
type ContextSettings struct {
	// VersionOrder orders version groups within a type.
	VersionOrder VersionOrder
}

// HistorySettings holds query history configuration.
type HistorySettings struct {
	// Enabled turns query history recording on.
	Enabled bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Backend  BackendSettings
	Auth     AuthSettings
	Contexts ContextSettings
	History  HistorySettings
}

// DefaultRequestTimeout bounds backend requests when no timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// DefaultAppSettings returns settings with sensible defaults.
// The backend URL is left empty and must be configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			Timeout: DefaultRequestTimeout,
		},
		Auth: AuthSettings{
			Method: AuthMethodNone,
		},
		Contexts: ContextSettings{
			VersionOrder: VersionOrderLexicographic,
		},
		History: HistorySettings{
			Enabled: true,
		},
	}
}
