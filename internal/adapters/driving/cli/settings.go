package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

var (
	settingsBackendURL     string
	settingsBackendTimeout int
	settingsBackendRate    float64

	settingsAuthMethod       string
	settingsAuthToken        string
	settingsAuthTokenURL     string
	settingsAuthClientID     string
	settingsAuthClientSecret string
	settingsAuthScopes       []string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the backend connection, authentication and display options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the backend, authentication and display options.`,
	RunE:  runSettingsWizard,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Configure the backend connection",
	Long: `Set the backend base URL, request timeout and client-side rate limit.

The URL is prompted for when --url is omitted.`,
	RunE: runSettingsBackend,
}

var settingsAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure backend authentication",
	Long: `Configure how requests to the backend are authenticated.

Available methods:
  none                - No credentials
  token               - Static bearer token
  client_credentials  - OAuth2 client credentials grant

Secrets that are not passed as flags are prompted for without echo.`,
	RunE: runSettingsAuth,
}

var settingsVersionOrderCmd = &cobra.Command{
	Use:   "version-order [lexicographic|numeric]",
	Short: "Set how context versions are ordered",
	Long: `Set how version groups are ordered in context trees.

  lexicographic  - String order, so "10" sorts before "9"
  numeric        - Numeric versions compare by value`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsVersionOrder,
}

var settingsHistoryCmd = &cobra.Command{
	Use:       "history <on|off>",
	Short:     "Turn query history on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runSettingsHistory,
}

func init() {
	settingsBackendCmd.Flags().StringVar(&settingsBackendURL, "url", "", "backend base URL")
	settingsBackendCmd.Flags().IntVar(&settingsBackendTimeout, "timeout", 0, "request timeout in seconds (0 keeps current)")
	settingsBackendCmd.Flags().Float64Var(&settingsBackendRate, "rate", 0, "maximum requests per second (0 = unlimited)")

	settingsAuthCmd.Flags().StringVar(&settingsAuthMethod, "method", "", "auth method: none, token, client_credentials")
	settingsAuthCmd.Flags().StringVar(&settingsAuthToken, "token", "", "static bearer token")
	settingsAuthCmd.Flags().StringVar(&settingsAuthTokenURL, "token-url", "", "OAuth2 token endpoint")
	settingsAuthCmd.Flags().StringVar(&settingsAuthClientID, "client-id", "", "OAuth2 client ID")
	settingsAuthCmd.Flags().StringVar(&settingsAuthClientSecret, "client-secret", "", "OAuth2 client secret")
	settingsAuthCmd.Flags().StringSliceVar(&settingsAuthScopes, "scopes", nil, "OAuth2 scopes (comma separated)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	settingsCmd.AddCommand(settingsAuthCmd)
	settingsCmd.AddCommand(settingsVersionOrderCmd)
	settingsCmd.AddCommand(settingsHistoryCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Backend settings
	cmd.Println("[Backend]")
	if settings.Backend.IsConfigured() {
		cmd.Printf("  Base URL: %s\n", settings.Backend.BaseURL)
	} else {
		cmd.Printf("  Base URL: (not set)\n")
	}
	cmd.Printf("  Timeout: %s\n", settings.Backend.Timeout)
	if settings.Backend.RateLimit > 0 {
		cmd.Printf("  Rate limit: %s req/s\n", strconv.FormatFloat(settings.Backend.RateLimit, 'f', -1, 64))
	} else {
		cmd.Printf("  Rate limit: unlimited\n")
	}
	cmd.Println()

	// Auth settings
	cmd.Println("[Auth]")
	cmd.Printf("  Method: %s\n", settings.Auth.Method.Description())
	switch settings.Auth.Method {
	case domain.AuthMethodToken:
		cmd.Printf("  Token: %s\n", maskSecret(settings.Auth.Token))
	case domain.AuthMethodClientCredentials:
		cmd.Printf("  Token URL: %s\n", orDash(settings.Auth.TokenURL))
		cmd.Printf("  Client ID: %s\n", orDash(settings.Auth.ClientID))
		cmd.Printf("  Client secret: %s\n", maskSecret(settings.Auth.ClientSecret))
		if len(settings.Auth.Scopes) > 0 {
			cmd.Printf("  Scopes: %s\n", strings.Join(settings.Auth.Scopes, ", "))
		}
	}
	cmd.Println()

	// Display settings
	cmd.Println("[Contexts]")
	cmd.Printf("  Version order: %s\n", settings.Contexts.VersionOrder.Description())
	cmd.Println()

	cmd.Println("[History]")
	if settings.History.Enabled {
		cmd.Printf("  Enabled: yes\n")
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'agentops settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("AgentOps Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Backend
	cmd.Println("Step 1: Backend")
	cmd.Println("---------------")
	if err := configureBackend(cmd, reader, "", 0, settings.Backend.RateLimit); err != nil {
		return err
	}

	// Step 2: Authentication
	cmd.Println("Step 2: Authentication")
	cmd.Println("----------------------")
	if err := configureAuth(cmd, reader, ""); err != nil {
		return err
	}

	// Step 3: Version order
	cmd.Println("Step 3: Context Version Order")
	cmd.Println("-----------------------------")
	order := selectVersionOrder(cmd, reader)
	if err := settingsService.SetVersionOrder(order); err != nil {
		return fmt.Errorf("failed to set version order: %w", err)
	}
	cmd.Printf("Version order set to: %s\n\n", order.Description())

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsBackend(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	if settingsBackendTimeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative", domain.ErrInvalidInput)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	timeout := time.Duration(settingsBackendTimeout) * time.Second
	return configureBackend(cmd, reader, settingsBackendURL, timeout, settingsBackendRate)
}

func runSettingsAuth(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureAuth(cmd, reader, settingsAuthMethod)
}

func runSettingsVersionOrder(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	var order domain.VersionOrder
	if len(args) == 1 {
		order = domain.VersionOrder(strings.ToLower(args[0]))
	} else {
		order = selectVersionOrder(cmd, bufio.NewReader(cmd.InOrStdin()))
	}

	if err := settingsService.SetVersionOrder(order); err != nil {
		return fmt.Errorf("failed to set version order: %w", err)
	}
	cmd.Printf("Version order set to: %s\n", order.Description())
	return nil
}

func runSettingsHistory(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		enabled = true
	case "off", "false", "no":
		enabled = false
	default:
		return fmt.Errorf("%w: expected on or off, got %q", domain.ErrInvalidInput, args[0])
	}

	if err := settingsService.SetHistoryEnabled(enabled); err != nil {
		return fmt.Errorf("failed to update history setting: %w", err)
	}
	if enabled {
		cmd.Println("History enabled.")
	} else {
		cmd.Println("History disabled. Existing entries are kept until 'agentops history clear'.")
	}
	return nil
}

func configureBackend(cmd *cobra.Command, reader *bufio.Reader, baseURL string, timeout time.Duration, rate float64) error {
	if baseURL == "" {
		current := ""
		if settings, err := settingsService.Get(); err == nil {
			current = settings.Backend.BaseURL
		}
		if current != "" {
			cmd.Printf("Enter backend URL [%s]: ", current)
		} else {
			cmd.Print("Enter backend URL: ")
		}
		baseURL = readLine(reader)
		if baseURL == "" {
			baseURL = current
		}
		if baseURL == "" {
			return errors.New("backend URL is required")
		}
	}

	if err := settingsService.SetBackend(baseURL, timeout, rate); err != nil {
		return fmt.Errorf("failed to configure backend: %w", err)
	}

	cmd.Printf("Backend configured: %s\n\n", strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	return nil
}

func configureAuth(cmd *cobra.Command, reader *bufio.Reader, method string) error {
	var selected domain.AuthMethod
	if method != "" {
		selected = domain.AuthMethod(strings.ToLower(method))
		if !selected.IsValid() {
			return fmt.Errorf("%w: unknown auth method %q", domain.ErrInvalidInput, method)
		}
	} else {
		cmd.Println("Select Authentication Method")
		methods := domain.AllAuthMethods()
		for i, m := range methods {
			cmd.Printf("  %d. %s\n", i+1, m.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		idx := parseChoice(readLine(reader), len(methods), 1)
		selected = methods[idx-1]
	}

	auth := domain.AuthSettings{Method: selected}
	switch selected {
	case domain.AuthMethodToken:
		auth.Token = settingsAuthToken
		if auth.Token == "" {
			cmd.Print("Enter bearer token: ")
			auth.Token = readSecret(cmd, reader)
			cmd.Println()
		}
		if auth.Token == "" {
			return errors.New("a token is required for this method")
		}

	case domain.AuthMethodClientCredentials:
		auth.TokenURL = settingsAuthTokenURL
		if auth.TokenURL == "" {
			cmd.Print("Enter token URL: ")
			auth.TokenURL = readLine(reader)
		}
		auth.ClientID = settingsAuthClientID
		if auth.ClientID == "" {
			cmd.Print("Enter client ID: ")
			auth.ClientID = readLine(reader)
		}
		auth.ClientSecret = settingsAuthClientSecret
		if auth.ClientSecret == "" {
			cmd.Print("Enter client secret: ")
			auth.ClientSecret = readSecret(cmd, reader)
			cmd.Println()
		}
		auth.Scopes = settingsAuthScopes
		if !auth.IsConfigured() {
			return errors.New("token URL, client ID and client secret are required for this method")
		}
	}

	if err := settingsService.SetAuth(auth); err != nil {
		return fmt.Errorf("failed to configure authentication: %w", err)
	}

	cmd.Printf("Authentication configured: %s\n\n", selected.Description())
	return nil
}

func selectVersionOrder(cmd *cobra.Command, reader *bufio.Reader) domain.VersionOrder {
	orders := domain.AllVersionOrders()
	for i, o := range orders {
		cmd.Printf("  %d. %s\n", i+1, o.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(orders), 1)
	return orders[idx-1]
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when the command reads a terminal.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if in, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		secret, err := term.ReadPassword(int(in.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

// maskSecret shows only the edges of a token or client secret.
func maskSecret(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "..." + secret[len(secret)-4:]
	}
}
