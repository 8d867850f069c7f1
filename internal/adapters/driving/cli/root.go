// Package cli implements the agentops command tree with cobra.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Logs      driving.LogService
	Inference driving.InferenceService
	Contexts  driving.ContextService
	Audit     driving.AuditService
	Costs     driving.CostService
	History   driving.HistoryService
	Settings  driving.SettingsService

	// WatchConfig reloads configuration while a long-running command is active.
	// It blocks until ctx is cancelled. Nil disables reloading.
	WatchConfig ConfigWatcher
}

// ConfigWatcher reloads configuration until ctx is cancelled, calling
// onReload after each attempt with its outcome. onReload may be nil.
type ConfigWatcher func(ctx context.Context, onReload func(error)) error

// Options are the global flag values passed to the bootstrap function.
type Options struct {
	ConfigDir string
	BaseURL   string
	Verbose   bool

	// NoHistory keeps query history in memory for this run only.
	NoHistory bool
}

// Bootstrap builds services from global options.
// The returned cleanup runs after the command completes.
type Bootstrap func(opts Options) (*Services, func(), error)

var (
	logService       driving.LogService
	inferenceService driving.InferenceService
	contextService   driving.ContextService
	auditService     driving.AuditService
	costService      driving.CostService
	historyService   driving.HistoryService
	settingsService  driving.SettingsService
	configWatcher    ConfigWatcher

	bootstrap Bootstrap
	cleanup   func()

	globalOpts Options
)

var rootCmd = &cobra.Command{
	Use:   "agentops",
	Short: "Inspect agent logs, inference calls and prompt contexts",
	Long: `agentops is a terminal client for the agent-operations backend.

It searches agent and inference logs, correlates an agent invocation with
the inference calls it made, and browses an agent's prompt contexts grouped
by intent, type and version.

Configure the backend first:
  agentops settings backend --url https://ops.example.com/api`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.agentops)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.BaseURL, "base-url", "", "backend base URL, overrides the configured value")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.NoHistory, "no-history", false, "do not persist query history to disk")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services once flags are parsed.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	logService = s.Logs
	inferenceService = s.Inference
	contextService = s.Contexts
	auditService = s.Audit
	costService = s.Costs
	historyService = s.History
	settingsService = s.Settings
	configWatcher = s.WatchConfig
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx as every command's context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)
	if bootstrap == nil || isOffline(cmd) {
		return nil
	}

	services, done, err := bootstrap(globalOpts)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

// isOffline reports whether cmd runs without services (version, help).
func isOffline(cmd *cobra.Command) bool {
	return cmd == versionCmd || cmd.Name() == "help" || cmd.Name() == "completion"
}

// errNotConfigured is returned when a command's service was never wired.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

// describeError prefixes err with action and a user-facing hint for backend failures.
func describeError(action string, err error) error {
	msg := services.UserMessage(err)
	if msg == "" || msg == err.Error() {
		return fmt.Errorf("%s: %w", action, err)
	}
	return fmt.Errorf("%s: %s: %w", action, msg, err)
}
