package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for agentops.

The TUI searches logs, opens the inference calls of an agent log and browses
an agent's contexts as an expandable intent / type / version tree.
Configuration changes on disk are picked up while it runs.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Select
  Space    - Expand or collapse
  Esc      - Back / Cancel
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// buildTUIPorts collects the wired services for the TUI.
func buildTUIPorts() *tui.Ports {
	ports := tui.NewPorts(logService, inferenceService, contextService)
	ports.History = historyService
	ports.Settings = settingsService
	return ports
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(buildTUIPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.WithContext(ctx)

	p := app.Program()

	if configWatcher != nil {
		go func() {
			err := configWatcher(ctx, func(reloadErr error) {
				p.Send(messages.ConfigReloaded{Err: reloadErr})
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
