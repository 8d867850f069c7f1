package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

var (
	auditJSON   bool
	auditExport string
	auditOut    string
	auditTree   bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show every log written for one request or session",
	Long: `Reads the audit trail of a request or a session, oldest first.

Unlike logs and inference, no time range is needed: the backend returns
every record carrying the ID.

Examples:
  agentops audit request 7f0c2e
  agentops audit request 7f0c2e --tree
  agentops audit session s-81a4 --export csv --out session.csv`,
}

var auditRequestCmd = &cobra.Command{
	Use:   "request <request-id>",
	Short: "Show the logs of one request",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditRequest,
}

var auditSessionCmd = &cobra.Command{
	Use:   "session <session-id>",
	Short: "Show the logs of one session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditSession,
}

func init() {
	for _, c := range []*cobra.Command{auditRequestCmd, auditSessionCmd} {
		c.Flags().BoolVar(&auditJSON, "json", false, "output results as JSON")
		c.Flags().StringVar(&auditExport, "export", "", "export results as csv or json")
		c.Flags().StringVarP(&auditOut, "out", "o", "", "export file (default agentops-logs-<ms>.<format>, - for stdout)")
		auditCmd.AddCommand(c)
	}
	auditRequestCmd.Flags().BoolVar(&auditTree, "tree", false, "correlate the request's agent log with its inference calls")
	rootCmd.AddCommand(auditCmd)
}

func runAuditRequest(cmd *cobra.Command, args []string) error {
	if auditService == nil {
		return errNotConfigured("audit")
	}
	if auditTree {
		if inferenceService == nil {
			return errNotConfigured("inference")
		}
		if auditJSON || auditExport != "" {
			return fmt.Errorf("%w: --tree cannot be combined with --json or --export", domain.ErrInvalidInput)
		}
	}

	format, err := auditFormat()
	if err != nil {
		return err
	}

	records, err := auditService.ByRequest(cmd.Context(), args[0])
	if err != nil {
		return describeError("request audit failed", err)
	}
	if !auditTree {
		return outputAudit(cmd, records, format)
	}

	parent, ok := services.FirstAgentLog(records)
	if !ok {
		return fmt.Errorf("%w: request %s has no agent log", domain.ErrNotFound, strings.TrimSpace(args[0]))
	}
	tree, err := inferenceService.TreeFor(cmd.Context(), parent)
	if err != nil {
		return describeError("inference lookup failed", err)
	}
	outputInferenceTree(cmd.OutOrStdout(), tree, false)
	return nil
}

func runAuditSession(cmd *cobra.Command, args []string) error {
	if auditService == nil {
		return errNotConfigured("audit")
	}

	format, err := auditFormat()
	if err != nil {
		return err
	}

	records, err := auditService.BySession(cmd.Context(), args[0])
	if err != nil {
		return describeError("session audit failed", err)
	}
	return outputAudit(cmd, records, format)
}

// auditFormat parses --export, returning the zero format when it is unset.
func auditFormat() (services.ExportFormat, error) {
	var format services.ExportFormat
	if auditExport == "" {
		return format, nil
	}
	return services.ParseExportFormat(auditExport)
}

func outputAudit(cmd *cobra.Command, records []domain.LogRecord, format services.ExportFormat) error {
	switch {
	case auditExport != "":
		return exportLogs(cmd, records, format, auditOut)
	case auditJSON:
		return outputJSON(cmd, records)
	default:
		outputLogsTable(cmd.OutOrStdout(), records)
		return nil
	}
}
