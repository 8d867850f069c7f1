package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

var (
	logsStart  string
	logsEnd    string
	logsSource string
	logsJSON   bool
	logsExport string
	logsOut    string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Search logs by time range and source",
	Long: `Searches log records created between --start and --end, newest first.

Without flags the range is today from midnight (local time) until now.
Known sources: agent, inference, contextdiscovery.

Examples:
  agentops logs --source agent
  agentops logs --start 2024-03-01 --end "2024-03-01 18:00"
  agentops logs --source inference --export csv --out inference.csv`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsStart, "start", "", "range start (default today 00:00 local)")
	logsCmd.Flags().StringVar(&logsEnd, "end", "", "range end (default now)")
	logsCmd.Flags().StringVarP(&logsSource, "source", "s", "", "restrict to one source")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "output results as JSON")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "export results as csv or json")
	logsCmd.Flags().StringVarP(&logsOut, "out", "o", "", "export file (default agentops-logs-<ms>.<format>, - for stdout)")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, _ []string) error {
	if logService == nil {
		return errNotConfigured("log")
	}

	q, err := logQueryFromFlags()
	if err != nil {
		return err
	}

	var format services.ExportFormat
	if logsExport != "" {
		if format, err = services.ParseExportFormat(logsExport); err != nil {
			return err
		}
	}

	records, err := logService.Search(cmd.Context(), q)
	if err != nil {
		return describeError("log search failed", err)
	}

	switch {
	case logsExport != "":
		return exportLogs(cmd, records, format, logsOut)
	case logsJSON:
		return outputJSON(cmd, records)
	default:
		outputLogsTable(cmd.OutOrStdout(), records)
		return nil
	}
}

func logQueryFromFlags() (domain.LogQuery, error) {
	current := now()
	q := domain.LogQuery{
		Start:  startOfDay(current),
		End:    current,
		Source: logsSource,
	}
	if logsStart != "" {
		t, err := parseTimeFlag("start", logsStart)
		if err != nil {
			return q, err
		}
		q.Start = t
	}
	if logsEnd != "" {
		t, err := parseTimeFlag("end", logsEnd)
		if err != nil {
			return q, err
		}
		q.End = t
	}
	return q, nil
}

// exportLogs writes records to out, "-" for stdout or "" for a generated name.
func exportLogs(cmd *cobra.Command, records []domain.LogRecord, format services.ExportFormat, out string) error {
	if out == "-" {
		return services.ExportLogs(cmd.OutOrStdout(), records, format)
	}

	path := out
	if path == "" {
		path = services.ExportFileName(format, time.Now())
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := services.ExportLogs(f, records, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("export logs: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	cmd.Printf("Exported %d records to %s\n", len(records), path)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// summaryWidth bounds the content preview column.
const summaryWidth = 60

func outputLogsTable(w io.Writer, records []domain.LogRecord) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No logs found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CREATED\tSOURCE\tREQUEST ID\tAGENT CODE\tCONTENT")
	for i := range records {
		r := &records[i]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			displayTime(r.CreatedOn),
			orDash(r.Source),
			orDash(r.RequestID),
			services.AgentCodeOf(*r),
			services.Summary(r.Content, summaryWidth),
		)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "\n%d records\n", len(records))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
