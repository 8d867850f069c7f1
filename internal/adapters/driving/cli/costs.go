package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

var (
	metricsAgent  string
	metricsMetric string
	metricsStart  string
	metricsEnd    string
	metricsJSON   bool

	monthlyAgent  string
	monthlyUser   string
	monthlyMonth  string
	monthlyByUser bool
	monthlyJSON   bool
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Report agent metrics and monthly spend",
	Long: `Reads the metrics agents record per call and the monthly cost rollups.

Examples:
  agentops costs metrics --agent BILLING --start 2024-03-01
  agentops costs monthly --month 2024-03
  agentops costs monthly --by-user --agent BILLING`,
}

var costsMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List recorded agent metrics, newest first",
	Args:  cobra.NoArgs,
	RunE:  runCostsMetrics,
}

var costsMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show monthly spend per agent, or per user with --by-user",
	Args:  cobra.NoArgs,
	RunE:  runCostsMonthly,
}

func init() {
	costsMetricsCmd.Flags().StringVar(&metricsAgent, "agent", "", "restrict to one agent code")
	costsMetricsCmd.Flags().StringVar(&metricsMetric, "metric", "", "restrict to one metric code")
	costsMetricsCmd.Flags().StringVar(&metricsStart, "start", "", "range start")
	costsMetricsCmd.Flags().StringVar(&metricsEnd, "end", "", "range end")
	costsMetricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "output results as JSON")

	costsMonthlyCmd.Flags().StringVar(&monthlyAgent, "agent", "", "restrict to one agent code")
	costsMonthlyCmd.Flags().StringVar(&monthlyUser, "user", "", "restrict to one user (implies --by-user)")
	costsMonthlyCmd.Flags().StringVar(&monthlyMonth, "month", "", "restrict to one month, as the backend writes it (e.g. 2024-03)")
	costsMonthlyCmd.Flags().BoolVar(&monthlyByUser, "by-user", false, "break spend down per user")
	costsMonthlyCmd.Flags().BoolVar(&monthlyJSON, "json", false, "output results as JSON")

	costsCmd.AddCommand(costsMetricsCmd, costsMonthlyCmd)
	rootCmd.AddCommand(costsCmd)
}

func runCostsMetrics(cmd *cobra.Command, _ []string) error {
	if costService == nil {
		return errNotConfigured("cost")
	}

	q := domain.MetricQuery{AgentCode: metricsAgent, MetricCode: metricsMetric}
	if metricsStart != "" {
		t, err := parseTimeFlag("start", metricsStart)
		if err != nil {
			return err
		}
		q.Start = t
	}
	if metricsEnd != "" {
		t, err := parseTimeFlag("end", metricsEnd)
		if err != nil {
			return err
		}
		q.End = t
	}

	metrics, err := costService.Metrics(cmd.Context(), q)
	if err != nil {
		return describeError("metrics lookup failed", err)
	}
	if metricsJSON {
		return outputJSON(cmd, metrics)
	}
	outputMetricsTable(cmd.OutOrStdout(), metrics)
	return nil
}

func runCostsMonthly(cmd *cobra.Command, _ []string) error {
	if costService == nil {
		return errNotConfigured("cost")
	}

	f := domain.CostFilter{AgentCode: monthlyAgent, UserName: monthlyUser, Month: monthlyMonth}
	byUser := monthlyByUser || monthlyUser != ""

	var (
		costs []domain.MonthlyCost
		err   error
	)
	if byUser {
		costs, err = costService.UserMonthly(cmd.Context(), f)
	} else {
		costs, err = costService.AgentMonthly(cmd.Context(), f)
	}
	if err != nil {
		return describeError("cost lookup failed", err)
	}
	if monthlyJSON {
		return outputJSON(cmd, costs)
	}
	outputCostsTable(cmd.OutOrStdout(), costs, byUser)
	return nil
}

func outputMetricsTable(w io.Writer, metrics []domain.AgentMetric) {
	if len(metrics) == 0 {
		_, _ = fmt.Fprintln(w, "No metrics found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tAGENT\tMETRIC\tVALUE\tMODEL\tTOKENS\tCOST\tUSER")
	for _, m := range metrics {
		tokens := "-"
		if m.TokenCount > 0 {
			tokens = strconv.Itoa(m.TokenCount)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			displayTime(m.Timestamp),
			orDash(m.AgentCode),
			orDash(m.MetricCode),
			strconv.FormatFloat(m.MetricValue, 'f', -1, 64),
			orDash(m.Model),
			tokens,
			formatCost(m.Cost),
			orDash(m.UserName),
		)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "\n%d metrics\n", len(metrics))
}

func outputCostsTable(w io.Writer, costs []domain.MonthlyCost, byUser bool) {
	if len(costs) == 0 {
		_, _ = fmt.Fprintln(w, "No costs found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if byUser {
		_, _ = fmt.Fprintln(tw, "MONTH\tAGENT\tUSER\tCOST")
	} else {
		_, _ = fmt.Fprintln(tw, "MONTH\tAGENT\tCOST")
	}
	for _, c := range costs {
		if byUser {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", orDash(c.Month), orDash(c.AgentCode), orDash(c.UserName), formatCost(c.TotalCost))
		} else {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", orDash(c.Month), orDash(c.AgentCode), formatCost(c.TotalCost))
		}
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "\nTotal %s across %d rows\n", formatCost(domain.TotalCost(costs)), len(costs))
}

func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', 4, 64)
}
