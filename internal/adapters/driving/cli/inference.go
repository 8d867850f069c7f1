package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
)

var (
	inferenceAt        string
	inferenceAgentCode string
	inferenceJSON      bool
	inferenceDetail    bool
)

var inferenceCmd = &cobra.Command{
	Use:   "inference <request-id>",
	Short: "Show the inference calls made for an agent request",
	Long: `Correlates an agent invocation with the inference logs it produced.

Inference logs are searched within 12 hours either side of --at and kept when
both their request ID and agent code match exactly. Without --agent-code the
agent log for the request is looked up first and its agent code is used.

Examples:
  agentops inference 7f0c2e --at "2024-03-01 10:15"
  agentops inference 7f0c2e --at 2024-03-01T10:15:00Z --agent-code BILLING --detail`,
	Args: cobra.ExactArgs(1),
	RunE: runInference,
}

func init() {
	inferenceCmd.Flags().StringVar(&inferenceAt, "at", "", "time of the agent invocation (required)")
	inferenceCmd.Flags().StringVar(&inferenceAgentCode, "agent-code", "", "agent code to correlate on")
	inferenceCmd.Flags().BoolVar(&inferenceJSON, "json", false, "output the tree as JSON")
	inferenceCmd.Flags().BoolVar(&inferenceDetail, "detail", false, "print every iteration of each inference call")
	_ = inferenceCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(inferenceCmd)
}

func runInference(cmd *cobra.Command, args []string) error {
	if inferenceService == nil {
		return errNotConfigured("inference")
	}

	requestID := strings.TrimSpace(args[0])
	at, err := parseTimeFlag("at", inferenceAt)
	if err != nil {
		return err
	}

	var tree *domain.InferenceTree
	if inferenceAgentCode != "" {
		parent := domain.LogRecord{
			RequestID: requestID,
			Source:    domain.LogSourceAgent.String(),
			CreatedOn: domain.FormatTimestamp(at),
		}
		tree, err = inferenceService.BuildTree(cmd.Context(), requestID, inferenceAgentCode, parent)
	} else {
		tree, err = treeForRequest(cmd, requestID, at)
	}
	if err != nil {
		return describeError("inference lookup failed", err)
	}

	if inferenceJSON {
		return services.ExportInferenceTree(cmd.OutOrStdout(), tree)
	}
	outputInferenceTree(cmd.OutOrStdout(), tree, inferenceDetail)
	return nil
}

// treeForRequest finds the agent log for requestID and builds its tree.
func treeForRequest(cmd *cobra.Command, requestID string, at time.Time) (*domain.InferenceTree, error) {
	parents, err := inferenceService.AgentLogs(cmd.Context(), requestID, at)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, fmt.Errorf("%w: no agent log for request %s near %s (pass --agent-code to skip the lookup)",
			domain.ErrNotFound, requestID, at.Local().Format("2006-01-02 15:04"))
	}
	if len(parents) > 1 {
		cmd.PrintErrf("Found %d agent logs for request %s, using the earliest\n", len(parents), requestID)
	}
	return inferenceService.TreeFor(cmd.Context(), parents[0])
}

func outputInferenceTree(w io.Writer, tree *domain.InferenceTree, detail bool) {
	_, _ = fmt.Fprintf(w, "Agent %s  request %s  %s  [%s]\n",
		tree.AgentCode, orDash(tree.Agent.RequestID), displayTime(tree.Agent.CreatedOn), orDash(tree.Source))

	if tree.IsEmpty() {
		_, _ = fmt.Fprintln(w, "└── No inference logs found.")
		return
	}

	for i := range tree.Inference {
		rec := &tree.Inference[i]
		branch, indent := "├── ", "│   "
		if i == len(tree.Inference)-1 {
			branch, indent = "└── ", "    "
		}
		_, _ = fmt.Fprintf(w, "%s%s  %s  %s\n", branch, displayTime(rec.CreatedOn), orDash(rec.ID),
			services.Summary(rec.Content, summaryWidth))
		if detail {
			for _, line := range strings.Split(services.FormatContent(rec.Content), "\n") {
				_, _ = fmt.Fprintf(w, "%s  %s\n", indent, line)
			}
		}
	}
	_, _ = fmt.Fprintf(w, "\n%d inference calls\n", len(tree.Inference))
}
