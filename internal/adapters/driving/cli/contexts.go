package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

var (
	contextsVersionID string
	contextsExpand    []string
	contextsExpandAll bool
	contextsJSON      bool
)

var contextsCmd = &cobra.Command{
	Use:   "contexts",
	Short: "Browse prompt contexts",
	Long:  `Browse an agent's prompt contexts and the version history of a prompt.`,
}

var contextsTreeCmd = &cobra.Command{
	Use:   "tree <agent-code>",
	Short: "Show an agent's contexts grouped by intent, type and version",
	Long: `Groups an agent's contexts by intent, then type, then version.

Nodes start collapsed. Expand one with --expand using an "intent",
"intent/type" or "intent/type/version" path; its ancestors expand with it.
Write a "/" inside a name as "\/" and a backslash as "\\".
Expanded version nodes list their contexts, newest first.

Examples:
  agentops contexts tree BILLING
  agentops contexts tree BILLING --expand refund/system
  agentops contexts tree BILLING --expand 'refund\/returns/system'
  agentops contexts tree BILLING --version-id v12 --expand-all`,
	Args: cobra.ExactArgs(1),
	RunE: runContextsTree,
}

var contextsVersionsCmd = &cobra.Command{
	Use:   "versions <prompt-code>",
	Short: "Show the stored versions of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextsVersions,
}

func init() {
	contextsTreeCmd.Flags().StringVar(&contextsVersionID, "version-id", "", "only include one version")
	contextsTreeCmd.Flags().StringArrayVarP(&contextsExpand, "expand", "e", nil, "expand a node path (repeatable)")
	contextsTreeCmd.Flags().BoolVarP(&contextsExpandAll, "expand-all", "a", false, "expand every node")
	contextsTreeCmd.Flags().BoolVar(&contextsJSON, "json", false, "output the tree as JSON")
	contextsVersionsCmd.Flags().BoolVar(&contextsJSON, "json", false, "output versions as JSON")

	contextsCmd.AddCommand(contextsTreeCmd)
	contextsCmd.AddCommand(contextsVersionsCmd)
	rootCmd.AddCommand(contextsCmd)
}

func runContextsTree(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errNotConfigured("context")
	}

	state := domain.NewViewState()
	for _, raw := range contextsExpand {
		p, ok := domain.ParseNodePath(raw)
		if !ok {
			return fmt.Errorf("%w: --expand %q is not a node path", domain.ErrInvalidInput, raw)
		}
		state.Expand(p)
	}

	tree, err := contextService.Tree(cmd.Context(), args[0], contextsVersionID)
	if err != nil {
		return describeError("context lookup failed", err)
	}

	if contextsJSON {
		return outputJSON(cmd, tree)
	}
	if contextsExpandAll {
		state.ExpandAll(*tree)
	}
	outputContextTree(cmd.OutOrStdout(), tree, state)
	return nil
}

func outputContextTree(w io.Writer, tree *domain.ContextTree, state *domain.ViewState) {
	if tree.Len() == 0 {
		_, _ = fmt.Fprintf(w, "No contexts found for agent %s.\n", tree.AgentCode)
		return
	}

	_, _ = fmt.Fprintf(w, "Agent %s (%d contexts)\n", tree.AgentCode, tree.Len())
	for _, p := range state.Visible(*tree) {
		depth := int(p.Level())
		indent := strings.Repeat("  ", depth)
		marker := "▸"
		if state.IsExpanded(p) {
			marker = "▾"
		}
		_, _ = fmt.Fprintf(w, "%s%s %s (%d)\n", indent, marker, p.Name(), countUnder(tree, p))

		if p.Level() != domain.LevelVersion || !state.IsExpanded(p) {
			continue
		}
		bucket, _ := tree.Bucket(p)
		for i := range bucket.Contexts {
			_, _ = fmt.Fprintf(w, "%s  %s\n", indent, contextLine(&bucket.Contexts[i]))
		}
	}
}

// countUnder returns the number of contexts below p.
func countUnder(tree *domain.ContextTree, p domain.NodePath) int {
	n := 0
	for _, ig := range tree.Intents {
		if ig.Name != p.Intent {
			continue
		}
		for _, tg := range ig.Types {
			if p.Type != "" && tg.Name != p.Type {
				continue
			}
			for _, vg := range tg.Versions {
				if p.Version != "" && vg.Version != p.Version {
					continue
				}
				n += len(vg.Contexts)
			}
		}
	}
	return n
}

func contextLine(c *domain.Context) string {
	var flags []string
	if c.Default {
		flags = append(flags, "default")
	}
	if c.Latest {
		flags = append(flags, "latest")
	}
	line := fmt.Sprintf("• %s  %s  modified %s by %s", orDash(c.PromptCode), orDash(c.ID),
		displayTime(c.ModifiedOn), orDash(c.ModifiedBy))
	if len(flags) > 0 {
		line += "  [" + strings.Join(flags, ", ") + "]"
	}
	return line
}

func runContextsVersions(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errNotConfigured("context")
	}

	versions, err := contextService.Versions(cmd.Context(), args[0])
	if err != nil {
		return describeError("version lookup failed", err)
	}

	if contextsJSON {
		return outputJSON(cmd, versions)
	}
	outputVersions(cmd.OutOrStdout(), args[0], versions)
	return nil
}

func outputVersions(w io.Writer, promptCode string, versions []domain.VersionSummary) {
	if len(versions) == 0 {
		_, _ = fmt.Fprintf(w, "No versions found for prompt %s.\n", promptCode)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tCONTEXTS\tMODIFIED ON\tMODIFIED BY")
	for _, v := range versions {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", v.Version, v.Count, displayTime(v.ModifiedOn), orDash(v.ModifiedBy))
	}
	_ = tw.Flush()
}
