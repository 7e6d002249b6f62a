package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/core/services"
)

var (
	searchGroup int64
	searchTop   int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search a group without synthesising an answer",
	Long: `Search runs the scoped similarity search only and prints the ranked
chunks with their scores. Useful for inspecting what ask would ground
its answer on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if retrievalService == nil {
			return errors.New("retrieval service not configured")
		}
		if searchGroup == 0 {
			return errors.New("--group is required")
		}

		query := strings.Join(args, " ")
		matches, err := retrievalService.SearchInGroup(cmd.Context(), searchGroup, query, searchTop)
		if err != nil {
			return err
		}

		if searchJSON {
			return printJSON(cmd, matches)
		}

		if len(matches) == 0 {
			cmd.Println("No matches.")
			return nil
		}
		for i, m := range matches {
			cmd.Printf("%d. [%.4f] %s\n", i+1, m.Score, m.ChunkID)
			cmd.Printf("   %s\n", truncate(m.Content, 200))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int64VarP(&searchGroup, "group", "g", 0, "group to search (required)")
	searchCmd.Flags().IntVarP(&searchTop, "top", "k", services.DefaultTopK, "number of chunks to return")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(searchCmd)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
