package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/core/services"
)

var (
	askGroup int64
	askTop   int
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask QUERY",
	Short: "Ask a question against the corpus",
	Long: `Ask routes the question to the most relevant group (or the one named
with --group), searches it by embedding similarity and synthesises an
answer grounded in the retrieved chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if retrievalService == nil {
			return errors.New("retrieval service not configured")
		}

		query := strings.Join(args, " ")

		var groupID *int64
		if askGroup != 0 {
			groupID = &askGroup
		}

		answer, err := retrievalService.Answer(cmd.Context(), query, groupID, askTop)
		if err != nil {
			return err
		}

		if askJSON {
			return printJSON(cmd, answer)
		}

		cmd.Println(answer.Answer)
		if answer.GroupUsed != "" {
			cmd.Printf("\n(group: %s, chunks: %d)\n", answer.GroupUsed, answer.ChunksFound)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Int64VarP(&askGroup, "group", "g", 0, "skip routing and search this group")
	askCmd.Flags().IntVarP(&askTop, "top", "k", services.DefaultTopK, "number of chunks to retrieve")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(askCmd)
}
