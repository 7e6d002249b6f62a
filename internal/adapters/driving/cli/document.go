package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var summaryWords int

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc"},
	Short:   "Manage individual documents",
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestionService == nil {
			return errors.New("ingestion service not configured")
		}

		if err := ingestionService.DeleteDocument(cmd.Context(), args[0]); err != nil {
			return err
		}

		cmd.Printf("Deleted document %s\n", args[0])
		return nil
	},
}

var documentSummaryCmd = &cobra.Command{
	Use:   "summary ID",
	Short: "Summarise an indexed document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if retrievalService == nil {
			return errors.New("retrieval service not configured")
		}

		summary, err := retrievalService.Summarise(cmd.Context(), args[0], summaryWords)
		if err != nil {
			return err
		}

		cmd.Println(summary)
		return nil
	},
}

func init() {
	documentSummaryCmd.Flags().IntVarP(&summaryWords, "words", "w", 0, "maximum summary length in words (default 200)")

	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentSummaryCmd)
	rootCmd.AddCommand(documentCmd)
}
