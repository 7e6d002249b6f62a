package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestGroup int64

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Ingest a document into a group",
	Long: `Ingest extracts text from the file, splits it into chunks, embeds them
and indexes the result in the target group. The document only becomes
visible to queries when the whole pipeline succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestionService == nil {
			return errors.New("ingestion service not configured")
		}
		if ingestGroup == 0 {
			return errors.New("--group is required")
		}

		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		result, err := ingestionService.Ingest(cmd.Context(), content, filepath.Base(path), ingestGroup)
		if err != nil {
			return err
		}

		cmd.Printf("Ingested %s as document %s (%d chunks)\n", filepath.Base(path), result.DocumentID, result.ChunkCount)
		return nil
	},
}

func init() {
	ingestCmd.Flags().Int64VarP(&ingestGroup, "group", "g", 0, "target group ID (required)")
	rootCmd.AddCommand(ingestCmd)
}
