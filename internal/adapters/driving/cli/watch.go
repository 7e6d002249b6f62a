package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/adapters/driven/filewatcher"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

var watchGroup int64

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Watch a directory and ingest new files into a group",
	Long: `Watch monitors a directory and ingests every created or modified file
with a supported extension into the target group. Runs until
interrupted. Removed files are not deleted from the index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestionService == nil {
			return errors.New("ingestion service not configured")
		}
		if watchGroup == 0 {
			return errors.New("--group is required")
		}

		watcher, err := filewatcher.New(extractorReg.SupportedExtensions())
		if err != nil {
			return err
		}
		defer watcher.Stop()

		events, err := watcher.Watch(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		cmd.Printf("Watching %s, ingesting into group %d (Ctrl-C to stop)\n", args[0], watchGroup)
		for event := range events {
			if event.Op == driven.FileRemoved {
				logger.Debug("Ignoring removal of %s", event.Path)
				continue
			}

			content, err := os.ReadFile(event.Path)
			if err != nil {
				logger.Warn("Reading %s: %v", event.Path, err)
				continue
			}

			result, err := ingestionService.Ingest(cmd.Context(), content, filepath.Base(event.Path), watchGroup)
			if err != nil {
				logger.Warn("Ingesting %s: %v", event.Path, err)
				continue
			}
			cmd.Printf("Ingested %s as document %s (%d chunks)\n", filepath.Base(event.Path), result.DocumentID, result.ChunkCount)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().Int64VarP(&watchGroup, "group", "g", 0, "target group ID (required)")
	rootCmd.AddCommand(watchCmd)
}
