package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/errors"
	"github.com/qt-konan/zeroiq-bot/logger"
	"github.com/qt-konan/zeroiq-bot/snapshot"
	"github.com/qt-konan/zeroiq-bot/snapshot/archive"
)

// ExportCmd represents the export command
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of the learned store",
	Long: `Write the full learned store to the configured snapshot file,
regardless of whether snapshot export is enabled for the server.

With --push the snapshot is also committed and pushed to the
configured git archive.

Examples:
  zeroiq export
  zeroiq export --push`,
	RunE: runExport,
}

var exportPushFlag bool

func init() {
	ExportCmd.Flags().BoolVar(&exportPushFlag, "push", false, "Push the snapshot to the git archive after writing")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := buildStore(database, cfg)
	entries, err := store.All(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to read store")
	}

	writer := snapshot.NewWriter(cfg.Snapshot.Path, logger.Logger)
	if err := writer.Export(cmd.Context(), entries); err != nil {
		return errors.Wrap(err, "failed to write snapshot")
	}
	fmt.Printf("Exported %d entries to %s\n", len(entries), cfg.Snapshot.Path)

	if exportPushFlag {
		if cfg.Archive.Path == "" {
			return errors.New("archive path is not configured")
		}
		pusher := archive.New(cfg.Archive, cfg.Snapshot.Path, logger.Logger)
		if err := pusher.Push(cmd.Context(), cfg.Snapshot.Path); err != nil {
			return errors.Wrap(err, "failed to push snapshot to archive")
		}
		fmt.Println("Pushed snapshot to archive")
	}

	return nil
}
