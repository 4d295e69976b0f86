package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/errors"
	"github.com/qt-konan/zeroiq-bot/logger"
	"github.com/qt-konan/zeroiq-bot/memory"
)

// DbCmd represents the db command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database operations",
	Long:  `Inspect and manage the learned store database.`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := memory.NewStore(database, logger.Logger)
	count, err := store.Count(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to count entries")
	}

	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	fmt.Printf("Entries:   %d\n", count)
	fmt.Printf("Threshold: %.2f\n", cfg.Match.Threshold)
	if cfg.Snapshot.Enabled {
		fmt.Printf("Snapshot:  %s\n", cfg.Snapshot.Path)
	} else {
		fmt.Println("Snapshot:  disabled")
	}
	if cfg.Archive.Enabled {
		fmt.Printf("Archive:   %s (%s/%s)\n", cfg.Archive.Path, cfg.Archive.Remote, cfg.Archive.Branch)
	} else {
		fmt.Println("Archive:   disabled")
	}
	return nil
}
