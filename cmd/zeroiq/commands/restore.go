package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qt-konan/zeroiq-bot/errors"
	"github.com/qt-konan/zeroiq-bot/logger"
	"github.com/qt-konan/zeroiq-bot/memory"
	"github.com/qt-konan/zeroiq-bot/snapshot"
)

// RestoreCmd represents the restore command
var RestoreCmd = &cobra.Command{
	Use:   "restore [snapshot-file]",
	Short: "Load a snapshot into the learned store",
	Long: `Load question/answer records from a snapshot file into the
store. Existing questions are overwritten by the snapshot's answers;
questions not present in the snapshot are left untouched.

Both the versioned snapshot format and the legacy bare-map form are
accepted.

Examples:
  zeroiq restore memory.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	records, err := snapshot.Read(args[0])
	if err != nil {
		return errors.Wrapf(err, "failed to read snapshot %s", args[0])
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	// Restore writes through a plain store so each record does not
	// trigger a snapshot export of its own.
	store := memory.NewStore(database, logger.Logger)

	restored := 0
	for _, rec := range records {
		if err := store.Upsert(cmd.Context(), rec.Question, rec.Answer, "restore"); err != nil {
			return errors.Wrapf(err, "failed to restore %q", rec.Question)
		}
		restored++
	}

	fmt.Printf("Restored %d entries from %s\n", restored, args[0])
	return nil
}
