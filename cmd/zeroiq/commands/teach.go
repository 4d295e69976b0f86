package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qt-konan/zeroiq-bot/bot"
	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/errors"
)

// TeachCmd represents the teach command
var TeachCmd = &cobra.Command{
	Use:   "teach [question] [answer]",
	Short: "Teach the bot a question/answer pair",
	Long: `Store a question/answer pair directly, bypassing the chat
teach protocol. Re-teaching an existing question overwrites the
stored answer. The snapshot export runs after the write, same as a
chat-taught pair.

Examples:
  zeroiq teach "what is the capital of France" "Paris"`,
	Args: cobra.ExactArgs(2),
	RunE: runTeach,
}

func runTeach(cmd *cobra.Command, args []string) error {
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
	if err := store.Upsert(cmd.Context(), args[0], args[1], "cli"); err != nil {
		return errors.Wrap(err, "failed to store pair")
	}

	fmt.Println(bot.LearnedReply)
	return nil
}
