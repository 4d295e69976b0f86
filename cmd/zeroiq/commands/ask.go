package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qt-konan/zeroiq-bot/bot"
	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/errors"
	"github.com/qt-konan/zeroiq-bot/logger"
)

// AskCmd represents the ask command
var AskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the bot a question",
	Long: `Ask a one-shot question against the learned store.

A close-enough stored question answers immediately. An unknown
question prints the teachable prompt; use 'zeroiq teach' to store
the answer directly.

Examples:
  zeroiq ask "what is the capital of France"
  zeroiq ask what is the capital of France`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
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
	engine := bot.NewEngine(store, cfg.Match.Threshold, cfg.Owner.ID, logger.Logger.Named("bot"))

	question := strings.Join(args, " ")
	out := engine.Handle(cmd.Context(), bot.Inbound{Sender: "cli", Text: question})
	fmt.Println(out.Text)
	return nil
}
