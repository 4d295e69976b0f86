package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qt-konan/zeroiq-bot/cmd/zeroiq/commands"
	"github.com/qt-konan/zeroiq-bot/logger"
)

var rootCmd = &cobra.Command{
	Use:   "zeroiq",
	Short: "zeroiq - Self-learning question/answer bot",
	Long: `zeroiq - A self-learning chat bot that answers from taught pairs.

Unknown questions come back as a teachable prompt; replying to that
prompt stores the answer. Matching is fuzzy, so close-enough phrasings
of a taught question still answer.

Available commands:
  serve   - Start the WebSocket chat server
  ask     - Ask a one-shot question from the command line
  teach   - Store a question/answer pair directly
  export  - Write a snapshot of the learned store
  restore - Load a snapshot into the store
  db      - Database operations

Examples:
  zeroiq serve                                  # Start the chat server
  zeroiq teach "capital of France" "Paris"      # Teach a pair
  zeroiq ask "what is the capital of France"    # Ask it back
  zeroiq export --push                          # Snapshot + git archive`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger before any command runs
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.AskCmd)
	rootCmd.AddCommand(commands.TeachCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.RestoreCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
