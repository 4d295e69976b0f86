package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qt-konan/zeroiq-bot/bot"
	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/errors"
	"github.com/qt-konan/zeroiq-bot/logger"
	"github.com/qt-konan/zeroiq-bot/server"
)

// ServeCmd represents the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat WebSocket server",
	Long: `Start the self-learning bot behind a WebSocket chat endpoint.

Clients connect to /ws and exchange JSON frames. Asking an unknown
question yields a teachable prompt; replying to that prompt teaches
the answer. Every learned pair is persisted and exported to the
configured snapshot, and optionally pushed to a git archive.

Examples:
  zeroiq serve                 # Listen on the configured port
  zeroiq serve --port 9000     # Override the port`,
	RunE: runServe,
}

var servePortFlag int

func init() {
	ServeCmd.Flags().IntVar(&servePortFlag, "port", 0, "Override the configured server port")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	serverCfg := cfg.Server
	if servePortFlag > 0 {
		serverCfg.Port = servePortFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(engine, serverCfg, logger.Logger.Named("server"))
	return srv.Run(ctx)
}
