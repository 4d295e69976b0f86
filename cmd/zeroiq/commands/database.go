package commands

import (
	"database/sql"

	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/db"
	"github.com/qt-konan/zeroiq-bot/errors"
	"github.com/qt-konan/zeroiq-bot/logger"
	"github.com/qt-konan/zeroiq-bot/memory"
	"github.com/qt-konan/zeroiq-bot/snapshot"
	"github.com/qt-konan/zeroiq-bot/snapshot/archive"
)

// openDatabase opens and migrates a database using the specified path.
// If dbPath is empty, it resolves the path from config.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		dbPath = cfg.Database.Path
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	return database, nil
}

// buildStore wires a Store with the configured snapshot exporter and,
// when enabled, the git archive pusher.
func buildStore(database *sql.DB, cfg *config.Config) *memory.Store {
	store := memory.NewStore(database, logger.Logger)

	if cfg.Snapshot.Enabled {
		writer := snapshot.NewWriter(cfg.Snapshot.Path, logger.Logger)

		var pusher snapshot.Pusher
		if cfg.Archive.Enabled && cfg.Archive.Path != "" {
			pusher = archive.New(cfg.Archive, cfg.Snapshot.Path, logger.Logger)
		}

		store.SetExporter(&snapshot.Pipeline{
			Writer: writer,
			Pusher: pusher,
			Logger: logger.Logger,
		})
	}

	return store
}
