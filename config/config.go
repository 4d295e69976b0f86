package config

// Config represents the core zeroiq-bot configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Match    MatchConfig    `mapstructure:"match"`
	Server   ServerConfig   `mapstructure:"server"`
	Owner    OwnerConfig    `mapstructure:"owner"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MatchConfig configures fuzzy question matching
type MatchConfig struct {
	// Threshold is the minimum similarity score [0,1] for a stored question
	// to count as a match. Queries scoring below it get the unknown prompt.
	Threshold float64 `mapstructure:"threshold"`
}

// ServerConfig configures the WebSocket chat server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OwnerConfig identifies the principal allowed to run privileged
// operations (dumping the full store). Learning itself is unauthenticated:
// any asker may teach.
type OwnerConfig struct {
	ID string `mapstructure:"id"`
}

// SnapshotConfig configures the portable JSON export written after
// every successful learn.
type SnapshotConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ArchiveConfig configures the optional git-based remote archive for
// snapshots. All archive failures degrade to warnings.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`   // local clone of the archive repository
	Remote  string `mapstructure:"remote"` // remote name (default: origin)
	Branch  string `mapstructure:"branch"` // branch to push (default: main)
}

// DefaultServerPort is the development port for the chat server.
const DefaultServerPort = 8911
