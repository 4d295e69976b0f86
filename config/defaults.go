package config

import (
	"github.com/spf13/viper"
)

// DefaultDirPermissions is used when creating the user config directory
const DefaultDirPermissions = 0o755

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "zeroiq.db")

	// Match defaults; 0.6 mirrors the classic close-match cutoff
	v.SetDefault("match.threshold", 0.6)

	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{})

	// Snapshot defaults
	v.SetDefault("snapshot.enabled", true)
	v.SetDefault("snapshot.path", "memory.json")

	// Archive defaults, disabled until a repo is configured
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.remote", "origin")
	v.SetDefault("archive.branch", "main")
}
