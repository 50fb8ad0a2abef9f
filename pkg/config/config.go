// Package config loads and validates capicu server configuration.
//
// Configuration is layered: compiled-in defaults first, then an optional
// TOML file, then CAPICU_* environment variables. The zero-config path
// must always produce a runnable server, so every field has a default and
// the backing services (redis, mongo) are optional.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/capicuhq/capicu/pkg/errors"
	"github.com/capicuhq/capicu/pkg/game"
	"github.com/capicuhq/capicu/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultAddr is the default listen address for the HTTP server.
	DefaultAddr = ":8080"

	// DefaultReadTimeoutSeconds bounds request header+body reads.
	DefaultReadTimeoutSeconds = 15

	// DefaultWriteTimeoutSeconds bounds response writes for REST handlers.
	// WebSocket connections are exempt via http.ResponseController.
	DefaultWriteTimeoutSeconds = 15

	// DefaultShutdownTimeoutSeconds bounds graceful shutdown.
	DefaultShutdownTimeoutSeconds = 10

	// DefaultTurnTimeoutSeconds is how long a connected player may sit on
	// their turn before the server auto-plays for them. Zero disables the
	// turn timer.
	DefaultTurnTimeoutSeconds = 30

	// DefaultPickingTimeoutSeconds is how long the picking phase may last
	// before remaining tiles are auto-assigned.
	DefaultPickingTimeoutSeconds = 60

	// DefaultMongoDatabase is the database name for match history.
	DefaultMongoDatabase = "capicu"
)

// =============================================================================
// Config Sections
// =============================================================================

// Config is the full server configuration tree.
type Config struct {
	Server ServerConfig `toml:"server"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
	Game   GameConfig   `toml:"game"`
	Layout LayoutConfig `toml:"layout"`
}

// ServerConfig holds HTTP listener settings.
// SessionDir selects file-backed sessions when redis is not configured;
// empty means sessions live in memory only.
type ServerConfig struct {
	Addr                   string   `toml:"addr"`
	AllowedOrigins         []string `toml:"allowed_origins"`
	SessionDir             string   `toml:"session_dir"`
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `toml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown bound as a duration.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// RedisConfig holds the optional session/leaderboard backend.
// An empty Addr disables redis and falls back to in-memory sessions.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Enabled reports whether a redis backend is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// MongoConfig holds the optional match history backend.
// An empty URI disables history archiving.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Enabled reports whether a mongo backend is configured.
func (m MongoConfig) Enabled() bool { return m.URI != "" }

// GameConfig holds defaults applied to newly created games.
// Creators can override variant, player count and target per game.
type GameConfig struct {
	Variant               string `toml:"variant"`
	MaxPlayers            int    `toml:"max_players"`
	TargetScore           int    `toml:"target_score"`
	TurnTimeoutSeconds    int    `toml:"turn_timeout_seconds"`
	PickingTimeoutSeconds int    `toml:"picking_timeout_seconds"`
}

// TurnTimeout returns the auto-play bound as a duration. Zero disables it.
func (g GameConfig) TurnTimeout() time.Duration {
	return time.Duration(g.TurnTimeoutSeconds) * time.Second
}

// PickingTimeout returns the picking phase bound as a duration.
func (g GameConfig) PickingTimeout() time.Duration {
	return time.Duration(g.PickingTimeoutSeconds) * time.Second
}

// LayoutConfig holds the chain layout geometry tunables.
// Zero fields fall through to the layout package defaults.
type LayoutConfig struct {
	BaseTileWidth  float64 `toml:"base_tile_width"`
	BaseTileHeight float64 `toml:"base_tile_height"`
	Padding        float64 `toml:"padding"`
	TilesPerRow    int     `toml:"tiles_per_row"`
	TilesPerColumn int     `toml:"tiles_per_column"`
	BaseGap        float64 `toml:"base_gap"`
}

// ToEngine converts the section into an engine config.
func (l LayoutConfig) ToEngine() layout.Config {
	return layout.Config{
		BaseTileWidth:  l.BaseTileWidth,
		BaseTileHeight: l.BaseTileHeight,
		Padding:        l.Padding,
		TilesPerRow:    l.TilesPerRow,
		TilesPerColumn: l.TilesPerColumn,
		BaseGap:        l.BaseGap,
	}
}

// =============================================================================
// Loading
// =============================================================================

// Default returns the configuration used when no file or env overrides
// are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:                   DefaultAddr,
			AllowedOrigins:         []string{"*"},
			ReadTimeoutSeconds:     DefaultReadTimeoutSeconds,
			WriteTimeoutSeconds:    DefaultWriteTimeoutSeconds,
			ShutdownTimeoutSeconds: DefaultShutdownTimeoutSeconds,
		},
		Mongo: MongoConfig{
			Database: DefaultMongoDatabase,
		},
		Game: GameConfig{
			Variant:               string(game.VariantBlock),
			MaxPlayers:            game.MaxPlayers,
			TargetScore:           game.DefaultTargetScore,
			TurnTimeoutSeconds:    DefaultTurnTimeoutSeconds,
			PickingTimeoutSeconds: DefaultPickingTimeoutSeconds,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and
// CAPICU_* environment variables, then validates the result.
// An empty path skips the file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays CAPICU_* environment variables onto the config.
// Only connection settings are exposed this way; game and layout tuning
// belongs in the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("CAPICU_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CAPICU_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CAPICU_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("CAPICU_MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("CAPICU_MONGO_DB"); v != "" {
		c.Mongo.Database = v
	}
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server timeouts must not be negative")
	}
	if _, err := game.ParseVariant(c.Game.Variant); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "game.variant")
	}
	if c.Game.MaxPlayers < game.MinPlayers || c.Game.MaxPlayers > game.MaxPlayers {
		return errors.New(errors.ErrCodeInvalidConfig, "game.max_players must be between %d and %d", game.MinPlayers, game.MaxPlayers)
	}
	if c.Game.TargetScore < game.MinTargetScore || c.Game.TargetScore > game.MaxTargetScore {
		return errors.New(errors.ErrCodeInvalidConfig, "game.target_score must be between %d and %d", game.MinTargetScore, game.MaxTargetScore)
	}
	if c.Game.TurnTimeoutSeconds < 0 || c.Game.PickingTimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "game timeouts must not be negative")
	}
	if c.Mongo.Enabled() && c.Mongo.Database == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo.database must not be empty when mongo.uri is set")
	}
	return nil
}
