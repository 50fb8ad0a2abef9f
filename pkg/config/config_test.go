package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/capicuhq/capicu/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Game.Variant != "block" {
		t.Errorf("Game.Variant = %q, want %q", cfg.Game.Variant, "block")
	}
	if cfg.Game.TargetScore != 100 {
		t.Errorf("Game.TargetScore = %d, want 100", cfg.Game.TargetScore)
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis should be disabled by default")
	}
	if cfg.Mongo.Enabled() {
		t.Error("Mongo should be disabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9090"

[game]
variant = "allfives"
target_score = 200

[layout]
tiles_per_row = 6
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Game.Variant != "allfives" {
		t.Errorf("Game.Variant = %q, want %q", cfg.Game.Variant, "allfives")
	}
	if cfg.Game.TargetScore != 200 {
		t.Errorf("Game.TargetScore = %d, want 200", cfg.Game.TargetScore)
	}
	if cfg.Layout.TilesPerRow != 6 {
		t.Errorf("Layout.TilesPerRow = %d, want 6", cfg.Layout.TilesPerRow)
	}

	// Fields absent from the file keep their defaults
	if cfg.Game.MaxPlayers != 4 {
		t.Errorf("Game.MaxPlayers = %d, want default 4", cfg.Game.MaxPlayers)
	}
	if cfg.Game.TurnTimeoutSeconds != DefaultTurnTimeoutSeconds {
		t.Errorf("Game.TurnTimeoutSeconds = %d, want default %d", cfg.Game.TurnTimeoutSeconds, DefaultTurnTimeoutSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load() should fail for missing file")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Load(\"\") should return defaults, got addr %q", cfg.Server.Addr)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CAPICU_ADDR", ":7000")
	t.Setenv("CAPICU_REDIS_ADDR", "localhost:6379")
	t.Setenv("CAPICU_MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":7000")
	}
	if !cfg.Redis.Enabled() {
		t.Error("Redis should be enabled via env")
	}
	if !cfg.Mongo.Enabled() {
		t.Error("Mongo should be enabled via env")
	}
	if cfg.Mongo.Database != DefaultMongoDatabase {
		t.Errorf("Mongo.Database = %q, want default %q", cfg.Mongo.Database, DefaultMongoDatabase)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
		},
		{
			name:    "unknown variant",
			mutate:  func(c *Config) { c.Game.Variant = "mexican" },
			wantErr: true,
		},
		{
			name:    "too many players",
			mutate:  func(c *Config) { c.Game.MaxPlayers = 5 },
			wantErr: true,
		},
		{
			name:    "too few players",
			mutate:  func(c *Config) { c.Game.MaxPlayers = 1 },
			wantErr: true,
		},
		{
			name:    "target score too low",
			mutate:  func(c *Config) { c.Game.TargetScore = 10 },
			wantErr: true,
		},
		{
			name:    "negative turn timeout",
			mutate:  func(c *Config) { c.Game.TurnTimeoutSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "mongo uri without database",
			mutate: func(c *Config) {
				c.Mongo.URI = "mongodb://localhost:27017"
				c.Mongo.Database = ""
			},
			wantErr: true,
		},
		{
			name:    "zero turn timeout disables timer",
			mutate:  func(c *Config) { c.Game.TurnTimeoutSeconds = 0 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	if got := cfg.Game.TurnTimeout().Seconds(); got != float64(DefaultTurnTimeoutSeconds) {
		t.Errorf("TurnTimeout() = %vs, want %ds", got, DefaultTurnTimeoutSeconds)
	}
	if got := cfg.Server.ShutdownTimeout().Seconds(); got != float64(DefaultShutdownTimeoutSeconds) {
		t.Errorf("ShutdownTimeout() = %vs, want %ds", got, DefaultShutdownTimeoutSeconds)
	}
}
