package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/capicuhq/capicu/internal/server"
	"github.com/capicuhq/capicu/pkg/config"
	"github.com/capicuhq/capicu/pkg/history"
	"github.com/capicuhq/capicu/pkg/session"
)

// sessionSweepInterval is how often expired sessions are swept from memory
// and file backed stores. Redis expires its keys on its own.
const sessionSweepInterval = 10 * time.Minute

// serveCommand creates the serve command that runs the game server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfgPath   string
		addr      string
		redisAddr string
		mongoURI  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the multiplayer game server",
		Long: `Run the multiplayer game server.

The server exposes a REST API for creating and joining games and a WebSocket
endpoint for live play. Rooms tick in the background: CPU seats move on their
own and stalled human turns are auto-played once the turn timer expires.

Sessions live in memory by default. Configure redis for reconnect tokens that
survive restarts plus a shared leaderboard, and mongo to archive finished
matches. Settings come from an optional TOML file, CAPICU_* environment
variables, and flags, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if redisAddr != "" {
				cfg.Redis.Addr = redisAddr
			}
			if mongoURI != "" {
				cfg.Mongo.URI = mongoURI
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for sessions and leaderboard (overrides config)")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "mongo URI for match history (overrides config)")

	return cmd
}

// runServe wires the configured backends and runs the server until ctx ends.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	options := []server.Option{server.WithLogger(c.Logger)}

	switch {
	case cfg.Redis.Enabled():
		store, err := session.NewRedisStore(ctx, session.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer store.Close()
		options = append(options,
			server.WithSessionStore(store),
			server.WithLeaderboard(store.Leaderboard()))
		c.Logger.Info("sessions in redis", "addr", cfg.Redis.Addr)

	case cfg.Server.SessionDir != "":
		store, err := session.NewFileStore(cfg.Server.SessionDir)
		if err != nil {
			return fmt.Errorf("open session dir: %w", err)
		}
		options = append(options, server.WithSessionStore(store))
		go sweepSessions(ctx, store, c.Logger)
		c.Logger.Info("sessions on disk", "dir", store.Path())

	default:
		store := session.NewMemoryStore()
		options = append(options, server.WithSessionStore(store))
		go sweepSessions(ctx, store, c.Logger)
		c.Logger.Info("sessions in memory")
	}

	if cfg.Mongo.Enabled() {
		archive, err := history.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = archive.Close(closeCtx)
		}()
		options = append(options, server.WithArchive(archive))
		c.Logger.Info("match history in mongo", "database", cfg.Mongo.Database)
	}

	srv := server.New(cfg, options...)
	c.Logger.Info("serving", "addr", cfg.Server.Addr, "variant", cfg.Game.Variant, "target", cfg.Game.TargetScore)
	return srv.Run(ctx)
}

// sweepSessions periodically removes expired sessions until ctx ends.
func sweepSessions(ctx context.Context, store session.Store, logger *log.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}
