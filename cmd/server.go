package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/example/room-finder/internal/cache"
	"github.com/example/room-finder/internal/config"
	"github.com/example/room-finder/internal/db"
	"github.com/example/room-finder/internal/migrate"
	"github.com/example/room-finder/internal/refresh"
	"github.com/example/room-finder/internal/selection"
	"github.com/example/room-finder/internal/session"
	"github.com/example/room-finder/internal/store"
	"github.com/example/room-finder/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the room-finder API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			defer func() { _ = rdb.Close() }()

			repo := store.NewRepo(d)

			refresher := &refresh.Refresher{
				Source:   repo,
				Interval: cfg.RefreshInterval,
			}
			go func() { _ = refresher.Run(ctx) }()

			srv := &web.Server{
				Store:          repo,
				Directory:      refresher,
				Cache:          cache.New(rdb, cfg.CacheTTL),
				Sessions:       session.NewStore(rdb, cfg.CookieHashKey, cfg.CookieBlockKey),
				Grid:           selection.DefaultGrid,
				FreeNowLead:    cfg.FreeNowLead,
				AdminTokenHash: cfg.AdminTokenHash,
			}

			log.Info().Str("addr", cfg.ListenAddr).Msg("starting room finder")
			return web.Start(ctx, cfg.ListenAddr, srv.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
