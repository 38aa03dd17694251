package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialexplore/config"
	"socialexplore/internal/database"
	"socialexplore/internal/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "socialexplore",
		Usage: "activity and friends backend with computed notifications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				Value:   "config.yaml",
				Sources: cli.EnvVars(config.EnvPrefix + "_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log.level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "migrate the schema and run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply schema migrations and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}
}

func setup(cmd *cli.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log.Logger = logger
	return cfg, logger, nil
}

func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger(), nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("schema migrated")
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	engine := router.Setup(ctx, cfg, db, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
