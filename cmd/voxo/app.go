package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/cache"
	"github.com/voxo-cms/internal/config"
	"github.com/voxo-cms/internal/database"
	"github.com/voxo-cms/internal/mailer"
	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/service"
	"github.com/voxo-cms/internal/spotify"
	"github.com/voxo-cms/internal/storage"
	"github.com/voxo-cms/internal/video"
	"github.com/voxo-cms/pkg/logger"
)

// app is the wiring shared by every command that touches the database
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	services *service.Services
	closers  []io.Closer
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, logger.New(""), fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logger.New(cfg.Log.Level), nil
}

func openDB(cfg *config.Config, log zerolog.Logger) (*database.DB, error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newApp connects to the database, applies migrations and builds the services
func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := openDB(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	deps, closers, err := buildDependencies(ctx, cfg, log)
	if err != nil {
		closeAll(closers, log)
		db.Close()
		return nil, err
	}

	repos := repository.New(db)
	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		services: service.NewServices(repos, deps, cfg, log),
		closers:  closers,
	}, nil
}

func (a *app) Close() {
	closeAll(a.closers, a.log)
	a.db.Close()
}

func closeAll(closers []io.Closer, log zerolog.Logger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to release resource")
		}
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (service.Dependencies, []io.Closer, error) {
	var deps service.Dependencies
	var closers []io.Closer

	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisSettingsCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, cfg.Cache.TTL)
		if err != nil {
			return deps, closers, err
		}
		deps.Cache = rc
		closers = append(closers, rc)
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Settings cache backed by redis")
	}

	switch {
	case cfg.Storage.BucketURL != "":
		store, err := storage.OpenBucket(ctx, cfg.Storage.BucketURL, cfg.Storage.PublicPath)
		if err != nil {
			return deps, closers, err
		}
		deps.Store = store
		closers = append(closers, store)
	case cfg.Storage.Dir != "":
		store, err := storage.OpenLocal(cfg.Storage.Dir, cfg.Storage.PublicPath)
		if err != nil {
			return deps, closers, err
		}
		deps.Store = store
		closers = append(closers, store)
	}

	if cfg.Mail.SMTPHost != "" {
		deps.Mailer = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			User:     cfg.Mail.SMTPUser,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
		})
	}

	deps.Artists = spotify.NewResolver(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
		APIBaseURL:   cfg.Spotify.APIBaseURL,
		Timeout:      cfg.Spotify.Timeout,
	}, log)
	deps.Videos = video.NewFinder(cfg.Video.SearchURL, cfg.Video.Timeout)

	return deps, closers, nil
}
