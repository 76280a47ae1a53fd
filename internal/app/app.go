// Package app wires configuration, storage, use cases and the HTTP server
// together and runs the service until its context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortlink/internal/adapter/cache"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/shortlink/internal/adapter/scraper"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/migrations"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
	pgpkg "github.com/vadimbarashkov/shortlink/pkg/postgres"
)

type slugStore interface {
	Exists(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, slug, longURL string) (*entity.SlugRecord, error)
	RetrieveURLID(ctx context.Context, slug string) (string, error)
}

type urlStore interface {
	RetrieveByID(ctx context.Context, id string) (*entity.URLRecord, error)
	AppendVisit(ctx context.Context, id string, visit entity.VisitEvent) (string, error)
}

type slugCache interface {
	Get(ctx context.Context, slug string) (string, bool, error)
	Set(ctx context.Context, slug, urlID string) error
}

// NewLogger builds the service logger: JSON in prod, concise text otherwise.
func NewLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel:       slog.LevelDebug,
		Concise:        true,
		RequestHeaders: true,
	}

	if env == config.EnvProd {
		opts.LogLevel = slog.LevelInfo
		opts.JSON = true
		opts.Concise = false
	}

	return httplog.NewLogger("shortlink", opts)
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := NewLogger(cfg.Env)

	slugRepo, urlRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeStore()

	var sc slugCache
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}
		defer client.Close()

		sc = cache.NewSlugCache(client, cfg.Redis.TTL)
	}

	extractor := scraper.NewExtractor(
		&http.Client{Timeout: cfg.Metadata.Timeout},
		scraper.WithUserAgent(cfg.Metadata.UserAgent),
		scraper.WithMaxBodyBytes(cfg.Metadata.MaxBodyBytes),
	)

	slugUseCase := usecase.NewSlugUseCase(cfg.SlugLength, slugRepo, sc, logger.Logger)
	visitUseCase := usecase.NewVisitUseCase(urlRepo)
	metadataUseCase := usecase.NewMetadataUseCase(extractor)

	r := delivery.NewRouter(logger, cfg.BaseURL, slugUseCase, visitUseCase, metadataUseCase)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("storage", cfg.Storage))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// openStore returns the repositories for the configured storage. Postgres is
// migrated before use; any failure here is fatal for the process.
func openStore(ctx context.Context, cfg *config.Config) (slugStore, urlStore, func(), error) {
	if cfg.Storage == config.StorageMemory {
		repo := memory.New()
		return repo, repo, func() {}, nil
	}

	db, err := pgpkg.New(
		ctx,
		cfg.Postgres.DSN(),
		pgpkg.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pgpkg.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pgpkg.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pgpkg.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		pgpkg.WithConnectTimeout(cfg.Postgres.ConnectTimeout),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pgpkg.RunMigrations(migrations.FS, cfg.Postgres.DSN()); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres.NewSlugRepository(db), postgres.NewURLRepository(db), func() { db.Close() }, nil
}
