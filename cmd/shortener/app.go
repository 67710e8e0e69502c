package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Totarae/shortlinks/internal/config"
	"github.com/Totarae/shortlinks/internal/database"
	"github.com/Totarae/shortlinks/internal/handlers"
	"github.com/Totarae/shortlinks/internal/repositories"
	"github.com/Totarae/shortlinks/internal/router"
	"github.com/Totarae/shortlinks/internal/service"
	"github.com/Totarae/shortlinks/internal/storage"
	"github.com/Totarae/shortlinks/internal/util"
	"go.uber.org/zap"
)

// app собранные зависимости сервера.
type app struct {
	Links  *service.LinkService
	Router http.Handler
	closer func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	repo, closer, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	links := service.NewLinkService(repo, util.NewCodeGenerator(cfg.CodeLength), logger, cfg.RequestTimeout)
	handler := handlers.NewHandler(links, cfg.BaseURL, cfg.FrontendURL, logger)

	return &app{
		Links:  links,
		Router: router.NewRouter(handler, logger),
		closer: closer,
	}, nil
}

// Close освобождает хранилище.
func (a *app) Close() {
	if a.closer != nil {
		a.closer()
	}
}

// newRepository выбирает хранилище по режиму конфигурации.
func newRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Repository, func(), error) {
	switch cfg.Mode {
	case config.ModeDatabase:
		if err := database.Migrate(cfg.DatabaseDSN, cfg.PgMigrationsPath, logger); err != nil {
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewLinkRepository(db), db.Close, nil

	case config.ModeSQLite:
		store, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Используется SQLite", zap.String("path", cfg.SQLitePath))
		return store, func() { _ = store.Close() }, nil

	case config.ModeFile:
		store, err := storage.NewFileStore(cfg.FileStoragePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Используется файловое хранилище", zap.String("path", cfg.FileStoragePath))
		return store, nil, nil

	default:
		logger.Info("Используется хранилище в памяти")
		return storage.NewMemoryStore(), nil, nil
	}
}
