package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/shortlinks/internal/config"
	grpcv1 "github.com/Totarae/shortlinks/internal/grpc/v1"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("Ошибка конфигурации", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Сервер остановлен с ошибкой", zap.Error(err))
	}
	logger.Info("Сервер остановлен")
}

// run поднимает HTTP и (если задан адрес) gRPC сервер и ждёт отмены ctx.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var grpcLis net.Listener
	if cfg.GRPCAddress != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP сервер запущен",
			zap.String("address", cfg.ServerAddress),
			zap.String("mode", cfg.Mode),
			zap.Bool("https", cfg.EnableHTTPS),
		)
		var serveErr error
		if cfg.EnableHTTPS {
			serveErr = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}
		return serveErr
	})

	if grpcLis != nil {
		grpcSrv := grpcv1.NewServer(a.Links, cfg.BaseURL, logger)
		g.Go(func() error {
			logger.Info("gRPC сервер запущен", zap.String("address", grpcLis.Addr().String()))
			return grpcSrv.Serve(grpcLis)
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcSrv.GracefulStop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Завершение работы сервера")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
