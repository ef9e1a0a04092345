package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/pentago-client/internal/config"
	"github.com/rocketscienceinc/pentago-client/internal/engine"
	"github.com/rocketscienceinc/pentago-client/internal/progress"
	"github.com/rocketscienceinc/pentago-client/internal/repository"
	"github.com/rocketscienceinc/pentago-client/internal/repository/storage"
	"github.com/rocketscienceinc/pentago-client/internal/usecase"
	"github.com/rocketscienceinc/pentago-client/transport/rest"
	"github.com/rocketscienceinc/pentago-client/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	lineup, err := conf.Lineup.ToEntity()
	if err != nil {
		return fmt.Errorf("failed to load lineup: %w", err)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	sessionRepo := repository.NewSessionRepository(redisStorage.Connection)
	resultRepo := repository.NewResultRepository(sqliteStorage.Connection)

	engineClient := engine.NewClient(logger, conf.Engine.URL)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	monitor := progress.NewMonitor(logger, engineClient, hub, progress.Config{
		PollInterval: conf.Engine.PollInterval,
		PollTimeout:  conf.Engine.PollTimeout,
		HideDelay:    conf.Engine.HideDelay,
	})

	orchestrator := usecase.NewOrchestrator(logger, engineClient, monitor, sessionRepo, resultRepo, hub, lineup, usecase.Timing{
		SettleDelay:    conf.Animation.SettleDelay,
		RotateDuration: conf.Animation.RotateDuration,
	})
	go orchestrator.Run(ctx)

	if _, err = orchestrator.NewGame(ctx, lineup); err != nil {
		return fmt.Errorf("could not start first game: %w", err)
	}

	// run HTTP server
	restServer := rest.New(logger, orchestrator, sessionRepo, resultRepo)
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := restServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if shutdownErr := restServer.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error("could not shutdown HTTP server", "error", shutdownErr)
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, hub, orchestrator)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
