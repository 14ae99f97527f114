package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"room-relay/contract"
	"room-relay/gateway"
	relaygrpc "room-relay/grpc"
	"room-relay/grpc/server"
	"room-relay/internal"
	"room-relay/moderation"
	"room-relay/repositories"
	"room-relay/runtime"
	"room-relay/runtime/workers"
	"room-relay/search"
	"room-relay/services"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run builds every component, serves HTTP and gRPC, and returns the exit code.
// Deferred cleanups run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	storeKind, err := config.Store()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. History store
	var messages contract.IMessageLog
	switch storeKind {
	case internal.BadgerStore:
		db, err := repositories.OpenInMemoryBadger()
		if err != nil {
			return exitRuntime, err
		}
		defer func() {
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		}()
		if logger.Enabled(ctx, slog.LevelDebug) {
			endpoint := "/inspect"
			logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
			database.StartDebugServer(db, config.DebugPort, endpoint, HistoryMapper)
		}
		messages = repositories.NewBadgerMessageLog(db)
	default:
		messages = repositories.NewMemoryMessageLog()
	}

	// 3. Moderation and search are optional
	var moderator runtime.Moderator
	if words := config.Words(); len(words) > 0 {
		m, err := moderation.NewModerator(words, charReplacement, logger)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation: %w", err)
		}
		moderator = m
	}

	orchestrator := runtime.NewOrchestrator(logger,
		workers.NewSupervisor(logger, config.RestartInterval),
		runtime.NewSubscriptions(),
		repositories.NewRoomRegistry(),
		messages,
		moderator,
		config.BufferSize,
		config.SinkTimeout,
		config.MetricInterval)

	var searcher services.Searcher
	if config.SearchEnabled {
		index, err := search.NewInMemoryIndex(logger)
		if err != nil {
			return exitRuntime, err
		}
		defer func() {
			logger.Info("Closing Bluge...")
			_ = index.Close()
		}()
		orchestrator.Add(index)
		searcher = index
	}

	if err := orchestrator.Bootstrap(config.Rooms()...); err != nil {
		return exitRuntime, fmt.Errorf("bootstrap rooms: %w", err)
	}

	errChan := make(chan error, 3)

	// 4. Coordinator, fanout and telemetry
	go func() {
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	relayService := services.NewRelayService(orchestrator, searcher)

	// 5. HTTP and websocket gateway
	ws := gateway.NewGateway(logger, relayService, gateway.Options{
		BufferSize:   config.ConnectionBufferSize,
		WriteWait:    config.WriteWait,
		PongWait:     config.PongWait,
		MaxFrameSize: config.MaxFrameSize,
	})
	router := gateway.NewHTTPServer(logger, relayService, ws, config.StaticDir)
	httpAddress := fmt.Sprintf("%s:%d", config.Host, config.HTTPPort)
	go func() {
		logger.Info("Starting HTTP server", "address", httpAddress)
		if err := router.Start(httpAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. gRPC query service
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	relaygrpc.RegisterRoomQueryServer(s, server.NewRoomQueryServer(relayService))
	go func() {
		logger.Info("Starting gRPC server", "address", grpcAddress)
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for a signal or a failure
	code := exitOK
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errChan:
		logger.Error("Relay failure", "error", err)
		code = exitRuntime
	}

	// 8. Graceful shutdown
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := router.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP shutdown incomplete", "error", shutdownErr)
	}
	s.GracefulStop()
	orchestrator.Stop()
	logger.Info("Relay stopped")

	return code, err
}

// HistoryMapper decodes room logs for the badger inspector.
func HistoryMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	row.Type, row.Detail = repositories.DescribeEntry(key, val)
	return row
}
