package gateway_test

import (
	"context"
	"log/slog"
	"room-relay/gateway"
	"room-relay/repositories"
	"room-relay/runtime"
	"room-relay/runtime/workers"
	"room-relay/search"
	"room-relay/services"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type stack struct {
	service *services.RelayService
	router  *echo.Echo
}

// newStack starts a relay with a GLOBAL room, optionally with search and a static directory.
func newStack(t *testing.T, withSearch bool, staticDir string) stack {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	orchestrator := runtime.NewOrchestrator(log,
		workers.NewSupervisor(log, 10*time.Millisecond),
		runtime.NewSubscriptions(),
		repositories.NewRoomRegistry(),
		repositories.NewMemoryMessageLog(),
		nil, 64, time.Second, 0)

	var service *services.RelayService
	if withSearch {
		index, err := search.NewInMemoryIndex(log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
		orchestrator.Add(index)
		service = services.NewRelayService(orchestrator, index)
	} else {
		service = services.NewRelayService(orchestrator, nil)
	}
	require.NoError(t, orchestrator.Bootstrap("GLOBAL"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = orchestrator.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	gw := gateway.NewGateway(log, service, gateway.Options{
		BufferSize:   32,
		WriteWait:    time.Second,
		PongWait:     5 * time.Second,
		MaxFrameSize: 8 * 1024,
	})
	return stack{service: service, router: gateway.NewHTTPServer(log, service, gw, staticDir)}
}
