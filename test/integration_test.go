package test

import (
	"context"
	"log/slog"
	"room-relay/domain"
	"room-relay/domain/event"
	"room-relay/mocks"
	"room-relay/moderation"
	"room-relay/repositories"
	"room-relay/runtime"
	"room-relay/runtime/workers"
	"room-relay/search"
	"room-relay/services"
	"room-relay/sink"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_Scenario(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := require.New(t)

	db, err := repositories.OpenInMemoryBadger()
	req.NoError(err)

	// 1. Every real component, the way the relay binary wires them
	done := make(chan struct{})
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator([]string{"scam"}, '*', log)
	req.NoError(err)
	index, err := search.NewInMemoryIndex(log)
	req.NoError(err)

	orchestrator := runtime.NewOrchestrator(log,
		workers.NewSupervisor(log, 200*time.Millisecond),
		runtime.NewSubscriptions(),
		repositories.NewRoomRegistry(),
		repositories.NewBadgerMessageLog(db),
		moderator,
		10, 500*time.Millisecond, 100*time.Millisecond)

	// 2. A permanent sink sees the whole story, in order
	ctrl := gomock.NewController(t)
	mockSink := mocks.NewMockEventSink(ctrl)
	gomock.InOrder(
		mockSink.EXPECT().Consume(gomock.Any(), gomock.AssignableToTypeOf(event.RoomJoined{})).Return(nil),
		mockSink.EXPECT().Consume(gomock.Any(), gomock.AssignableToTypeOf(event.MessageSent{})).Return(nil),
		mockSink.EXPECT().Consume(gomock.Any(), gomock.AssignableToTypeOf(event.PeerLeft{})).
			Do(func(context.Context, event.DomainEvent) { close(done) }).
			Return(nil),
	)
	orchestrator.Add(index, mockSink)
	req.NoError(orchestrator.Bootstrap("GLOBAL"))

	stopped := make(chan struct{})
	go func() {
		_ = orchestrator.Start(ctx)
		close(stopped)
	}()

	// Clean everything at the end of the test
	t.Cleanup(func() {
		cancel()
		<-stopped
		_ = index.Close()
		_ = db.Close()
	})

	service := services.NewRelayService(orchestrator, index)
	connection := sink.NewConnectionSink(uuid.NewString(), 8)
	defer connection.Close()

	// When a peer joins, talks and is dropped by the media layer
	req.NoError(service.JoinRoom(ctx, connection.ID, connection, domain.JoinRoomCommand{Room: "lobby", Peer: "p1", Name: "Alice", Color: "teal"}))
	req.NoError(service.SendMessage(ctx, domain.SendMessageCommand{Room: "lobby", Name: "Alice", Message: "this scam will self destruct"}))
	req.NoError(service.PeerDisconnected(ctx, "p1"))

	select {
	case <-done:
	case <-ctx.Done():
		req.Fail("Timeout: the leave has never reached the permanent sink")
	}

	// Then the history is persisted and moderated
	history, err := service.History(ctx, "lobby")
	req.NoError(err)
	req.Equal([]domain.ChatMessage{{RoomID: "lobby", Name: "Alice", Message: "this **** will self destruct"}}, history)

	// And the message is searchable in its room only
	req.Eventually(func() bool {
		hits, err := service.Search(ctx, "lobby", "destruct", 0)
		return err == nil && len(hits) == 1
	}, time.Second, 10*time.Millisecond)
	hits, err := service.Search(ctx, "GLOBAL", "destruct", 0)
	req.NoError(err)
	req.Empty(hits)

	// And the connection got the same three events
	for _, expected := range []any{event.RoomJoined{}, event.MessageSent{}, event.PeerLeft{}} {
		select {
		case evt := <-connection.Events():
			req.IsType(expected, evt)
		case <-time.After(time.Second):
			req.Fail("missing event on the connection")
		}
	}
}
