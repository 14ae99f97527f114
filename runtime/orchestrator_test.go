package runtime_test

import (
	"context"
	"log/slog"
	"room-relay/domain"
	"room-relay/domain/event"
	"room-relay/repositories"
	"room-relay/runtime"
	"room-relay/runtime/workers"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type RecordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *RecordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *RecordingSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

func startOrchestrator(t *testing.T, sinks ...*RecordingSink) *runtime.Orchestrator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	orchestrator := runtime.NewOrchestrator(log,
		workers.NewSupervisor(log, 10*time.Millisecond),
		runtime.NewSubscriptions(),
		repositories.NewRoomRegistry(),
		repositories.NewMemoryMessageLog(),
		nil, 16, time.Second, 0)
	for _, sink := range sinks {
		orchestrator.Add(sink)
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
	return orchestrator
}

func Test_Orchestrator_Broadcasts_To_Room_Subscribers_Only(t *testing.T) {
	req := require.New(t)
	orchestrator := startOrchestrator(t)
	ctx := context.Background()

	inRoom := &RecordingSink{}
	elsewhere := &RecordingSink{}
	orchestrator.Subscribe("conn-1", "r1", inRoom)
	orchestrator.Subscribe("conn-2", "r2", elsewhere)

	// When a peer joins r1
	req.NoError(orchestrator.Dispatch(ctx, domain.JoinRoomCommand{Room: "r1", Peer: "p1", Name: "Alice", Color: "red"}))

	// Then only r1 listeners hear about it
	req.Eventually(func() bool { return len(inRoom.Events()) == 1 }, time.Second, 5*time.Millisecond)
	req.Empty(elsewhere.Events())
	req.IsType(event.RoomJoined{}, inRoom.Events()[0])
}

func Test_Orchestrator_Permanent_Sink_Sees_Everything(t *testing.T) {
	req := require.New(t)
	permanent := &RecordingSink{}
	orchestrator := startOrchestrator(t, permanent)
	ctx := context.Background()

	req.NoError(orchestrator.Dispatch(ctx, domain.JoinRoomCommand{Room: "r1", Peer: "p1", Name: "Alice"}))
	req.NoError(orchestrator.Dispatch(ctx, domain.SendMessageCommand{Room: "GLOBAL", Name: "Bob", Message: "hi"}))

	req.Eventually(func() bool { return len(permanent.Events()) == 2 }, time.Second, 5*time.Millisecond)
}

func Test_Orchestrator_Queries(t *testing.T) {
	req := require.New(t)
	orchestrator := startOrchestrator(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req.NoError(orchestrator.Dispatch(ctx, domain.JoinRoomCommand{Room: "r1", Peer: "p1", Name: "Alice", Color: "red"}))
	req.NoError(orchestrator.Dispatch(ctx, domain.SendMessageCommand{Room: "r1", Name: "Alice", Message: "hello"}))

	// Queries travel behind the commands, so they see their effect
	rooms, err := orchestrator.ListRooms(ctx)
	req.NoError(err)
	req.Len(rooms, 2)
	req.Equal(domain.RoomID("GLOBAL"), rooms[0].ID)
	req.Equal([]domain.Member{{Name: "Alice", ID: "p1", Color: "red"}}, rooms[1].Peers)

	messages, found, err := orchestrator.History(ctx, "r1")
	req.NoError(err)
	req.True(found)
	req.Equal([]domain.ChatMessage{{RoomID: "r1", Name: "Alice", Message: "hello"}}, messages)

	_, found, err = orchestrator.History(ctx, "nowhere")
	req.NoError(err)
	req.False(found)
}

func Test_Orchestrator_Unsubscribe_Stops_Delivery(t *testing.T) {
	req := require.New(t)
	orchestrator := startOrchestrator(t)
	ctx := context.Background()
	sink := &RecordingSink{}

	orchestrator.Subscribe("conn-1", "GLOBAL", sink)
	req.NoError(orchestrator.Dispatch(ctx, domain.SendMessageCommand{Room: "GLOBAL", Name: "Alice", Message: "one"}))
	req.Eventually(func() bool { return len(sink.Events()) == 1 }, time.Second, 5*time.Millisecond)

	orchestrator.Unsubscribe("conn-1")
	req.NoError(orchestrator.Dispatch(ctx, domain.SendMessageCommand{Room: "GLOBAL", Name: "Alice", Message: "two"}))

	// The history query drains the coordinator, then give the fanout a moment
	_, _, err := orchestrator.History(ctx, "GLOBAL")
	req.NoError(err)
	time.Sleep(50 * time.Millisecond)
	req.Len(sink.Events(), 1)
}

func Test_Orchestrator_Dispatch_Respects_Context(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	// Not started and no buffer: nobody reads commands
	orchestrator := runtime.NewOrchestrator(log,
		workers.NewSupervisor(log, 0),
		runtime.NewSubscriptions(),
		repositories.NewRoomRegistry(),
		repositories.NewMemoryMessageLog(),
		nil, 0, time.Second, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := orchestrator.Dispatch(ctx, domain.LeaveRoomCommand{Room: "r1", Peer: "p1"})
	req.ErrorIs(err, context.DeadlineExceeded)
}
