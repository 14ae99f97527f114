// Package runtime wires the presence coordinator, the event fanout and the
// room subscriptions together. It carries commands in and events out without
// containing presence rules itself.
package runtime

import (
	"context"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain"
	"room-relay/domain/event"
	"room-relay/repositories"
	"room-relay/runtime/workers"
	"sync"
	"time"
)

type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	subscriptions  *Subscriptions
	coordinator    *Coordinator
	permanentSinks []contract.EventSink
	commands       chan domain.Command
	events         chan event.DomainEvent
	sinkTimeout    time.Duration
	metricInterval time.Duration
}

func NewOrchestrator(log *slog.Logger,
	supervisor contract.ISupervisor,
	subscriptions *Subscriptions,
	rooms *repositories.RoomRegistry,
	messages contract.IMessageLog,
	moderator Moderator,
	bufferSize int,
	sinkTimeout, metricInterval time.Duration) *Orchestrator {
	commands := make(chan domain.Command, bufferSize)
	events := make(chan event.DomainEvent, bufferSize)
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		subscriptions:  subscriptions,
		coordinator:    NewCoordinator(log, rooms, messages, moderator, commands, events),
		commands:       commands,
		events:         events,
		sinkTimeout:    sinkTimeout,
		metricInterval: metricInterval,
	}
}

// Bootstrap creates the default rooms. It must be called before Start.
func (o *Orchestrator) Bootstrap(roomIDs ...domain.RoomID) error {
	return o.coordinator.Bootstrap(roomIDs...)
}

// Add registers sinks receiving every event. It must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Dispatch hands a command to the coordinator, waiting while the channel is full.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	select {
	case o.commands <- cmd:
		return nil
	case <-ctx.Done():
		o.log.Warn("Command not dispatched", "room_id", cmd.RoomID(), "error", ctx.Err())
		return ctx.Err()
	}
}

func (o *Orchestrator) ListRooms(ctx context.Context) ([]domain.Room, error) {
	reply := make(chan []domain.Room, 1)
	if err := o.Dispatch(ctx, domain.ListRoomsQuery{Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// History returns the messages of a room, found is false when the room has no log.
func (o *Orchestrator) History(ctx context.Context, roomID domain.RoomID) ([]domain.ChatMessage, bool, error) {
	reply := make(chan domain.RoomHistory, 1)
	if err := o.Dispatch(ctx, domain.RoomHistoryQuery{Room: roomID, Reply: reply}); err != nil {
		return nil, false, err
	}
	select {
	case history := <-reply:
		return history.Messages, history.Found, history.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (o *Orchestrator) Subscribe(connectionID string, roomID domain.RoomID, sink contract.EventSink) {
	o.subscriptions.Subscribe(connectionID, roomID, sink)
}

func (o *Orchestrator) Unsubscribe(connectionID string) {
	o.subscriptions.Unsubscribe(connectionID)
}

// Start registers the coordinator, the fanout and the telemetry on the
// supervisor and blocks until they are stopped.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	fanout := workers.NewEventFanout(o.log, o.events, o.subscriptions, o.sinkTimeout, o.permanentSinks...)
	o.supervisor.Add(o.coordinator, fanout)
	if o.metricInterval > 0 {
		o.supervisor.Add(workers.NewTelemetryWorker(o.log, o.metricInterval, o.subscriptions.Count,
			workers.NamedChannel{Name: "commands", Channel: o.commands},
			workers.NamedChannel{Name: "events", Channel: o.events},
		))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised workers. Start returns once they are done.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
