package workers

import (
	"context"
	"fmt"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain/event"
	"room-relay/errors"
	"time"
)

// EventFanout delivers each domain event to the permanent sinks and to every
// connection subscribed to the event's room.
//
// Delivery is best effort: each sink gets its own timeout, a failing or
// panicking sink is logged and skipped. Sinks are called one after the other
// so that a connection sees the events of a room in the order they were emitted.
type EventFanout struct {
	log           *slog.Logger
	events        <-chan event.DomainEvent
	subscriptions contract.ISubscriptions
	permanent     []contract.EventSink
	sinkTimeout   time.Duration
}

func NewEventFanout(log *slog.Logger,
	events <-chan event.DomainEvent,
	subscriptions contract.ISubscriptions,
	sinkTimeout time.Duration,
	permanent ...contract.EventSink) *EventFanout {
	return &EventFanout{
		log:           log,
		events:        events,
		subscriptions: subscriptions,
		permanent:     permanent,
		sinkTimeout:   sinkTimeout,
	}
}

// Add registers sinks receiving every event whatever the room.
// It must be called before Run.
func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.permanent = append(w.permanent, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel is closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.permanent {
		w.deliver(ctx, sink, evt)
	}
	for _, sink := range w.subscriptions.GetSinksForRoom(evt.RoomID()) {
		w.deliver(ctx, sink, evt)
	}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
			}
		}()
		return sink.Consume(sinkCtx, evt)
	}()
	if err != nil {
		w.log.Warn("Event not delivered", "room_id", evt.RoomID(), "event", fmt.Sprintf("%T", evt), "error", err)
	}
}
