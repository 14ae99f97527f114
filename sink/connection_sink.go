package sink

import (
	"context"
	"room-relay/domain/event"
	"room-relay/errors"
	"sync"
)

// ConnectionSink buffers the events bound to one client connection.
// The fanout never waits on it: when the buffer is full the event is dropped.
type ConnectionSink struct {
	ID     string
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
}

func NewConnectionSink(id string, bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		ID:     id,
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume is called by the fanout.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return nil
	default:
	}
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Events is read by the connection writer.
func (s *ConnectionSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Done is closed once the connection is gone.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}

// Close stops accepting events. The events channel stays open so that a
// late fanout never sends on a closed channel.
func (s *ConnectionSink) Close() {
	s.once.Do(func() { close(s.done) })
}
