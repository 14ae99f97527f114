//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"room-relay/domain"
	"room-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker is a long running loop. Recovery and restarts are the supervisor's job.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName returns the type name of the worker, used as a log attribute.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "unknown"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives domain events from the fanout. Consume must honour ctx.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// ISubscriptions maps transport connections to room broadcast groups.
type ISubscriptions interface {
	GetSinksForRoom(roomID domain.RoomID) []EventSink
	Subscribe(connectionID string, roomID domain.RoomID, sink EventSink)
	Unsubscribe(connectionID string)
}

// IMessageLog is the per-room, append-only chat history.
type IMessageLog interface {
	CreateLog(roomID domain.RoomID) error
	Append(roomID domain.RoomID, message domain.ChatMessage) error
	GetLog(roomID domain.RoomID) ([]domain.ChatMessage, bool, error)
}
