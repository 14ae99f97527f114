package runtime

import (
	"context"
	"room-relay/contract"
	"room-relay/domain"
	"room-relay/domain/event"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestSubscriptions_Subscribe_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	subscriptions := NewSubscriptions()
	connectionID := uuid.NewString()
	roomID := domain.RoomID("GLOBAL")
	sink := Sink{name: "alice"}

	// Given nobody is connected
	req.Empty(subscriptions.sessions)
	req.Empty(subscriptions.roomMembers)

	// When a connection subscribes to a room
	subscriptions.Subscribe(connectionID, roomID, sink)

	// Then its sink is reachable through the room
	req.Equal(1, subscriptions.Count())
	req.Contains(subscriptions.roomMembers[roomID], connectionID)
	req.Equal([]contract.EventSink{sink}, subscriptions.GetSinksForRoom(roomID))
}

func TestSubscriptions_Subscribe_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	subscriptions := NewSubscriptions()
	connectionID := uuid.NewString()

	subscriptions.Subscribe(connectionID, "r1", Sink{name: "alice"})
	subscriptions.Subscribe(connectionID, "r1", Sink{name: "alice"})

	req.Len(subscriptions.GetSinksForRoom("r1"), 1)
}

func TestSubscriptions_One_Connection_Several_Rooms(t *testing.T) {
	req := require.New(t)
	subscriptions := NewSubscriptions()
	connectionID := uuid.NewString()
	sink := Sink{name: "alice"}

	// Given a connection listening to two rooms
	subscriptions.Subscribe(connectionID, "r1", sink)
	subscriptions.Subscribe(connectionID, "r2", sink)

	// Then both rooms reach it
	req.Len(subscriptions.GetSinksForRoom("r1"), 1)
	req.Len(subscriptions.GetSinksForRoom("r2"), 1)

	// When the connection goes away
	subscriptions.Unsubscribe(connectionID)

	// Then no room keeps it and empty rooms are dropped
	req.Nil(subscriptions.GetSinksForRoom("r1"))
	req.Nil(subscriptions.GetSinksForRoom("r2"))
	req.Empty(subscriptions.roomMembers)
	req.Empty(subscriptions.connRooms)
	req.Zero(subscriptions.Count())
}

func TestSubscriptions_Unsubscribe_Keeps_Other_Connections(t *testing.T) {
	req := require.New(t)
	subscriptions := NewSubscriptions()
	connectionID1 := uuid.NewString()
	connectionID2 := uuid.NewString()
	sink2 := Sink{name: "bob"}

	subscriptions.Subscribe(connectionID1, "r1", Sink{name: "alice"})
	subscriptions.Subscribe(connectionID2, "r1", sink2)

	subscriptions.Unsubscribe(connectionID1)

	req.Equal([]contract.EventSink{sink2}, subscriptions.GetSinksForRoom("r1"))
}

func TestSubscriptions_Unsubscribe_Unknown_Connection(t *testing.T) {
	subscriptions := NewSubscriptions()
	require.NotPanics(t, func() { subscriptions.Unsubscribe("ghost") })
}
