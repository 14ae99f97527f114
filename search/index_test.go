package search

import (
	"context"
	"log/slog"
	"room-relay/domain"
	"room-relay/domain/event"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	index, err := NewInMemoryIndex(logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func sent(room domain.RoomID, name, text string) event.MessageSent {
	return event.MessageSent{Message: domain.ChatMessage{RoomID: room, Name: name, Message: text}}
}

func TestIndex_Search_Is_Scoped_To_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	// Given messages about deployments in two rooms
	req.NoError(index.Consume(ctx, sent("ops", "Alice", "the deployment finished without errors")))
	req.NoError(index.Consume(ctx, sent("ops", "Bob", "lunch anyone?")))
	req.NoError(index.Consume(ctx, sent("dev", "Clara", "deployment of the staging cluster is late")))

	// When searching ops
	hits, err := index.Search(ctx, "ops", "deployment", 10)

	// Then only the ops message comes back with its stored fields
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(domain.RoomID("ops"), hits[0].RoomID)
	req.Equal("Alice", hits[0].Name)
	req.Equal("the deployment finished without errors", hits[0].Message)
	req.Positive(hits[0].Score)
}

func TestIndex_Ignores_Presence_Events(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	req.NoError(index.Consume(ctx, event.PeerLeft{Room: "ops", Peer: "p1"}))
	req.NoError(index.Consume(ctx, event.RoomJoined{Room: domain.Room{ID: "ops"}}))

	hits, err := index.Search(ctx, "ops", "p1", 10)
	req.NoError(err)
	req.Empty(hits)
}

func TestIndex_Search_Limit(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	for _, name := range []string{"Alice", "Bob", "Clara", "Dan"} {
		req.NoError(index.Consume(ctx, sent("GLOBAL", name, "hello everybody")))
	}

	hits, err := index.Search(ctx, "GLOBAL", "hello", 2)
	req.NoError(err)
	req.Len(hits, 2)

	hits, err = index.Search(ctx, "GLOBAL", "hello", 0)
	req.NoError(err)
	req.ElementsMatch([]string{"Alice", "Bob", "Clara", "Dan"}, lo.Map(hits, func(h Hit, _ int) string { return h.Name }))
}

func TestIndex_Detects_Language(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	text := "Good morning everyone, the meeting about the new release will start in ten minutes in the usual room"
	req.NoError(index.Consume(ctx, sent("GLOBAL", "Alice", text)))

	hits, err := index.Search(ctx, "GLOBAL", "meeting", 5)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("en", hits[0].Lang)
}
