package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"room-relay/domain"
	"room-relay/domain/event"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type nopSink struct{}

func (nopSink) Consume(context.Context, event.DomainEvent) error { return nil }

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHTTP_ListRooms(t *testing.T) {
	req := require.New(t)
	s := newStack(t, false, "")
	ctx := context.Background()
	req.NoError(s.service.SendMessage(ctx, domain.SendMessageCommand{Room: "GLOBAL", Name: "Alice", Message: "hi"}))
	req.NoError(s.service.JoinRoom(ctx, "conn-1", nopSink{}, domain.JoinRoomCommand{Room: "r1", Peer: "p1", Name: "Alice", Color: "red"}))

	rec := get(s.router, "/api/rooms")

	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`{"connections":[
		{"room":"GLOBAL","peers":[]},
		{"room":"r1","peers":[{"name":"Alice","id":"p1","color":"red"}]}
	]}`, rec.Body.String())
}

func TestHTTP_History(t *testing.T) {
	req := require.New(t)
	s := newStack(t, false, "")
	req.NoError(s.service.SendMessage(context.Background(), domain.SendMessageCommand{Room: "GLOBAL", Name: "Alice", Message: "hi"}))

	rec := get(s.router, "/api/chat/GLOBAL")

	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`{"roomId":"GLOBAL","messages":[{"roomId":"GLOBAL","name":"Alice","message":"hi"}]}`, rec.Body.String())
}

func TestHTTP_History_Unknown_Room(t *testing.T) {
	s := newStack(t, false, "")

	rec := get(s.router, "/api/chat/nowhere")

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTP_PeerDisconnected(t *testing.T) {
	req := require.New(t)
	s := newStack(t, false, "")
	ctx := context.Background()
	req.NoError(s.service.JoinRoom(ctx, "conn-1", nopSink{}, domain.JoinRoomCommand{Room: "GLOBAL", Peer: "p1", Name: "Alice"}))

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/peers/p1/disconnect", nil))
	req.Equal(http.StatusAccepted, rec.Code)

	rooms, err := s.service.ListRooms(ctx)
	req.NoError(err)
	req.Empty(rooms[0].Peers)
}

func TestHTTP_Search(t *testing.T) {
	req := require.New(t)

	disabled := newStack(t, false, "")
	req.Equal(http.StatusNotImplemented, get(disabled.router, "/api/chat/GLOBAL/search?q=hello").Code)

	s := newStack(t, true, "")
	req.Equal(http.StatusBadRequest, get(s.router, "/api/chat/GLOBAL/search?q=hello&limit=zero").Code)
	req.Equal(http.StatusBadRequest, get(s.router, "/api/chat/GLOBAL/search").Code)
	req.Equal(http.StatusNotFound, get(s.router, "/api/chat/nowhere/search?q=hello").Code)

	req.NoError(s.service.SendMessage(context.Background(), domain.SendMessageCommand{Room: "GLOBAL", Name: "Alice", Message: "hello world"}))
	req.Eventually(func() bool {
		rec := get(s.router, "/api/chat/GLOBAL/search?q=hello&limit=5")
		return rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), `"message":"hello world"`)
	}, time.Second, 10*time.Millisecond)
}

func TestHTTP_Static_Fallback(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	req.NoError(os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>relay</html>"), 0o600))
	s := newStack(t, false, dir)

	// Known file
	rec := get(s.router, "/index.html")
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), "relay")

	// Client side route falls back to the index
	rec = get(s.router, "/rooms/GLOBAL")
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), "relay")

	// The API keeps its own errors
	req.Equal(http.StatusNotFound, get(s.router, "/api/chat/nowhere").Code)
}
