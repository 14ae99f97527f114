package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"room-relay/domain"
	"room-relay/services"
	"room-relay/sink"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type Options struct {
	BufferSize   int
	WriteWait    time.Duration
	PongWait     time.Duration
	MaxFrameSize int64
}

// withDefaults fills the unset options with the relay defaults.
func (o Options) withDefaults() Options {
	if o.BufferSize <= 0 {
		o.BufferSize = 64
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = 64 << 10
	}
	return o
}

func (o Options) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}

// Gateway serves one websocket per client. Inbound frames are decoded into
// commands, room events are written back through the connection sink.
type Gateway struct {
	log      *slog.Logger
	service  services.IRelayService
	decoder  *Decoder
	upgrader websocket.Upgrader
	options  Options
}

func NewGateway(log *slog.Logger, service services.IRelayService, options Options) *Gateway {
	return &Gateway{
		log:     log,
		service: service,
		decoder: NewDecoder(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		options: options.withDefaults(),
	}
}

// Serve upgrades the request and blocks until the connection is closed.
// Closing the connection only drops its subscriptions: rosters change on
// explicit leave or on the media layer's disconnect signal.
func (g *Gateway) Serve(c echo.Context) error {
	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		g.log.Error("Unable to upgrade request", "remote", c.Request().RemoteAddr, "error", err)
		return nil
	}

	connectionID := uuid.NewString()
	log := g.log.With("conn_id", connectionID)
	connSink := sink.NewConnectionSink(connectionID, g.options.BufferSize)
	replies := make(chan []byte, g.options.BufferSize)

	ctx, cancel := context.WithCancel(context.Background())
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		g.writePump(ctx, log, conn, connSink, replies)
	}()

	log.Debug("Connection opened", "remote", conn.RemoteAddr().String())
	g.readPump(ctx, log, conn, connSink, replies)

	connSink.Close()
	g.service.Disconnect(connectionID)
	cancel()
	<-writerDone
	_ = conn.Close()
	log.Debug("Connection closed")
	return nil
}

func (g *Gateway) readPump(ctx context.Context, log *slog.Logger, conn *websocket.Conn, connSink *sink.ConnectionSink, replies chan<- []byte) {
	conn.SetReadLimit(g.options.MaxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(g.options.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(g.options.PongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Connection lost", "error", err)
			}
			return
		}

		eventName, cmd, err := g.decoder.Decode(frame)
		if err != nil {
			log.Debug("Frame rejected", "event", eventName, "error", err)
			g.reply(log, replies, eventName, err)
			continue
		}
		if err := g.dispatch(ctx, connSink, cmd); err != nil {
			log.Warn("Command not handled", "event", eventName, "error", err)
		}
	}
}

func (g *Gateway) dispatch(ctx context.Context, connSink *sink.ConnectionSink, cmd domain.Command) error {
	switch cmd := cmd.(type) {
	case domain.CreateRoomCommand:
		return g.service.CreateRoom(ctx, cmd)
	case domain.JoinRoomCommand:
		return g.service.JoinRoom(ctx, connSink.ID, connSink, cmd)
	case domain.LeaveRoomCommand:
		return g.service.LeaveRoom(ctx, cmd)
	case domain.SendMessageCommand:
		return g.service.SendMessage(ctx, cmd)
	default:
		return nil
	}
}

func (g *Gateway) reply(log *slog.Logger, replies chan<- []byte, eventName string, cause error) {
	frame, err := EncodeError(eventName, cause)
	if err != nil {
		log.Error("Unable to encode error frame", "error", err)
		return
	}
	select {
	case replies <- frame:
	default:
		log.Debug("Error frame dropped, buffer full")
	}
}

// writePump is the only writer of the connection.
func (g *Gateway) writePump(ctx context.Context, log *slog.Logger, conn *websocket.Conn, connSink *sink.ConnectionSink, replies <-chan []byte) {
	ticker := time.NewTicker(g.options.pingPeriod())
	defer ticker.Stop()

	write := func(frame []byte) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(g.options.WriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Debug("Error writing message", "error", err)
			_ = conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(g.options.WriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case evt := <-connSink.Events():
			frame, err := Encode(evt)
			if err != nil {
				log.Error("Unable to encode event", "error", err)
				continue
			}
			if !write(frame) {
				return
			}
		case frame := <-replies:
			if !write(frame) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(g.options.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("Error writing ping message", "error", err)
				_ = conn.Close()
				return
			}
		}
	}
}
