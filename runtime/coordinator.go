//go:generate go run go.uber.org/mock/mockgen -source=coordinator.go -destination=mock_moderator_test.go -package=runtime
package runtime

import (
	"context"
	goerrors "errors"
	"log/slog"
	"room-relay/contract"
	"room-relay/domain"
	"room-relay/domain/event"
	"room-relay/errors"
	"room-relay/repositories"
)

// Moderator rewrites chat text before it is stored and broadcast.
type Moderator interface {
	Censor(text string) (string, []string)
}

// Coordinator is the only writer of the room registry and the message log.
// It reads commands one at a time from a single channel, so every transition
// and every query observes a consistent state. The state lives in the struct:
// when Run is restarted after a panic, rooms and histories are kept.
type Coordinator struct {
	log       *slog.Logger
	rooms     *repositories.RoomRegistry
	messages  contract.IMessageLog
	moderator Moderator
	commands  <-chan domain.Command
	events    chan<- event.DomainEvent
}

func NewCoordinator(log *slog.Logger,
	rooms *repositories.RoomRegistry,
	messages contract.IMessageLog,
	moderator Moderator,
	commands <-chan domain.Command,
	events chan<- event.DomainEvent) *Coordinator {
	return &Coordinator{
		log:       log,
		rooms:     rooms,
		messages:  messages,
		moderator: moderator,
		commands:  commands,
		events:    events,
	}
}

// Bootstrap creates empty rooms with their logs. It must be called before Run.
func (c *Coordinator) Bootstrap(roomIDs ...domain.RoomID) error {
	for _, roomID := range roomIDs {
		if err := c.rooms.CreateRoom(roomID, ""); err != nil {
			c.log.Debug("Default room not created", "room_id", roomID, "error", err)
		}
		if err := c.messages.CreateLog(roomID); err != nil {
			return err
		}
		c.log.Info("Default room ready", "room_id", roomID)
	}
	return nil
}

func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.log.Debug("Context done, stopping coordinator")
			return nil
		case cmd, ok := <-c.commands:
			if !ok {
				c.log.Debug("Command channel is closed")
				return nil
			}
			c.handle(ctx, cmd)
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, cmd domain.Command) {
	switch q := cmd.(type) {
	case domain.ListRoomsQuery:
		q.Reply <- c.rooms.List()
	case domain.RoomHistoryQuery:
		messages, found, err := c.messages.GetLog(q.Room)
		q.Reply <- domain.RoomHistory{Messages: messages, Found: found, Err: err}
	default:
		for _, evt := range c.Apply(cmd) {
			select {
			case c.events <- evt:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Apply runs one state transition and returns the events it produced, in order.
func (c *Coordinator) Apply(cmd domain.Command) []event.DomainEvent {
	switch cmd := cmd.(type) {
	case domain.CreateRoomCommand:
		c.createRoom(cmd)
		return nil
	case domain.JoinRoomCommand:
		return c.join(cmd)
	case domain.LeaveRoomCommand:
		return c.leave(cmd.Room, cmd.Peer)
	case domain.DisconnectPeerCommand:
		return c.disconnect(cmd.Peer)
	case domain.SendMessageCommand:
		return c.sendMessage(cmd)
	default:
		c.log.Warn("Unsupported command", "command", cmd)
		return nil
	}
}

func (c *Coordinator) createRoom(cmd domain.CreateRoomCommand) {
	if err := c.rooms.CreateRoom(cmd.Room, cmd.Peer); err != nil {
		c.log.Debug("Room not created", "room_id", cmd.Room, "peer_id", cmd.Peer, "error", err)
		return
	}
	if err := c.messages.CreateLog(cmd.Room); err != nil {
		c.log.Error("Unable to create room log", "room_id", cmd.Room, "error", err)
		return
	}
	c.log.Debug("Room created", "room_id", cmd.Room, "peer_id", cmd.Peer)
}

func (c *Coordinator) join(cmd domain.JoinRoomCommand) []event.DomainEvent {
	var events []event.DomainEvent

	if current, ok := c.rooms.FindRoomOfPeer(cmd.Peer); ok {
		if current.ID == cmd.Room {
			c.log.Debug("Peer already in room", "room_id", cmd.Room, "peer_id", cmd.Peer)
			return nil
		}
		// A peer sits in one room at a time
		events = append(events, c.leave(current.ID, cmd.Peer)...)
	}

	added, created := c.rooms.AddMember(cmd.Room, cmd.Member())
	if created {
		if err := c.messages.CreateLog(cmd.Room); err != nil {
			c.log.Error("Unable to create room log", "room_id", cmd.Room, "error", err)
		}
	}
	if !added {
		return events
	}

	room, _ := c.rooms.FindRoom(cmd.Room)
	c.log.Debug("Peer joined", "room_id", cmd.Room, "peer_id", cmd.Peer, "created", created)
	return append(events, event.RoomJoined{Room: room})
}

// leave broadcasts PeerLeft even when the peer was not a member.
func (c *Coordinator) leave(roomID domain.RoomID, peerID domain.PeerID) []event.DomainEvent {
	if !c.rooms.RemoveMember(roomID, peerID) {
		c.log.Debug("Leave without membership", "room_id", roomID, "peer_id", peerID, "error", errors.ErrNotAMember)
	}
	return []event.DomainEvent{event.PeerLeft{Room: roomID, Peer: peerID}}
}

func (c *Coordinator) disconnect(peerID domain.PeerID) []event.DomainEvent {
	room, ok := c.rooms.FindRoomOfPeer(peerID)
	if !ok {
		c.log.Debug("Disconnected peer is in no room", "peer_id", peerID)
		return nil
	}
	return c.leave(room.ID, peerID)
}

func (c *Coordinator) sendMessage(cmd domain.SendMessageCommand) []event.DomainEvent {
	text := cmd.Message
	if c.moderator != nil {
		censored, words := c.moderator.Censor(text)
		if len(words) > 0 {
			c.log.Info("Message moderated", "room_id", cmd.Room, "name", cmd.Name, "words", words)
		}
		text = censored
	}

	message := domain.ChatMessage{RoomID: cmd.Room, Name: cmd.Name, Message: text}
	if err := c.messages.Append(cmd.Room, message); err != nil {
		if goerrors.Is(err, errors.ErrUnknownRoom) {
			c.log.Debug("Message to a room without log", "room_id", cmd.Room)
		} else {
			c.log.Error("Unable to append message", "room_id", cmd.Room, "error", err)
		}
		return nil
	}
	return []event.DomainEvent{event.MessageSent{Message: message}}
}
