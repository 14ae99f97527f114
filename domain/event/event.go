package event

import (
	"room-relay/domain"
)

// DomainEvent is emitted by the coordinator and broadcast to every
// connection subscribed to RoomID.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// RoomJoined carries the full roster after a member joined.
type RoomJoined struct {
	Room domain.Room
}

func (e RoomJoined) RoomID() domain.RoomID {
	return e.Room.ID
}

// PeerLeft is emitted on every leave, even when the peer was not a member.
type PeerLeft struct {
	Room domain.RoomID
	Peer domain.PeerID
}

func (e PeerLeft) RoomID() domain.RoomID {
	return e.Room
}

type MessageSent struct {
	Message domain.ChatMessage
}

func (e MessageSent) RoomID() domain.RoomID {
	return e.Message.RoomID
}
