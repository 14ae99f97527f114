package gateway

import (
	"encoding/json"
	"fmt"
	"room-relay/domain"
	"room-relay/domain/event"
	"room-relay/errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Inbound events.
const (
	EventCreateRoom    = "createRoom"
	EventJoinToRoom    = "joinToRoom"
	EventLeaveFromRoom = "leaveFromRoom"
	EventSendMessage   = "sendMessage"
)

// Outbound events.
const (
	EventOnJoinToRoom = "onJoinToRoom"
	EventLeftFromRoom = "leftFromRoom"
	EventMessageSent  = "messageSent"
	EventError        = "error"
)

type websocketMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type roomPeerPayload struct {
	ID   string `json:"id" validate:"required,max=128"`
	Peer string `json:"peer" validate:"required,max=128"`
}

type joinPayload struct {
	ID    string `json:"id" validate:"required,max=128"`
	Peer  string `json:"peer" validate:"required,max=128"`
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color" validate:"max=32"`
}

type sendMessagePayload struct {
	Name    string `json:"name" validate:"required,max=64"`
	Message string `json:"message" validate:"required,max=4096"`
	RoomID  string `json:"roomId" validate:"required,max=128"`
}

type PeerDTO struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Color string `json:"color"`
}

type RoomDTO struct {
	Room  string    `json:"room"`
	Peers []PeerDTO `json:"peers"`
}

type MessageDTO struct {
	RoomID  string `json:"roomId"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type LeftDTO struct {
	ID   string `json:"id"`
	Peer string `json:"peer"`
}

type ErrorDTO struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// Decoder turns inbound frames into commands.
type Decoder struct {
	validate *validator.Validate
}

func NewDecoder() *Decoder {
	return &Decoder{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Decode returns the event name alongside the command so that a rejected
// frame can be answered with the event it was about.
func (d *Decoder) Decode(frame []byte) (string, domain.Command, error) {
	var msg websocketMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		return "", nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}

	switch msg.Event {
	case EventCreateRoom:
		var p roomPeerPayload
		if err := d.decodeData(msg.Data, &p); err != nil {
			return msg.Event, nil, err
		}
		return msg.Event, domain.CreateRoomCommand{Room: domain.RoomID(p.ID), Peer: domain.PeerID(p.Peer)}, nil
	case EventJoinToRoom:
		var p joinPayload
		if err := d.decodeData(msg.Data, &p); err != nil {
			return msg.Event, nil, err
		}
		return msg.Event, domain.JoinRoomCommand{
			Room:  domain.RoomID(p.ID),
			Peer:  domain.PeerID(p.Peer),
			Name:  p.Name,
			Color: p.Color,
		}, nil
	case EventLeaveFromRoom:
		var p roomPeerPayload
		if err := d.decodeData(msg.Data, &p); err != nil {
			return msg.Event, nil, err
		}
		return msg.Event, domain.LeaveRoomCommand{Room: domain.RoomID(p.ID), Peer: domain.PeerID(p.Peer)}, nil
	case EventSendMessage:
		var p sendMessagePayload
		if err := d.decodeData(msg.Data, &p); err != nil {
			return msg.Event, nil, err
		}
		return msg.Event, domain.SendMessageCommand{Room: domain.RoomID(p.RoomID), Name: p.Name, Message: p.Message}, nil
	default:
		return msg.Event, nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, msg.Event)
	}
}

func (d *Decoder) decodeData(data json.RawMessage, payload any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", errors.ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := d.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

// Encode renders a domain event as an outbound frame.
func Encode(evt event.DomainEvent) ([]byte, error) {
	switch e := evt.(type) {
	case event.RoomJoined:
		return json.Marshal(outboundMessage{Event: EventOnJoinToRoom, Data: ToRoomDTO(e.Room)})
	case event.PeerLeft:
		return json.Marshal(outboundMessage{Event: EventLeftFromRoom, Data: LeftDTO{ID: string(e.Room), Peer: string(e.Peer)}})
	case event.MessageSent:
		return json.Marshal(outboundMessage{Event: EventMessageSent, Data: ToMessageDTO(e.Message)})
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnknownEvent, evt)
	}
}

func EncodeError(eventName string, err error) ([]byte, error) {
	return json.Marshal(outboundMessage{Event: EventError, Data: ErrorDTO{Event: eventName, Reason: err.Error()}})
}

func ToRoomDTO(room domain.Room) RoomDTO {
	return RoomDTO{
		Room: string(room.ID),
		Peers: lo.Map(room.Peers, func(m domain.Member, _ int) PeerDTO {
			return PeerDTO{Name: m.Name, ID: string(m.ID), Color: m.Color}
		}),
	}
}

func ToMessageDTO(m domain.ChatMessage) MessageDTO {
	return MessageDTO{RoomID: string(m.RoomID), Name: m.Name, Message: m.Message}
}
