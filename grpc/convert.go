package grpc

import (
	"room-relay/domain"

	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToRoomList encodes rooms with the same field names as the websocket roster.
func ToRoomList(rooms []domain.Room) (*structpb.ListValue, error) {
	return structpb.NewList(lo.Map(rooms, func(room domain.Room, _ int) any {
		return map[string]any{
			"room": string(room.ID),
			"peers": lo.Map(room.Peers, func(peer domain.Member, _ int) any {
				return map[string]any{"name": peer.Name, "id": string(peer.ID), "color": peer.Color}
			}),
		}
	}))
}

func FromRoomList(list *structpb.ListValue) []domain.Room {
	return lo.Map(list.GetValues(), func(value *structpb.Value, _ int) domain.Room {
		fields := value.GetStructValue().GetFields()
		return domain.Room{
			ID: domain.RoomID(fields["room"].GetStringValue()),
			Peers: lo.Map(fields["peers"].GetListValue().GetValues(), func(peer *structpb.Value, _ int) domain.Member {
				peerFields := peer.GetStructValue().GetFields()
				return domain.Member{
					Name:  peerFields["name"].GetStringValue(),
					ID:    domain.PeerID(peerFields["id"].GetStringValue()),
					Color: peerFields["color"].GetStringValue(),
				}
			}),
		}
	})
}

func ToHistory(roomID domain.RoomID, messages []domain.ChatMessage) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"roomId": string(roomID),
		"messages": lo.Map(messages, func(message domain.ChatMessage, _ int) any {
			return map[string]any{"roomId": string(message.RoomID), "name": message.Name, "message": message.Message}
		}),
	})
}

func FromHistory(history *structpb.Struct) (domain.RoomID, []domain.ChatMessage) {
	fields := history.GetFields()
	messages := lo.Map(fields["messages"].GetListValue().GetValues(), func(value *structpb.Value, _ int) domain.ChatMessage {
		messageFields := value.GetStructValue().GetFields()
		return domain.ChatMessage{
			RoomID:  domain.RoomID(messageFields["roomId"].GetStringValue()),
			Name:    messageFields["name"].GetStringValue(),
			Message: messageFields["message"].GetStringValue(),
		}
	})
	return domain.RoomID(fields["roomId"].GetStringValue()), messages
}
