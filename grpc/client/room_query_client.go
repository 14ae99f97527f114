package client

import (
	"context"
	"room-relay/domain"
	relaygrpc "room-relay/grpc"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type RoomQueryClient struct {
	conn grpc.ClientConnInterface
}

func NewRoomQueryClient(conn grpc.ClientConnInterface) *RoomQueryClient {
	return &RoomQueryClient{conn: conn}
}

func (c *RoomQueryClient) ListRooms(ctx context.Context) ([]domain.Room, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, relaygrpc.RoomQueryListRoomsMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return relaygrpc.FromRoomList(out), nil
}

func (c *RoomQueryClient) GetHistory(ctx context.Context, roomID domain.RoomID) ([]domain.ChatMessage, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, relaygrpc.RoomQueryGetHistoryMethod, wrapperspb.String(string(roomID)), out); err != nil {
		return nil, err
	}
	_, messages := relaygrpc.FromHistory(out)
	return messages, nil
}

// PeerDisconnected notifies the relay that the media layer lost a peer.
func (c *RoomQueryClient) PeerDisconnected(ctx context.Context, peerID domain.PeerID) error {
	return c.conn.Invoke(ctx, relaygrpc.RoomQueryPeerDisconnectedMethod, wrapperspb.String(string(peerID)), new(emptypb.Empty))
}
