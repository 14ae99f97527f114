package server

import (
	"context"
	"fmt"
	"room-relay/domain"
	"room-relay/errors"
	relaygrpc "room-relay/grpc"
	"room-relay/services"
	"strings"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type RoomQueryServer struct {
	relayService services.IRelayService
}

// NewRoomQueryServer exposes the relay read side and the media disconnect hook over gRPC.
func NewRoomQueryServer(relayService services.IRelayService) *RoomQueryServer {
	return &RoomQueryServer{relayService: relayService}
}

func (s *RoomQueryServer) ListRooms(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	rooms, err := s.relayService.ListRooms(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	list, err := relaygrpc.ToRoomList(rooms)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return list, nil
}

func (s *RoomQueryServer) GetHistory(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	roomID := domain.RoomID(strings.TrimSpace(in.GetValue()))
	if roomID == "" {
		return nil, errors.MapToGRPCError(fmt.Errorf("room id is required: %w", errors.ErrInvalidPayload))
	}
	messages, err := s.relayService.History(ctx, roomID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	history, err := relaygrpc.ToHistory(roomID, messages)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return history, nil
}

// PeerDisconnected is called by the media layer when a peer drops.
func (s *RoomQueryServer) PeerDisconnected(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	peerID := domain.PeerID(strings.TrimSpace(in.GetValue()))
	if peerID == "" {
		return nil, errors.MapToGRPCError(fmt.Errorf("peer id is required: %w", errors.ErrInvalidPayload))
	}
	if err := s.relayService.PeerDisconnected(ctx, peerID); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &emptypb.Empty{}, nil
}
