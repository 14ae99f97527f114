package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// relay.v1.RoomQueryService only exchanges well-known protobuf types.
const (
	RoomQueryServiceName            = "relay.v1.RoomQueryService"
	RoomQueryListRoomsMethod        = "/relay.v1.RoomQueryService/ListRooms"
	RoomQueryGetHistoryMethod       = "/relay.v1.RoomQueryService/GetHistory"
	RoomQueryPeerDisconnectedMethod = "/relay.v1.RoomQueryService/PeerDisconnected"
)

// RoomQueryServer is the server API of relay.v1.RoomQueryService.
type RoomQueryServer interface {
	// ListRooms returns every room as a struct {room, peers}.
	ListRooms(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	// GetHistory returns {roomId, messages} for the room named by the request.
	GetHistory(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// PeerDisconnected removes the peer from whatever room it sits in.
	PeerDisconnected(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

func RegisterRoomQueryServer(s grpc.ServiceRegistrar, srv RoomQueryServer) {
	s.RegisterService(&RoomQueryServiceDesc, srv)
}

var RoomQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: RoomQueryServiceName,
	HandlerType: (*RoomQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRooms", Handler: listRoomsHandler},
		{MethodName: "GetHistory", Handler: getHistoryHandler},
		{MethodName: "PeerDisconnected", Handler: peerDisconnectedHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "relay/v1/room_query",
}

func listRoomsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoomQueryServer).ListRooms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RoomQueryListRoomsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RoomQueryServer).ListRooms(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoomQueryServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RoomQueryGetHistoryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RoomQueryServer).GetHistory(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func peerDisconnectedHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoomQueryServer).PeerDisconnected(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RoomQueryPeerDisconnectedMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RoomQueryServer).PeerDisconnected(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
