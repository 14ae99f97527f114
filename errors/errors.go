package errors

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Presence outcomes. The coordinator treats them as benign no-ops,
// they are logged and never surfaced to clients.
var (
	ErrDuplicateRoom = fmt.Errorf("room already exists")
	ErrDuplicatePeer = fmt.Errorf("peer is already a member of a room")
	ErrUnknownRoom   = fmt.Errorf("unknown room")
	ErrNotAMember    = fmt.Errorf("peer is not a member of the room")
)

// Gateway and runtime failures.
var (
	ErrInvalidPayload   = fmt.Errorf("invalid payload")
	ErrUnknownEvent     = fmt.Errorf("unknown event")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrSinkFull         = fmt.Errorf("sink buffer is full")
	ErrSearchDisabled   = fmt.Errorf("search is disabled")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
	ErrUnknownStoreKind = fmt.Errorf("unknown history store")
)

// MapToGRPCError translates domain and runtime errors into gRPC status errors.
func MapToGRPCError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidPayload):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrUnknownRoom):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrSearchDisabled):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
