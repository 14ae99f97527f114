package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapToGRPCError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"invalid payload", fmt.Errorf("%w: id is required", ErrInvalidPayload), codes.InvalidArgument},
		{"unknown room", ErrUnknownRoom, codes.NotFound},
		{"search disabled", ErrSearchDisabled, codes.Unimplemented},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"canceled", fmt.Errorf("query: %w", context.Canceled), codes.Canceled},
		{"anything else", fmt.Errorf("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			st, ok := status.FromError(MapToGRPCError(tt.err))
			req.True(ok)
			req.Equal(tt.code, st.Code())
		})
	}
}

func TestMapToGRPCError_Nil(t *testing.T) {
	require.NoError(t, MapToGRPCError(nil))
}
