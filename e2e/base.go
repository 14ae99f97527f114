package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"room-relay/grpc/client"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration and skips without a relay
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayGRPCAddr == "" {
		s.T().Skip("E2E_RELAY_GRPC_ADDR is not set")
	}
}

func (s *BaseRelaySuite) header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// GrpcConn initializes a gRPC connection with logging, colors, and JSON debugging
func (s *BaseRelaySuite) GrpcConn(t *testing.T, name string, addr string) *grpc.ClientConn {
	s.header(t, name)

	marshaler := protojson.MarshalOptions{
		UseProtoNames:   true,
		Multiline:       true,
		EmitUnpopulated: true,
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, marshaler.Format(req.(proto.Message)))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+addr)
	return conn
}

// WithRelay provides a room query client within a contextual test step
func (s *BaseRelaySuite) WithRelay(name string, fn func(ctx context.Context, client *client.RoomQueryClient)) {
	conn := s.GrpcConn(s.T(), name, s.Config.RelayGRPCAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fn(ctx, client.NewRoomQueryClient(conn))
}

// Socket opens a websocket on the relay gateway, closed at the end of the test
func (s *BaseRelaySuite) Socket(name string) *websocket.Conn {
	s.header(s.T(), name)
	conn, _, err := websocket.DefaultDialer.Dial(s.Config.RelayWSURL, nil)
	s.Require().NoError(err, "Failed to open websocket at "+s.Config.RelayWSURL)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *BaseRelaySuite) Send(conn *websocket.Conn, eventName string, data any) {
	payload, err := json.Marshal(data)
	s.Require().NoError(err)
	frame, err := json.Marshal(map[string]any{"event": eventName, "data": json.RawMessage(payload)})
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, frame))
}

// Next reads frames until one carries the expected event name
func (s *BaseRelaySuite) Next(conn *websocket.Conn, eventName string) json.RawMessage {
	for {
		s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		_, frame, err := conn.ReadMessage()
		s.Require().NoError(err, "no %s frame received", eventName)

		var message struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		s.Require().NoError(json.Unmarshal(frame, &message))
		if message.Event == eventName {
			return message.Data
		}
	}
}
