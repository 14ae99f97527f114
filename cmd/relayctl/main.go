package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"room-relay/domain"
	"room-relay/grpc/client"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const usage = `usage: relayctl <command>

commands:
  rooms                list rooms and their rosters
  history <room>       print the messages of a room
  disconnect <peer>    remove a peer from its room`

type Config struct {
	RelayAddr string        `envconfig:"RELAY_ADDR" default:"localhost:9090"`
	Timeout   time.Duration `envconfig:"RELAYCTL_TIMEOUT" default:"5s"`
	// RELAYCTL_DEBUG_JSON dumps gRPC request and response bodies as JSON
	DebugJSON bool `envconfig:"RELAYCTL_DEBUG_JSON" default:"false"`
	Colours   bool `envconfig:"RELAYCTL_COLOURS" default:"true"`
}

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relayctl: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string, out io.Writer) (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(args) == 0 {
		return exitConfig, fmt.Errorf("missing command\n%s", usage)
	}
	color.Enable = config.Colours

	conn, err := grpc.NewClient(config.RelayAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(debugInterceptor(config.DebugJSON)))
	if err != nil {
		return exitRuntime, fmt.Errorf("connect to %s: %w", config.RelayAddr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	if err := execute(ctx, client.NewRoomQueryClient(conn), args, out); err != nil {
		if _, ok := status.FromError(err); ok {
			return exitRuntime, err
		}
		return exitConfig, err
	}
	return exitOK, nil
}

type roomQuerier interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetHistory(ctx context.Context, roomID domain.RoomID) ([]domain.ChatMessage, error)
	PeerDisconnected(ctx context.Context, peerID domain.PeerID) error
}

func execute(ctx context.Context, querier roomQuerier, args []string, out io.Writer) error {
	switch args[0] {
	case "rooms":
		rooms, err := querier.ListRooms(ctx)
		if err != nil {
			return err
		}
		renderRooms(out, rooms)
	case "history":
		if len(args) != 2 {
			return fmt.Errorf("history takes one room id\n%s", usage)
		}
		messages, err := querier.GetHistory(ctx, domain.RoomID(args[1]))
		if err != nil {
			return err
		}
		renderHistory(out, messages)
	case "disconnect":
		if len(args) != 2 {
			return fmt.Errorf("disconnect takes one peer id\n%s", usage)
		}
		if err := querier.PeerDisconnected(ctx, domain.PeerID(args[1])); err != nil {
			return err
		}
		fmt.Fprintln(out, color.Green.Render("disconnect sent for "+args[1]))
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	return nil
}

func debugInterceptor(debugJSON bool) grpc.UnaryClientInterceptor {
	marshaler := protojson.MarshalOptions{Multiline: true, EmitUnpopulated: true}
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		if !debugJSON {
			return err
		}

		logBuilder := strings.Builder{}
		fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v\nREQUEST:\n", method, status.Code(err), time.Since(start))
		fmt.Fprintln(&logBuilder, marshaler.Format(req.(proto.Message)))
		if err != nil {
			fmt.Fprintln(&logBuilder, "ERROR:", err)
		} else {
			fmt.Fprintln(&logBuilder, "RESPONSE:")
			fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
		}
		fmt.Fprint(os.Stderr, color.Gray.Render(logBuilder.String()))
		return err
	}
}
