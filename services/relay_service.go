package services

import (
	"context"
	"fmt"
	"room-relay/contract"
	"room-relay/domain"
	"room-relay/errors"
	"room-relay/runtime"
	"room-relay/search"
	"strings"
)

type IRelayService interface {
	CreateRoom(ctx context.Context, cmd domain.CreateRoomCommand) error
	JoinRoom(ctx context.Context, connectionID string, sink contract.EventSink, cmd domain.JoinRoomCommand) error
	LeaveRoom(ctx context.Context, cmd domain.LeaveRoomCommand) error
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) error
	PeerDisconnected(ctx context.Context, peerID domain.PeerID) error
	Disconnect(connectionID string)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	History(ctx context.Context, roomID domain.RoomID) ([]domain.ChatMessage, error)
	Search(ctx context.Context, roomID domain.RoomID, terms string, limit int) ([]search.Hit, error)
}

type Searcher interface {
	Search(ctx context.Context, roomID domain.RoomID, terms string, limit int) ([]search.Hit, error)
}

type RelayService struct {
	orchestrator *runtime.Orchestrator
	searcher     Searcher
}

// NewRelayService builds the service; searcher may be nil when search is disabled.
func NewRelayService(o *runtime.Orchestrator, searcher Searcher) *RelayService {
	return &RelayService{orchestrator: o, searcher: searcher}
}

func (s *RelayService) CreateRoom(ctx context.Context, cmd domain.CreateRoomCommand) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

// JoinRoom subscribes the connection before dispatching the join so that the
// joiner receives its own roster broadcast.
func (s *RelayService) JoinRoom(ctx context.Context, connectionID string, sink contract.EventSink, cmd domain.JoinRoomCommand) error {
	s.orchestrator.Subscribe(connectionID, cmd.Room, sink)
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *RelayService) LeaveRoom(ctx context.Context, cmd domain.LeaveRoomCommand) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *RelayService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *RelayService) PeerDisconnected(ctx context.Context, peerID domain.PeerID) error {
	return s.orchestrator.Dispatch(ctx, domain.DisconnectPeerCommand{Peer: peerID})
}

// Disconnect drops the subscriptions of a closed connection. Rosters are not touched.
func (s *RelayService) Disconnect(connectionID string) {
	s.orchestrator.Unsubscribe(connectionID)
}

func (s *RelayService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.orchestrator.ListRooms(ctx)
}

func (s *RelayService) History(ctx context.Context, roomID domain.RoomID) ([]domain.ChatMessage, error) {
	messages, found, err := s.orchestrator.History(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("history of %q: %w", roomID, errors.ErrUnknownRoom)
	}
	return messages, nil
}

func (s *RelayService) Search(ctx context.Context, roomID domain.RoomID, terms string, limit int) ([]search.Hit, error) {
	if s.searcher == nil {
		return nil, errors.ErrSearchDisabled
	}
	if strings.TrimSpace(terms) == "" {
		return nil, fmt.Errorf("%w: empty search terms", errors.ErrInvalidPayload)
	}
	if _, err := s.History(ctx, roomID); err != nil {
		return nil, err
	}
	return s.searcher.Search(ctx, roomID, terms, limit)
}
