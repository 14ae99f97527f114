package runtime

import (
	"room-relay/contract"
	"room-relay/domain"
	"sync"
)

type Set map[string]struct{}

// Subscriptions maps transport connections to room broadcast groups.
// A connection may listen to several rooms and stays subscribed until it closes.
type Subscriptions struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink // connection -> sink
	roomMembers map[domain.RoomID]Set         // room -> connections
	connRooms   map[string]map[domain.RoomID]struct{}
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]Set),
		connRooms:   make(map[string]map[domain.RoomID]struct{}),
	}
}

// GetSinksForRoom resolves the connections listening to the room into their sinks.
// Returns nil when nobody listens.
func (s *Subscriptions) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connectionID := range members {
		if sink, exists := s.sessions[connectionID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe is idempotent. The latest sink registered for a connection wins.
func (s *Subscriptions) Subscribe(connectionID string, roomID domain.RoomID, sink contract.EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[connectionID] = sink

	if _, ok := s.roomMembers[roomID]; !ok {
		s.roomMembers[roomID] = make(Set)
	}
	s.roomMembers[roomID][connectionID] = struct{}{}

	if _, ok := s.connRooms[connectionID]; !ok {
		s.connRooms[connectionID] = make(map[domain.RoomID]struct{})
	}
	s.connRooms[connectionID][roomID] = struct{}{}
}

// Unsubscribe forgets the connection and removes it from every room it listened to.
// Rooms left without listeners are dropped from the map.
func (s *Subscriptions) Unsubscribe(connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, connectionID)
	for roomID := range s.connRooms[connectionID] {
		members := s.roomMembers[roomID]
		delete(members, connectionID)
		if len(members) == 0 {
			delete(s.roomMembers, roomID)
		}
	}
	delete(s.connRooms, connectionID)
}

// Count returns the number of live connections.
func (s *Subscriptions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
