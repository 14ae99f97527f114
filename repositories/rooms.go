package repositories

import (
	"room-relay/domain"
	"room-relay/errors"

	"github.com/samber/lo"
)

// RoomRegistry holds every room and its roster.
// It is owned by the coordinator goroutine and is not safe for concurrent use.
type RoomRegistry struct {
	rooms map[domain.RoomID]*domain.Room
	order []domain.RoomID
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID]*domain.Room)}
}

// CreateRoom registers an empty room.
// It refuses when the room already exists or when the requester sits in any room.
func (r *RoomRegistry) CreateRoom(roomID domain.RoomID, requester domain.PeerID) error {
	if _, ok := r.rooms[roomID]; ok {
		return errors.ErrDuplicateRoom
	}
	if _, ok := r.FindRoomOfPeer(requester); ok {
		return errors.ErrDuplicatePeer
	}
	r.insert(domain.NewRoom(roomID))
	return nil
}

func (r *RoomRegistry) FindRoom(roomID domain.RoomID) (domain.Room, bool) {
	room, ok := r.rooms[roomID]
	if !ok {
		return domain.Room{}, false
	}
	return room.Snapshot(), true
}

func (r *RoomRegistry) FindRoomOfPeer(peerID domain.PeerID) (domain.Room, bool) {
	for _, id := range r.order {
		if room := r.rooms[id]; room.HasPeer(peerID) {
			return room.Snapshot(), true
		}
	}
	return domain.Room{}, false
}

// AddMember puts the member in the room, creating the room with the member
// as sole occupant when it does not exist yet.
func (r *RoomRegistry) AddMember(roomID domain.RoomID, member domain.Member) (added, created bool) {
	room, ok := r.rooms[roomID]
	if !ok {
		r.insert(domain.NewRoom(roomID, member))
		return true, true
	}
	return room.AddMember(member), false
}

func (r *RoomRegistry) RemoveMember(roomID domain.RoomID, peerID domain.PeerID) bool {
	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	return room.RemoveMember(peerID)
}

// List returns a snapshot of every room in creation order.
func (r *RoomRegistry) List() []domain.Room {
	return lo.Map(r.order, func(id domain.RoomID, _ int) domain.Room {
		return r.rooms[id].Snapshot()
	})
}

func (r *RoomRegistry) insert(room *domain.Room) {
	r.rooms[room.ID] = room
	r.order = append(r.order, room.ID)
}
