package domain

import "github.com/samber/lo"

type RoomID string

// Room is a named channel grouping members for presence and chat scoping.
// Peers are kept in arrival order.
type Room struct {
	ID    RoomID
	Peers []Member
}

func NewRoom(id RoomID, peers ...Member) *Room {
	return &Room{ID: id, Peers: peers}
}

func (r *Room) HasPeer(peerID PeerID) bool {
	return lo.ContainsBy(r.Peers, func(m Member) bool { return m.ID == peerID })
}

// AddMember appends the member unless a member with the same peer id is already present.
func (r *Room) AddMember(member Member) bool {
	if r.HasPeer(member.ID) {
		return false
	}
	r.Peers = append(r.Peers, member)
	return true
}

func (r *Room) RemoveMember(peerID PeerID) bool {
	if !r.HasPeer(peerID) {
		return false
	}
	r.Peers = lo.Reject(r.Peers, func(m Member, _ int) bool { return m.ID == peerID })
	return true
}

// Snapshot returns a copy that does not share the roster with the room.
func (r *Room) Snapshot() Room {
	peers := make([]Member, len(r.Peers))
	copy(peers, r.Peers)
	return Room{ID: r.ID, Peers: peers}
}
