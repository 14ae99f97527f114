package domain

type Command interface {
	RoomID() RoomID
}

type CreateRoomCommand struct {
	Room RoomID
	Peer PeerID
}

func (c CreateRoomCommand) RoomID() RoomID {
	return c.Room
}

type JoinRoomCommand struct {
	Room  RoomID
	Peer  PeerID
	Name  string
	Color string
}

func (c JoinRoomCommand) RoomID() RoomID {
	return c.Room
}

func (c JoinRoomCommand) Member() Member {
	return Member{Name: c.Name, ID: c.Peer, Color: c.Color}
}

type LeaveRoomCommand struct {
	Room RoomID
	Peer PeerID
}

func (c LeaveRoomCommand) RoomID() RoomID {
	return c.Room
}

type SendMessageCommand struct {
	Room    RoomID
	Name    string
	Message string
}

func (c SendMessageCommand) RoomID() RoomID {
	return c.Room
}

// DisconnectPeerCommand comes from the media layer, which only knows the peer.
type DisconnectPeerCommand struct {
	Peer PeerID
}

func (c DisconnectPeerCommand) RoomID() RoomID {
	return ""
}

// ListRoomsQuery and RoomHistoryQuery are answered by the coordinator on
// their reply channel, which must be buffered.
type ListRoomsQuery struct {
	Reply chan<- []Room
}

func (q ListRoomsQuery) RoomID() RoomID {
	return ""
}

type RoomHistoryQuery struct {
	Room  RoomID
	Reply chan<- RoomHistory
}

func (q RoomHistoryQuery) RoomID() RoomID {
	return q.Room
}

type RoomHistory struct {
	Messages []ChatMessage
	Found    bool
	Err      error
}
