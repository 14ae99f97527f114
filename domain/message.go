package domain

// ChatMessage is immutable once appended to a room log.
type ChatMessage struct {
	RoomID  RoomID
	Name    string
	Message string
}
