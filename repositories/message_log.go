package repositories

import (
	"fmt"
	"room-relay/domain"
	"room-relay/errors"
)

// MemoryMessageLog keeps the history of each room in a slice.
// Like RoomRegistry it belongs to the coordinator goroutine.
type MemoryMessageLog struct {
	logs map[domain.RoomID][]domain.ChatMessage
}

func NewMemoryMessageLog() *MemoryMessageLog {
	return &MemoryMessageLog{logs: make(map[domain.RoomID][]domain.ChatMessage)}
}

func (m *MemoryMessageLog) CreateLog(roomID domain.RoomID) error {
	if _, ok := m.logs[roomID]; !ok {
		m.logs[roomID] = []domain.ChatMessage{}
	}
	return nil
}

func (m *MemoryMessageLog) Append(roomID domain.RoomID, message domain.ChatMessage) error {
	log, ok := m.logs[roomID]
	if !ok {
		return fmt.Errorf("append to %q: %w", roomID, errors.ErrUnknownRoom)
	}
	m.logs[roomID] = append(log, message)
	return nil
}

// GetLog returns a copy of the history so callers cannot alter it.
func (m *MemoryMessageLog) GetLog(roomID domain.RoomID) ([]domain.ChatMessage, bool, error) {
	log, ok := m.logs[roomID]
	if !ok {
		return nil, false, nil
	}
	messages := make([]domain.ChatMessage, len(log))
	copy(messages, log)
	return messages, true, nil
}
