package repositories

import (
	"encoding/hex"
	"fmt"
	"room-relay/domain"
	"room-relay/errors"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// BadgerMessageLog stores room histories in badger.
// Keys are formatted as:
//   - "log:{room_hex}" marks that the room has a log
//   - "msg:{room_hex}:{seq_padded}" holds one message
//
// The room id is hex encoded so that a room named "a:b" never shares a prefix
// with a room named "a". The 19-digit padding keeps the lexicographical order
// equal to the append order.
type BadgerMessageLog struct {
	db  *badger.DB
	mu  sync.Mutex
	seq map[domain.RoomID]uint64
}

func NewBadgerMessageLog(db *badger.DB) *BadgerMessageLog {
	return &BadgerMessageLog{db: db, seq: make(map[domain.RoomID]uint64)}
}

// OpenInMemoryBadger opens a badger instance that lives only in RAM.
func OpenInMemoryBadger() (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return db, nil
}

func (b *BadgerMessageLog) CreateLog(roomID domain.RoomID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.seq[roomID]; ok {
		return nil
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(logKey(roomID), []byte{})
	})
	if err != nil {
		return fmt.Errorf("create log %q: %w", roomID, err)
	}
	b.seq[roomID] = 0
	return nil
}

func (b *BadgerMessageLog) Append(roomID domain.RoomID, message domain.ChatMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	seq, ok := b.seq[roomID]
	if !ok {
		return fmt.Errorf("append to %q: %w", roomID, errors.ErrUnknownRoom)
	}
	bytes, err := marshalMessage(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(roomID, seq+1), bytes)
	})
	if err != nil {
		return fmt.Errorf("append to %q: %w", roomID, err)
	}
	b.seq[roomID] = seq + 1
	return nil
}

// GetLog scans the room prefix; keys come back in append order.
func (b *BadgerMessageLog) GetLog(roomID domain.RoomID) ([]domain.ChatMessage, bool, error) {
	var (
		found    bool
		messages = []domain.ChatMessage{}
	)
	err := b.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(logKey(roomID)); err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true

		prefix := messagePrefix(roomID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				message, err := unmarshalMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read log %q: %w", roomID, err)
	}
	if !found {
		return nil, false, nil
	}
	return messages, true, nil
}

// DescribeEntry renders a stored key and value for the badger inspector.
func DescribeEntry(key string, value []byte) (kind, detail string) {
	switch {
	case strings.HasPrefix(key, "log:"):
		room, err := hex.DecodeString(strings.TrimPrefix(key, "log:"))
		if err != nil {
			return "LOG", "Error: bad room key"
		}
		return "LOG", string(room)
	case strings.HasPrefix(key, "msg:"):
		message, err := unmarshalMessage(value)
		if err != nil {
			return "MSG", "Error: unmarshal failed"
		}
		return "MSG", fmt.Sprintf("[%s] %s: %s", message.RoomID, message.Name, message.Message)
	default:
		return "RAW", ""
	}
}

func logKey(roomID domain.RoomID) []byte {
	return []byte("log:" + hex.EncodeToString([]byte(roomID)))
}

func messagePrefix(roomID domain.RoomID) []byte {
	return []byte("msg:" + hex.EncodeToString([]byte(roomID)) + ":")
}

func messageKey(roomID domain.RoomID, seq uint64) []byte {
	return append(messagePrefix(roomID), []byte(fmt.Sprintf("%019d", seq))...)
}

func marshalMessage(message domain.ChatMessage) ([]byte, error) {
	value, err := structpb.NewStruct(map[string]any{
		"roomId":  string(message.RoomID),
		"name":    message.Name,
		"message": message.Message,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(value)
}

func unmarshalMessage(bytes []byte) (domain.ChatMessage, error) {
	var value structpb.Struct
	if err := proto.Unmarshal(bytes, &value); err != nil {
		return domain.ChatMessage{}, err
	}
	fields := value.GetFields()
	return domain.ChatMessage{
		RoomID:  domain.RoomID(fields["roomId"].GetStringValue()),
		Name:    fields["name"].GetStringValue(),
		Message: fields["message"].GetStringValue(),
	}, nil
}
