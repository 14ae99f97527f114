package internal

import (
	"fmt"
	"room-relay/domain"
	"room-relay/errors"
	"strings"
	"time"

	"github.com/samber/lo"
)

type StoreKind string

const (
	MemoryStore StoreKind = "memory"
	BadgerStore StoreKind = "badger"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	HTTPPort             int           `env:"HTTP_PORT,default=8080"`
	GRPCPort             int           `env:"GRPC_PORT,default=9090"`
	DebugPort            int           `env:"DEBUG_PORT,default=8081"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=500ms"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=0s"`
	WriteWait            time.Duration `env:"WRITE_WAIT,default=10s"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s"`
	MaxFrameSize         int64         `env:"MAX_FRAME_SIZE,default=65536"`
	HistoryStore         string        `env:"HISTORY_STORE,default=memory"`
	DefaultRooms         string        `env:"DEFAULT_ROOMS,default=GLOBAL"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	SearchEnabled        bool          `env:"SEARCH_ENABLED,default=false"`
	StaticDir            string        `env:"STATIC_DIR"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// Rooms returns the bootstrap rooms, in the configured order and without duplicates.
func (c Config) Rooms() []domain.RoomID {
	return lo.Map(lo.Uniq(splitList(c.DefaultRooms)), func(id string, _ int) domain.RoomID {
		return domain.RoomID(id)
	})
}

// Words returns the censored words, moderation is disabled when empty.
func (c Config) Words() []string {
	return splitList(c.CensoredWords)
}

func (c Config) Store() (StoreKind, error) {
	switch kind := StoreKind(strings.ToLower(strings.TrimSpace(c.HistoryStore))); kind {
	case MemoryStore, BadgerStore:
		return kind, nil
	default:
		return "", fmt.Errorf("HISTORY_STORE %q: %w", c.HistoryStore, errors.ErrUnknownStoreKind)
	}
}

func splitList(str string) []string {
	return lo.Compact(lo.Map(strings.Split(str, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}
