package search

import (
	"context"
	"fmt"
	"log/slog"
	"room-relay/domain"
	"room-relay/domain/event"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	fieldRoom    = "room"
	fieldName    = "name"
	fieldMessage = "message"
	fieldLang    = "lang"

	DefaultLimit = 20
	MaxLimit     = 200
)

type Hit struct {
	RoomID  domain.RoomID
	Name    string
	Message string
	Lang    string
	Score   float64
}

// Index keeps every chat message in an in-memory full text index.
// It is registered as a permanent sink, so it sees messages of every room.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewInMemoryIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("open bluge writer: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessageSent)
	if !ok {
		return nil
	}
	message := evt.Message
	lang := whatlanggo.Detect(message.Message).Lang.Iso6391()

	doc := bluge.NewDocument(uuid.NewString()).
		AddField(bluge.NewKeywordField(fieldRoom, string(message.RoomID)).StoreValue()).
		AddField(bluge.NewKeywordField(fieldName, message.Name).StoreValue()).
		AddField(bluge.NewTextField(fieldMessage, message.Message).StoreValue()).
		AddField(bluge.NewKeywordField(fieldLang, lang).StoreValue())

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message: %w", err)
	}
	i.log.Debug("Message indexed", "room_id", message.RoomID, "lang", lang)
	return nil
}

// Search returns the messages of a room matching any of the terms, best match first.
func (i *Index) Search(ctx context.Context, roomID domain.RoomID, terms string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open bluge reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField(fieldMessage)).
		AddMust(bluge.NewTermQuery(string(roomID)).SetField(fieldRoom))

	dmi, err := reader.Search(ctx, bluge.NewTopNSearchRequest(limit, query))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", roomID, err)
	}

	hits := []Hit{}
	match, err := dmi.Next()
	for err == nil && match != nil {
		hit := Hit{Score: match.Score}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldRoom:
				hit.RoomID = domain.RoomID(value)
			case fieldName:
				hit.Name = string(value)
			case fieldMessage:
				hit.Message = string(value)
			case fieldLang:
				hit.Lang = string(value)
			}
			return true
		})
		if err != nil {
			break
		}
		hits = append(hits, hit)
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return hits, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}
