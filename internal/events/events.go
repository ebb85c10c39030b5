package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DocumentEventType string

const (
	DocumentUploaded DocumentEventType = "document.uploaded"
	DocumentDeleted  DocumentEventType = "document.deleted"
)

// DocumentEvent сообщает внешнему процессу разбора о новом или удаленном документе.
type DocumentEvent struct {
	Type       DocumentEventType `json:"type"`
	DocumentID uuid.UUID         `json:"document_id"`
	UserID     uuid.UUID         `json:"user_id"`
	FilePath   string            `json:"file_path"`
	PublicURL  string            `json:"public_url,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Publisher interface {
	PublishDocument(ctx context.Context, event DocumentEvent) error
	Close() error
}

func (e DocumentEvent) marshal() ([]byte, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return json.Marshal(e)
}

// NoopPublisher используется, когда брокер не настроен.
type NoopPublisher struct{}

func (NoopPublisher) PublishDocument(context.Context, DocumentEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
