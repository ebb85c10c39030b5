package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocumentEventMarshal проверяет формат сообщения о документе.
func TestDocumentEventMarshal(t *testing.T) {
	docID := uuid.New()
	userID := uuid.New()
	occurred := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)

	body, err := DocumentEvent{Type: DocumentUploaded, DocumentID: docID, UserID: userID, FilePath: "u/1_a.pdf", OccurredAt: occurred}.marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "document.uploaded", decoded["type"])
	assert.Equal(t, docID.String(), decoded["document_id"])
	assert.Equal(t, "2024-07-01T10:00:00Z", decoded["occurred_at"])
	assert.NotContains(t, decoded, "public_url")
}

// TestDocumentEventDefaultsTime проверяет подстановку времени события.
func TestDocumentEventDefaultsTime(t *testing.T) {
	body, err := DocumentEvent{Type: DocumentDeleted}.marshal()
	require.NoError(t, err)

	var decoded DocumentEvent
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.False(t, decoded.OccurredAt.IsZero())
}

// TestNoopPublisher проверяет заглушку без брокера.
func TestNoopPublisher(t *testing.T) {
	var publisher Publisher = NoopPublisher{}
	assert.NoError(t, publisher.PublishDocument(context.Background(), DocumentEvent{Type: DocumentUploaded}))
	assert.NoError(t, publisher.Close())
}
