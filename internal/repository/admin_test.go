package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestBuildChatRequestWhereEmpty проверяет пустой фильтр журнала.
func TestBuildChatRequestWhereEmpty(t *testing.T) {
	where, args := buildChatRequestWhere(ChatRequestFilter{})

	assert.Empty(t, where)
	assert.Empty(t, args)
}

// TestBuildChatRequestWhere проверяет сочетание фильтров журнала.
func TestBuildChatRequestWhere(t *testing.T) {
	userID := uuid.New()
	success := false
	action := "tax_question"

	where, args := buildChatRequestWhere(ChatRequestFilter{UserID: &userID, Success: &success, Action: &action})

	assert.Equal(t, " WHERE user_id = $1 AND success = $2 AND action = $3", where)
	assert.Equal(t, []any{userID, false, "tax_question"}, args)
}
