package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	cases := map[string]error{
		"23505": ErrConflict,
		"23514": ErrInvalid,
		"22003": ErrInvalid,
	}
	for code, want := range cases {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, mapPgError(err), want, code)
	}

	other := &pgconn.PgError{Code: "40001"}
	assert.Same(t, other, mapPgError(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapPgError(plain))
}
