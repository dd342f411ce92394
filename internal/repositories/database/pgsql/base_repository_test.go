package pgsql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"conflict sentinel", apperrors.ErrConflict, true},
		{"wrapped conflict", fmt.Errorf("mutation failed: %w", apperrors.ErrConflict), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"not found", apperrors.ErrNotFound, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryable(tc.err))
		})
	}
}
