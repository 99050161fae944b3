//go:build !integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"gym-membership/internal/domain"
)

func TestMapReadErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrNotFound},
		{name: "malformed uuid", err: &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, want: domain.ErrNotFound},
		{name: "wrapped malformed uuid", err: fmt.Errorf("query: %w", &pgconn.PgError{Code: "22P02"}), want: domain.ErrNotFound},
		{name: "deadline", err: context.DeadlineExceeded, want: context.DeadlineExceeded},
		{name: "bad executor", err: domain.ErrInvalidExecContext, want: domain.ErrInvalidExecContext},
		{name: "other driver failure", err: &pgconn.PgError{Code: "57P01"}, want: domain.ErrReadDatabaseRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapReadErr("lock flat subscription", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("should pass nil through", func(t *testing.T) {
		if err := mapReadErr("op", nil); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})
}

func TestMapWriteErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: domain.ErrAlreadyExists},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: domain.ErrNotFound},
		{name: "malformed uuid", err: &pgconn.PgError{Code: "22P02"}, want: domain.ErrNotFound},
		{name: "anything else", err: errors.New("connection reset"), want: domain.ErrWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapWriteErr("grant admin", tt.err); !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
