package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "no rows", err: sql.ErrNoRows, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "undefined column", err: &pgconn.PgError{Code: "42703"}, want: false},
		{name: "disk full", err: &pgconn.PgError{Code: "53100"}, want: false},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "deadlock", err: fmt.Errorf("update: %w", &pgconn.PgError{Code: "40P01"}), want: true},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, want: true},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: true},
		{name: "connection reset", err: fmt.Errorf("read tcp: %w", syscall.ECONNRESET), want: true},
		{name: "bad conn", err: fmt.Errorf("query: %w", driver.ErrBadConn), want: true},
		{name: "message only", err: errors.New("connection reset by peer"), want: false},
		{name: "plain error", err: errors.New("something else"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
		EnableRetry:  true,
	}

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: "40001"}
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Fatalf("expected success after 3 calls, got err=%v calls=%d", err, calls)
		}
	})

	t.Run("stops on constraint violations", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return &pgconn.PgError{Code: "23505"}
		})
		if err == nil || calls != 1 {
			t.Fatalf("expected a single failing call, got err=%v calls=%d", err, calls)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return fmt.Errorf("write: %w", syscall.EPIPE)
		})
		if err == nil || calls != cfg.MaxAttempts {
			t.Fatalf("expected %d calls, got err=%v calls=%d", cfg.MaxAttempts, err, calls)
		}
	})
}

func TestWhereClauseToCondition(t *testing.T) {
	tests := []struct {
		name     string
		clause   WhereClause
		wantSQL  string
		wantArgs int
	}{
		{name: "equals", clause: WhereClause{Column: "o.status", Operator: "=", Value: "pending"}, wantSQL: "o.status = ?", wantArgs: 1},
		{name: "null", clause: WhereClause{Column: "o.table_id", Operator: "IS NULL"}, wantSQL: "o.table_id IS NULL", wantArgs: 0},
		{name: "not in", clause: WhereClause{Column: "o.status", Operator: "IN", Value: []any{"a"}, Negate: true}, wantSQL: "NOT (o.status IN (?))", wantArgs: 1},
		{name: "raw", clause: WhereClause{IsRaw: true, RawSQL: "x > ?", RawArgs: []any{1}}, wantSQL: "x > ?", wantArgs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.clause.toCondition()
			if c.sql != tt.wantSQL || len(c.args) != tt.wantArgs {
				t.Errorf("toCondition() = %q (%d args), want %q (%d args)", c.sql, len(c.args), tt.wantSQL, tt.wantArgs)
			}
		})
	}
}
