package database

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/uptrace/bun"
)

// RawExec executes a raw SQL command (INSERT, UPDATE, DELETE) without returning data
func RawExec(db bun.IDB, ctx context.Context, sql string, args ...any) (int, error) {
	start := time.Now()

	res, err := db.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute raw command: %w (took %v)", err, time.Since(start))
	}

	n, _ := res.RowsAffected()
	return int(n), nil
}

// Transaction executes fn within a database transaction. The transaction is
// rolled back when fn returns an error or panics, and committed otherwise.
func Transaction(db *DB, ctx context.Context, logger *gecho.Logger, fn func(tx bun.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			logger.Error(fmt.Sprintf("PANIC RECOVERED: %v", p),
				gecho.Field("panic_value", p),
				gecho.Field("stack_trace", string(debug.Stack())))
			_ = tx.Rollback()
			err = fmt.Errorf("panic recovered: %v", p)
		} else if err != nil {
			logger.Debug("Rolling back transaction due to error", gecho.Field("error", err))
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination normalizes page and pageSize and derives the page count
func NewPagination(page, pageSize, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset is the row offset of the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PaginationResult holds paginated query results
type PaginationResult[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Paginate executes a paginated query. The count ignores limit and offset.
func Paginate[T any](q *QueryBuilder[T], ctx context.Context, page, pageSize int) (*PaginationResult[T], error) {
	totalCount, err := q.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	pagination := NewPagination(page, pageSize, totalCount)
	data, err := q.Limit(pagination.PageSize).Offset(pagination.Offset()).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paginated data: %w", err)
	}

	return &PaginationResult[T]{
		Data:       data,
		Pagination: pagination,
	}, nil
}

// FindByID finds a record by its id column
func FindByID[T any](db bun.IDB, ctx context.Context, id any) (*T, error) {
	return Query[T](db).Where("id", id).First(ctx)
}

// Upsert inserts data or, on conflict with conflictColumn, updates the given
// columns. The stored row is scanned back into data.
func Upsert[T any](db bun.IDB, ctx context.Context, data *T, conflictColumn string, updateColumns ...string) (*T, error) {
	start := time.Now()

	query := db.NewInsert().Model(data)
	if len(updateColumns) == 0 {
		// DO NOTHING would not return the existing row
		query = query.On(fmt.Sprintf("CONFLICT (%s) DO UPDATE", conflictColumn)).
			Set(fmt.Sprintf("%s = EXCLUDED.%s", conflictColumn, conflictColumn))
	} else {
		query = query.On(fmt.Sprintf("CONFLICT (%s) DO UPDATE", conflictColumn))
		for _, col := range updateColumns {
			query = query.Set(fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	if _, err := query.Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to execute upsert: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}
