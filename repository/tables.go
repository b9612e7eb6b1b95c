package repository

import (
	"context"
	"fmt"
	"tableside_server/database"
	"tableside_server/lib"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type TableRepository struct {
	db     *database.DB
	logger *gecho.Logger
}

func NewTableRepository(db *database.DB, logger *gecho.Logger) *TableRepository {
	return &TableRepository{db: db, logger: logger}
}

// ListTables loads every table with its section joined in
func (r *TableRepository) ListTables(ctx context.Context) ([]tables.DiningTable, error) {
	diningTables, err := database.Query[tables.DiningTable](r.db).
		Relation("Section").
		OrderBy("dt.name", database.ASC).
		All(ctx)
	if err != nil {
		return nil, lib.Persist("tables.list", err)
	}
	return diningTables, nil
}

func (r *TableRepository) GetTable(ctx context.Context, id uuid.UUID) (*tables.DiningTable, error) {
	table, err := database.Query[tables.DiningTable](r.db).
		Relation("Section").
		Where("dt.id", id).
		First(ctx)
	if err != nil {
		return nil, lib.Persist("tables.get", err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: table %s", lib.ErrNotFound, id)
	}
	return table, nil
}

func (r *TableRepository) InsertTable(ctx context.Context, table *tables.DiningTable) error {
	if _, err := database.Query[tables.DiningTable](r.db).Insert(ctx, table); err != nil {
		return lib.Persist("tables.insert", err)
	}
	return nil
}

func (r *TableRepository) UpdateTableStatus(ctx context.Context, id uuid.UUID, status tables.TableStatus) error {
	return r.updateTable(ctx, "tables.update_status", id, map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	})
}

func (r *TableRepository) UpdateTablePosition(ctx context.Context, id uuid.UUID, x, y float64) error {
	return r.updateTable(ctx, "tables.update_position", id, map[string]any{
		"position_x": x,
		"position_y": y,
		"updated_at": time.Now(),
	})
}

func (r *TableRepository) updateTable(ctx context.Context, op string, id uuid.UUID, set map[string]any) error {
	n, err := database.Query[tables.DiningTable](r.db).Where("dt.id", id).Update(ctx, set)
	if err != nil {
		return lib.Persist(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: table %s", lib.ErrNotFound, id)
	}
	return nil
}

func (r *TableRepository) ListSections(ctx context.Context) ([]tables.Section, error) {
	sections, err := database.Query[tables.Section](r.db).OrderBy("ts.name", database.ASC).All(ctx)
	if err != nil {
		return nil, lib.Persist("sections.list", err)
	}
	return sections, nil
}

func (r *TableRepository) GetSection(ctx context.Context, id uuid.UUID) (*tables.Section, error) {
	section, err := database.FindByID[tables.Section](r.db, ctx, id)
	if err != nil {
		return nil, lib.Persist("sections.get", err)
	}
	if section == nil {
		return nil, fmt.Errorf("%w: section %s", lib.ErrNotFound, id)
	}
	return section, nil
}

func (r *TableRepository) InsertSection(ctx context.Context, section *tables.Section) error {
	if _, err := database.Query[tables.Section](r.db).Insert(ctx, section); err != nil {
		return lib.Persist("sections.insert", err)
	}
	return nil
}

func (r *TableRepository) RenameSection(ctx context.Context, id uuid.UUID, name string) error {
	n, err := database.Query[tables.Section](r.db).
		Where("ts.id", id).
		Update(ctx, map[string]any{"name": name})
	if err != nil {
		return lib.Persist("sections.rename", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: section %s", lib.ErrNotFound, id)
	}
	return nil
}
