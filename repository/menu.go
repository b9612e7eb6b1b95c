package repository

import (
	"context"
	"fmt"
	"strings"
	"tableside_server/database"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type MenuRepository struct {
	db     *database.DB
	logger *gecho.Logger
}

func NewMenuRepository(db *database.DB, logger *gecho.Logger) *MenuRepository {
	return &MenuRepository{db: db, logger: logger}
}

func (r *MenuRepository) ListMenuItems(ctx context.Context, opts *structs.MenuListOptions) ([]tables.MenuItem, error) {
	query := database.Query[tables.MenuItem](r.db).Relation("Category")

	if opts.CategoryId != nil {
		query = query.Where("mi.category_id", *opts.CategoryId)
	}
	if opts.AvailableOnly {
		query = query.Where("mi.is_available", true)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		query = query.WhereOp("mi.name", "ILIKE", "%"+search+"%")
	}

	items, err := query.OrderBy("mi.name", database.ASC).All(ctx)
	if err != nil {
		return nil, lib.Persist("menu_items.list", err)
	}
	return items, nil
}

func (r *MenuRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*tables.MenuItem, error) {
	item, err := database.Query[tables.MenuItem](r.db).
		Relation("Category").
		Where("mi.id", id).
		First(ctx)
	if err != nil {
		return nil, lib.Persist("menu_items.get", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: menu item %s", lib.ErrNotFound, id)
	}
	return item, nil
}

func (r *MenuRepository) InsertMenuItem(ctx context.Context, item *tables.MenuItem) error {
	if _, err := database.Query[tables.MenuItem](r.db).Insert(ctx, item); err != nil {
		return lib.Persist("menu_items.insert", err)
	}
	return nil
}

// UpdateMenuItem writes every editable column, false and empty values included
func (r *MenuRepository) UpdateMenuItem(ctx context.Context, item *tables.MenuItem) error {
	n, err := database.Query[tables.MenuItem](r.db).
		Where("mi.id", item.Id).
		Update(ctx, map[string]any{
			"name":         item.Name,
			"description":  item.Description,
			"price":        item.Price,
			"category_id":  item.CategoryId,
			"is_available": item.IsAvailable,
			"image_url":    item.ImageURL,
			"updated_at":   item.UpdatedAt,
		})
	if err != nil {
		return lib.Persist("menu_items.update", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: menu item %s", lib.ErrNotFound, item.Id)
	}
	return nil
}

// DeleteMenuItem removes the item and its recipe. Past orders keep their snapshot.
func (r *MenuRepository) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	err := database.Transaction(r.db, ctx, r.logger, func(tx bun.Tx) error {
		if _, err := database.Query[tables.RecipeIngredient](tx).Where("ri.menu_item_id", id).Delete(ctx); err != nil {
			return err
		}
		n, err := database.Query[tables.MenuItem](tx).Where("mi.id", id).Delete(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: menu item %s", lib.ErrNotFound, id)
		}
		return nil
	})
	return lib.Persist("menu_items.delete", err)
}

func (r *MenuRepository) ListCategories(ctx context.Context) ([]tables.MenuCategory, error) {
	categories, err := database.Query[tables.MenuCategory](r.db).OrderBy("mc.name", database.ASC).All(ctx)
	if err != nil {
		return nil, lib.Persist("menu_categories.list", err)
	}
	return categories, nil
}

func (r *MenuRepository) GetCategory(ctx context.Context, id uuid.UUID) (*tables.MenuCategory, error) {
	category, err := database.FindByID[tables.MenuCategory](r.db, ctx, id)
	if err != nil {
		return nil, lib.Persist("menu_categories.get", err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category %s", lib.ErrNotFound, id)
	}
	return category, nil
}

func (r *MenuRepository) InsertCategory(ctx context.Context, category *tables.MenuCategory) error {
	if _, err := database.Query[tables.MenuCategory](r.db).Insert(ctx, category); err != nil {
		return lib.Persist("menu_categories.insert", err)
	}
	return nil
}
