package repository

import (
	"context"
	"errors"
	"fmt"
	"tableside_server/database"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type InventoryRepository struct {
	db     *database.DB
	logger *gecho.Logger
}

func NewInventoryRepository(db *database.DB, logger *gecho.Logger) *InventoryRepository {
	return &InventoryRepository{db: db, logger: logger}
}

func (r *InventoryRepository) ListInventory(ctx context.Context) ([]tables.InventoryItem, error) {
	items, err := database.Query[tables.InventoryItem](r.db).OrderBy("ii.name", database.ASC).All(ctx)
	if err != nil {
		return nil, lib.Persist("inventory.list", err)
	}
	return items, nil
}

func (r *InventoryRepository) GetInventoryItem(ctx context.Context, id uuid.UUID) (*tables.InventoryItem, error) {
	item, err := database.FindByID[tables.InventoryItem](r.db, ctx, id)
	if err != nil {
		return nil, lib.Persist("inventory.get", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: inventory item %s", lib.ErrNotFound, id)
	}
	return item, nil
}

func (r *InventoryRepository) InsertInventoryItem(ctx context.Context, item *tables.InventoryItem) error {
	if _, err := database.Query[tables.InventoryItem](r.db).Insert(ctx, item); err != nil {
		return lib.Persist("inventory.insert", err)
	}
	return nil
}

// ApplyChanges locks every affected row, then writes the new quantity and one
// transaction row per change. Nothing is written if any change fails.
func (r *InventoryRepository) ApplyChanges(ctx context.Context, changes []structs.InventoryChange) ([]structs.InventoryChangeResult, error) {
	results := make([]structs.InventoryChangeResult, 0, len(changes))

	err := database.Transaction(r.db, ctx, r.logger, func(tx bun.Tx) error {
		now := time.Now()
		for i, change := range changes {
			item, err := database.Query[tables.InventoryItem](tx).
				Where("ii.id", change.ItemId).
				ForUpdate().
				First(ctx)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: inventory item %s", lib.ErrNotFound, change.ItemId)
			}

			next, ok := change.Resolve(item.Quantity)
			if !ok {
				field := "quantity"
				if len(changes) > 1 {
					field = fmt.Sprintf("changes[%d].quantity", i)
				}
				return lib.NewValidationError(field, fmt.Sprintf("%s would drop below zero", item.Name))
			}

			record := &tables.InventoryTransaction{
				Id:               uuid.New(),
				InventoryItemId:  item.Id,
				PreviousQuantity: item.Quantity,
				NewQuantity:      next,
				Type:             change.Type,
				Notes:            change.Notes,
				OrderId:          change.OrderId,
				CreatedAt:        now,
			}

			if _, err := database.Query[tables.InventoryItem](tx).
				Where("ii.id", item.Id).
				Update(ctx, map[string]any{"quantity": next, "updated_at": now}); err != nil {
				return err
			}
			if _, err := database.Query[tables.InventoryTransaction](tx).Insert(ctx, record); err != nil {
				return err
			}

			wasLow := item.IsLowStock()
			item.Quantity = next
			item.UpdatedAt = now
			results = append(results, structs.InventoryChangeResult{
				Item:        *item,
				Transaction: *record,
				WasLowStock: wasLow,
			})
		}
		return nil
	})
	if err != nil {
		var ve *lib.ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		if lib.ConstraintName(err) == database.UsageOrderIndex {
			return nil, fmt.Errorf("%w: order stock was already consumed", lib.ErrConflict)
		}
		return nil, lib.Persist("inventory.apply_changes", err)
	}

	return results, nil
}

func (r *InventoryRepository) ListTransactions(ctx context.Context, itemId uuid.UUID, limit int) ([]tables.InventoryTransaction, error) {
	records, err := database.Query[tables.InventoryTransaction](r.db).
		Where("it.inventory_item_id", itemId).
		OrderBy("it.created_at", database.DESC).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, lib.Persist("inventory.transactions", err)
	}
	return records, nil
}

func (r *InventoryRepository) LowStock(ctx context.Context) ([]tables.InventoryItem, error) {
	items, err := database.Query[tables.InventoryItem](r.db).
		WhereRaw("ii.quantity <= ii.threshold").
		OrderBy("ii.name", database.ASC).
		All(ctx)
	if err != nil {
		return nil, lib.Persist("inventory.low_stock", err)
	}
	return items, nil
}

// SetRecipe replaces the ingredient list of a menu item
func (r *InventoryRepository) SetRecipe(ctx context.Context, menuItemId uuid.UUID, ingredients []tables.RecipeIngredient) error {
	err := database.Transaction(r.db, ctx, r.logger, func(tx bun.Tx) error {
		exists, err := database.Query[tables.MenuItem](tx).Where("mi.id", menuItemId).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: menu item %s", lib.ErrNotFound, menuItemId)
		}

		if _, err := database.Query[tables.RecipeIngredient](tx).Where("ri.menu_item_id", menuItemId).Delete(ctx); err != nil {
			return err
		}
		_, err = database.Query[tables.RecipeIngredient](tx).InsertMany(ctx, ingredients)
		return err
	})
	return lib.Persist("recipes.set", err)
}

func (r *InventoryRepository) GetRecipes(ctx context.Context, menuItemIds []uuid.UUID) ([]tables.RecipeIngredient, error) {
	if len(menuItemIds) == 0 {
		return []tables.RecipeIngredient{}, nil
	}

	ids := make([]any, 0, len(menuItemIds))
	for _, id := range menuItemIds {
		ids = append(ids, id)
	}

	recipes, err := database.Query[tables.RecipeIngredient](r.db).WhereIn("ri.menu_item_id", ids).All(ctx)
	if err != nil {
		return nil, lib.Persist("recipes.get", err)
	}
	return recipes, nil
}

func (r *InventoryRepository) OrderConsumed(ctx context.Context, orderId uuid.UUID) (bool, error) {
	consumed, err := database.Query[tables.InventoryTransaction](r.db).
		Where("it.order_id", orderId).
		Where("it.type", tables.TransactionUsage).
		Exists(ctx)
	if err != nil {
		return false, lib.Persist("inventory.order_consumed", err)
	}
	return consumed, nil
}
