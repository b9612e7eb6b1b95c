package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	tableName struct{}        `bun:"table:inventory_items,alias:ii"`
	Id        uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string          `bun:"name,notnull" json:"name"`
	Quantity  decimal.Decimal `bun:"quantity,type:numeric(12,3),notnull" json:"quantity"`
	Unit      string          `bun:"unit,notnull" json:"unit"`
	Threshold decimal.Decimal `bun:"threshold,type:numeric(12,3),notnull" json:"threshold"` // reorder level
	UnitCost  decimal.Decimal `bun:"unit_cost,type:numeric(12,2),notnull" json:"unit_cost"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// IsLowStock reports quantity at or below the reorder threshold.
func (ii *InventoryItem) IsLowStock() bool {
	return ii.Quantity.LessThanOrEqual(ii.Threshold)
}

// InventoryTransaction is an append-only audit row, one per quantity change.
type InventoryTransaction struct {
	tableName        struct{}        `bun:"table:inventory_transactions,alias:it"`
	Id               uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	InventoryItemId  uuid.UUID       `bun:"inventory_item_id,notnull,type:uuid" json:"inventory_item_id"`
	PreviousQuantity decimal.Decimal `bun:"previous_quantity,type:numeric(12,3),notnull" json:"previous_quantity"`
	NewQuantity      decimal.Decimal `bun:"new_quantity,type:numeric(12,3),notnull" json:"new_quantity"`
	Type             TransactionType `bun:"type,notnull" json:"type"`
	Notes            string          `bun:"notes" json:"notes,omitempty"`
	OrderId          *uuid.UUID      `bun:"order_id,type:uuid,nullzero" json:"order_id,omitempty"`
	CreatedAt        time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type TransactionType string

const (
	TransactionRestock    TransactionType = "restock"
	TransactionUsage      TransactionType = "usage"
	TransactionAdjustment TransactionType = "adjustment"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionRestock, TransactionUsage, TransactionAdjustment:
		return true
	}
	return false
}

// RecipeIngredient says how much of an inventory item one unit of a menu item uses.
type RecipeIngredient struct {
	tableName       struct{}        `bun:"table:recipe_ingredients,alias:ri"`
	MenuItemId      uuid.UUID       `bun:"menu_item_id,pk,type:uuid" json:"menu_item_id"`
	InventoryItemId uuid.UUID       `bun:"inventory_item_id,pk,type:uuid" json:"inventory_item_id"`
	Quantity        decimal.Decimal `bun:"quantity,type:numeric(12,3),notnull" json:"quantity"`
}
