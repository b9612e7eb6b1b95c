package structs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateInventoryItemRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit" validate:"required,max=20"`
	Threshold decimal.Decimal `json:"threshold"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// AdjustInventoryRequest sets either an absolute quantity or a signed delta.
type AdjustInventoryRequest struct {
	NewQuantity *decimal.Decimal `json:"new_quantity,omitempty"`
	Delta       *decimal.Decimal `json:"delta,omitempty"`
	Type        string           `json:"type" validate:"required,oneof=restock usage adjustment"`
	Notes       string           `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type RecipeIngredientInput struct {
	InventoryItemId uuid.UUID       `json:"inventory_item_id" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
}

type SetRecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" validate:"dive"`
}
