package structs

import (
	"tableside_server/structs/tables"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderListOptions filters the order ledger listing
type OrderListOptions struct {
	Statuses   []tables.OrderStatus
	TableId    *uuid.UUID
	ActiveOnly bool
	Page       int
	PageSize   int
}

// MenuListOptions filters the catalog listing
type MenuListOptions struct {
	CategoryId    *uuid.UUID
	AvailableOnly bool
	Search        string
}

// CustomerListOptions filters the customer listing
type CustomerListOptions struct {
	Search   string
	Page     int
	PageSize int
}

// InventoryChange describes one quantity mutation. Exactly one of
// NewQuantity and Delta is set.
type InventoryChange struct {
	ItemId      uuid.UUID
	NewQuantity *decimal.Decimal
	Delta       *decimal.Decimal
	Type        tables.TransactionType
	Notes       string
	OrderId     *uuid.UUID
}

// Resolve computes the quantity after the change. It reports false when the
// result would be negative.
func (c InventoryChange) Resolve(current decimal.Decimal) (decimal.Decimal, bool) {
	next := current
	switch {
	case c.NewQuantity != nil:
		next = *c.NewQuantity
	case c.Delta != nil:
		next = current.Add(*c.Delta)
	}
	return next, !next.IsNegative()
}

// InventoryChangeResult is the stored outcome of an InventoryChange
type InventoryChangeResult struct {
	Item        tables.InventoryItem        `json:"item"`
	Transaction tables.InventoryTransaction `json:"transaction"`
	WasLowStock bool                        `json:"was_low_stock"`
}
