package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	// Table Name and identifiers
	tableName   struct{}  `bun:"table:orders,alias:o"`
	Id          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	OrderNumber string    `bun:"order_number,notnull,unique" json:"order_number"`

	// Seating, nil means takeout
	TableId *uuid.UUID `bun:"table_id,type:uuid,nullzero" json:"table_id,omitempty"`

	// Customer Data (all optional unless the store requires them)
	CustomerId    *uuid.UUID `bun:"customer_id,type:uuid,nullzero" json:"customer_id,omitempty"`
	CustomerName  string     `bun:"customer_name" json:"customer_name,omitempty"`
	CustomerPhone string     `bun:"customer_phone" json:"customer_phone,omitempty"`

	// Order Data
	Status    OrderStatus     `bun:"status,notnull,default:'pending'" json:"status"`
	Total     decimal.Decimal `bun:"total,type:numeric(12,2),notnull" json:"total"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Items []OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
}

// IsActive reports whether the order still holds its table.
func (o *Order) IsActive() bool {
	return !o.Status.IsTerminal()
}

// IsTakeout reports whether the order has no table.
func (o *Order) IsTakeout() bool {
	return o.TableId == nil
}

type OrderItem struct {
	tableName  struct{}  `bun:"table:order_items,alias:oi"`
	Id         uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	OrderId    uuid.UUID `bun:"order_id,notnull,type:uuid" json:"order_id"`
	MenuItemId uuid.UUID `bun:"menu_item_id,notnull,type:uuid" json:"menu_item_id"`

	// Snapshot of the catalog at time of order
	Name      string          `bun:"name,notnull" json:"name"`
	UnitPrice decimal.Decimal `bun:"unit_price,type:numeric(12,2),notnull" json:"unit_price"`

	Quantity int    `bun:"quantity,notnull" json:"quantity"`
	Notes    string `bun:"notes" json:"notes,omitempty"`
}

// LineTotal is the extended price of the line.
func (oi *OrderItem) LineTotal() decimal.Decimal {
	return oi.UnitPrice.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatusProgression is the kitchen-to-table order of statuses, cancellation excluded.
var OrderStatusProgression = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
	OrderStatusCompleted,
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusServed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// TerminalStatuses lists the statuses after which an order no longer occupies a table.
func TerminalStatuses() []any {
	return []any{OrderStatusCompleted, OrderStatusCancelled}
}
