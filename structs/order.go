package structs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderRequest struct {
	TableId  *uuid.UUID       `json:"table_id,omitempty"` // nil for takeout
	Items    []OrderLineInput `json:"items" validate:"dive"`
	Customer *CustomerInfo    `json:"customer,omitempty"`
}

// OrderLineInput carries the price the staff saw when composing the order.
// It is stored verbatim and never re-read from the catalog.
type OrderLineInput struct {
	MenuItemId uuid.UUID       `json:"menu_item_id" validate:"required"`
	Name       string          `json:"name" validate:"required,max=200"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Notes      string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type CustomerInfo struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending preparing ready served completed cancelled"`
}

type EmailInvoiceRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// DraftAddRequest adds one unit of a menu item to a draft.
type DraftAddRequest struct {
	MenuItemId uuid.UUID `json:"menu_item_id" validate:"required"`
}

type DraftQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type DraftSubmitRequest struct {
	TableId  *uuid.UUID    `json:"table_id,omitempty"`
	Customer *CustomerInfo `json:"customer,omitempty"`
}
