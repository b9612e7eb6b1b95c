package structs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateMenuItemRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       decimal.Decimal `json:"price"`
	CategoryId  *uuid.UUID      `json:"category_id,omitempty"`
	IsAvailable *bool           `json:"is_available,omitempty"`
	ImageURL    string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateMenuItemRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	CategoryId  *uuid.UUID       `json:"category_id,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
