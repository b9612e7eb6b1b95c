package structs

import "github.com/google/uuid"

type CreateTableRequest struct {
	Name      string    `json:"name" validate:"required,max=50"`
	SectionId uuid.UUID `json:"section_id" validate:"required"`
	Capacity  int       `json:"capacity" validate:"required,min=1,max=100"`
}

type SectionRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type TableStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied reserved"`
	// Confirm completes the table's active order when freeing it.
	Confirm bool `json:"confirm,omitempty"`
}

type TablePositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
