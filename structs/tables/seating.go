package tables

import (
	"time"

	"github.com/google/uuid"
)

type Section struct {
	tableName struct{}  `bun:"table:table_sections,alias:ts"`
	Id        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string    `bun:"name,notnull,unique" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// DiningTable is a seating unit. The section name is not stored here; it is
// resolved through the Section relation when read.
type DiningTable struct {
	tableName struct{}    `bun:"table:dining_tables,alias:dt"`
	Id        uuid.UUID   `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string      `bun:"name,notnull" json:"name"`
	Capacity  int         `bun:"capacity,notnull" json:"capacity"`
	SectionId uuid.UUID   `bun:"section_id,notnull,type:uuid" json:"section_id"`
	Status    TableStatus `bun:"status,notnull,default:'available'" json:"status"`
	PositionX float64     `bun:"position_x,notnull,default:0" json:"position_x"`
	PositionY float64     `bun:"position_y,notnull,default:0" json:"position_y"`
	CreatedAt time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time   `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Section *Section `bun:"rel:belongs-to,join:section_id=id" json:"section,omitempty"`
}

type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
	TableStatusReserved  TableStatus = "reserved"
)

func (s TableStatus) IsValid() bool {
	switch s {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved:
		return true
	}
	return false
}
