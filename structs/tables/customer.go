package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	tableName struct{}  `bun:"table:customers,alias:c"`
	Id        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Phone     string    `bun:"phone,notnull,unique" json:"phone"` // natural key
	Email     string    `bun:"email" json:"email,omitempty"`
	Address   string    `bun:"address" json:"address,omitempty"`
	Notes     string    `bun:"notes" json:"notes,omitempty"`

	// Maintained by update_customer_stats
	TotalOrders int             `bun:"total_orders,notnull,default:0" json:"total_orders"`
	TotalSpent  decimal.Decimal `bun:"total_spent,type:numeric(12,2),notnull,default:0" json:"total_spent"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
