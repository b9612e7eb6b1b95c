package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UncategorizedName is shown for items whose category is missing.
const UncategorizedName = "Uncategorized"

type MenuCategory struct {
	tableName struct{}  `bun:"table:menu_categories,alias:mc"`
	Id        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string    `bun:"name,notnull,unique" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type MenuItem struct {
	tableName   struct{}        `bun:"table:menu_items,alias:mi"`
	Id          uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name        string          `bun:"name,notnull" json:"name"`
	Description string          `bun:"description" json:"description,omitempty"`
	Price       decimal.Decimal `bun:"price,type:numeric(12,2),notnull" json:"price"`
	CategoryId  *uuid.UUID      `bun:"category_id,type:uuid,nullzero" json:"category_id,omitempty"`
	IsAvailable bool            `bun:"is_available,notnull,default:true" json:"is_available"`
	ImageURL    string          `bun:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Category *MenuCategory `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

// CategoryName resolves the display name of the item's category.
func (mi *MenuItem) CategoryName() string {
	if mi.Category == nil || mi.Category.Name == "" {
		return UncategorizedName
	}
	return mi.Category.Name
}
