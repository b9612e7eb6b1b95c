package services

import (
	"context"
	"tableside_server/structs"
	"tableside_server/structs/tables"

	"github.com/google/uuid"
)

// The stores below are implemented on bun by the repository package. Lookups
// of a single record return lib.ErrNotFound when it does not exist.

type OrderStore interface {
	// CreateOrder writes the header, its items and, when given, the upserted
	// customer in one transaction. A table that already has an active order
	// yields lib.ErrTableBusy.
	CreateOrder(ctx context.Context, order *tables.Order, customer *tables.Customer) error
	GetOrder(ctx context.Context, id uuid.UUID) (*tables.Order, error)
	ListOrders(ctx context.Context, opts *structs.OrderListOptions) ([]tables.Order, int, error)
	ActiveOrders(ctx context.Context) ([]tables.Order, error)
	// ActiveOrderForTable returns nil when the table has no active order.
	ActiveOrderForTable(ctx context.Context, tableId uuid.UUID) (*tables.Order, error)
	// UpdateOrderStatus only writes when the stored status still equals from,
	// and returns lib.ErrConflict otherwise.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to tables.OrderStatus) error
}

type CustomerStore interface {
	UpsertCustomer(ctx context.Context, customer *tables.Customer) (*tables.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*tables.Customer, error)
	ListCustomers(ctx context.Context, opts *structs.CustomerListOptions) ([]tables.Customer, int, error)
	RefreshCustomerStats(ctx context.Context, id uuid.UUID) error
}

type TableStore interface {
	ListTables(ctx context.Context) ([]tables.DiningTable, error)
	GetTable(ctx context.Context, id uuid.UUID) (*tables.DiningTable, error)
	InsertTable(ctx context.Context, table *tables.DiningTable) error
	UpdateTableStatus(ctx context.Context, id uuid.UUID, status tables.TableStatus) error
	UpdateTablePosition(ctx context.Context, id uuid.UUID, x, y float64) error
	ListSections(ctx context.Context) ([]tables.Section, error)
	GetSection(ctx context.Context, id uuid.UUID) (*tables.Section, error)
	InsertSection(ctx context.Context, section *tables.Section) error
	RenameSection(ctx context.Context, id uuid.UUID, name string) error
}

type MenuStore interface {
	ListMenuItems(ctx context.Context, opts *structs.MenuListOptions) ([]tables.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*tables.MenuItem, error)
	InsertMenuItem(ctx context.Context, item *tables.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *tables.MenuItem) error
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]tables.MenuCategory, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*tables.MenuCategory, error)
	InsertCategory(ctx context.Context, category *tables.MenuCategory) error
}

type InventoryStore interface {
	ListInventory(ctx context.Context) ([]tables.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (*tables.InventoryItem, error)
	InsertInventoryItem(ctx context.Context, item *tables.InventoryItem) error
	// ApplyChanges locks each item, writes its new quantity and exactly one
	// transaction row per change, all in one transaction.
	ApplyChanges(ctx context.Context, changes []structs.InventoryChange) ([]structs.InventoryChangeResult, error)
	ListTransactions(ctx context.Context, itemId uuid.UUID, limit int) ([]tables.InventoryTransaction, error)
	LowStock(ctx context.Context) ([]tables.InventoryItem, error)
	SetRecipe(ctx context.Context, menuItemId uuid.UUID, ingredients []tables.RecipeIngredient) error
	GetRecipes(ctx context.Context, menuItemIds []uuid.UUID) ([]tables.RecipeIngredient, error)
	// OrderConsumed reports whether usage rows already reference the order.
	OrderConsumed(ctx context.Context, orderId uuid.UUID) (bool, error)
}
