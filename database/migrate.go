package database

import (
	"context"
	"fmt"
	"tableside_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/uptrace/bun"
)

// migration is one named, idempotent schema step
type migration struct {
	name string
	run  func(ctx context.Context, db bun.IDB) error
}

// models in creation order, referenced tables first
var models = []any{
	(*tables.MenuCategory)(nil),
	(*tables.MenuItem)(nil),
	(*tables.Section)(nil),
	(*tables.DiningTable)(nil),
	(*tables.Customer)(nil),
	(*tables.Order)(nil),
	(*tables.OrderItem)(nil),
	(*tables.InventoryItem)(nil),
	(*tables.InventoryTransaction)(nil),
	(*tables.RecipeIngredient)(nil),
}

const customerStatsFunction = `
CREATE OR REPLACE FUNCTION update_customer_stats(p_customer_id uuid)
RETURNS void AS $$
BEGIN
	UPDATE customers c SET
		total_orders = s.total_orders,
		total_spent = s.total_spent,
		updated_at = now()
	FROM (
		SELECT count(*) AS total_orders, coalesce(sum(total), 0) AS total_spent
		FROM orders
		WHERE customer_id = p_customer_id AND status <> 'cancelled'
	) s
	WHERE c.id = p_customer_id;

	IF NOT FOUND THEN
		RAISE EXCEPTION 'customer % not found', p_customer_id USING ERRCODE = 'P0002';
	END IF;
END;
$$ LANGUAGE plpgsql`

var migrations = []migration{
	{name: "001_create_tables", run: createTables},
	{name: "002_foreign_keys", run: execAll(
		`ALTER TABLE menu_items DROP CONSTRAINT IF EXISTS fk_menu_items_category`,
		`ALTER TABLE menu_items ADD CONSTRAINT fk_menu_items_category
			FOREIGN KEY (category_id) REFERENCES menu_categories(id) ON DELETE SET NULL`,
		`ALTER TABLE dining_tables DROP CONSTRAINT IF EXISTS fk_dining_tables_section`,
		`ALTER TABLE dining_tables ADD CONSTRAINT fk_dining_tables_section
			FOREIGN KEY (section_id) REFERENCES table_sections(id)`,
		`ALTER TABLE order_items DROP CONSTRAINT IF EXISTS fk_order_items_order`,
		`ALTER TABLE order_items ADD CONSTRAINT fk_order_items_order
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE`,
		`ALTER TABLE inventory_transactions DROP CONSTRAINT IF EXISTS fk_inventory_transactions_item`,
		`ALTER TABLE inventory_transactions ADD CONSTRAINT fk_inventory_transactions_item
			FOREIGN KEY (inventory_item_id) REFERENCES inventory_items(id) ON DELETE CASCADE`,
	)},
	{name: "003_indexes", run: execAll(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_phone ON customers (phone)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_active_table ON orders (table_id)
			WHERE table_id IS NOT NULL AND status NOT IN ('completed', 'cancelled')`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_transactions_item ON inventory_transactions (inventory_item_id, created_at DESC)`,
	)},
	{name: "004_update_customer_stats", run: execAll(customerStatsFunction)},
	{name: "005_order_references", run: execAll(
		`ALTER TABLE orders DROP CONSTRAINT IF EXISTS fk_orders_table`,
		`ALTER TABLE orders ADD CONSTRAINT fk_orders_table
			FOREIGN KEY (table_id) REFERENCES dining_tables(id)`,
		`ALTER TABLE orders DROP CONSTRAINT IF EXISTS fk_orders_customer`,
		`ALTER TABLE orders ADD CONSTRAINT fk_orders_customer
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE SET NULL`,
	)},
	{name: "006_usage_once_per_order", run: execAll(
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + UsageOrderIndex + ` ON inventory_transactions (order_id, inventory_item_id)
			WHERE type = 'usage' AND order_id IS NOT NULL`,
	)},
}

// ActiveOrderIndex is the name of the partial unique index allowing one active order per table
const ActiveOrderIndex = "idx_orders_active_table"

// UsageOrderIndex allows one usage row per order and inventory item
const UsageOrderIndex = "idx_inventory_usage_order"

// Migrate applies all pending schema steps, recording each in schema_migrations
func (db *DB) Migrate(ctx context.Context, logger *gecho.Logger) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []string
	if err := db.NewSelect().Table("schema_migrations").Column("migration_name").Scan(ctx, &applied); err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	done := make(map[string]struct{}, len(applied))
	for _, name := range applied {
		done[name] = struct{}{}
	}

	for _, m := range migrations {
		if _, ok := done[m.name]; ok {
			continue
		}

		err := Transaction(db, ctx, logger, func(tx bun.Tx) error {
			if err := m.run(ctx, tx); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (migration_name) VALUES (?)`, m.name)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.name, err)
		}

		logger.Info("Applied migration", gecho.Field("migration", m.name))
	}

	return nil
}

func createTables(ctx context.Context, db bun.IDB) error {
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

func execAll(statements ...string) func(ctx context.Context, db bun.IDB) error {
	return func(ctx context.Context, db bun.IDB) error {
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}
