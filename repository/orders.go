package repository

import (
	"context"
	"errors"
	"fmt"
	"tableside_server/database"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type OrderRepository struct {
	db     *database.DB
	logger *gecho.Logger
}

func NewOrderRepository(db *database.DB, logger *gecho.Logger) *OrderRepository {
	return &OrderRepository{db: db, logger: logger}
}

// CreateOrder writes the customer, header and lines in one transaction
func (r *OrderRepository) CreateOrder(ctx context.Context, order *tables.Order, customer *tables.Customer) error {
	err := database.Transaction(r.db, ctx, r.logger, func(tx bun.Tx) error {
		if customer != nil {
			stored, err := upsertCustomer(ctx, tx, customer)
			if err != nil {
				return err
			}
			order.CustomerId = &stored.Id
		}

		if order.TableId != nil {
			known, err := database.Query[tables.DiningTable](tx).Where("dt.id", *order.TableId).Exists(ctx)
			if err != nil {
				return err
			}
			if !known {
				return fmt.Errorf("%w: table %s", lib.ErrNotFound, *order.TableId)
			}

			busy, err := activeOrders(tx).Where("o.table_id", *order.TableId).Exists(ctx)
			if err != nil {
				return err
			}
			if busy {
				return lib.ErrTableBusy
			}
		}

		if _, err := database.Query[tables.Order](tx).Insert(ctx, order); err != nil {
			return err
		}
		if _, err := database.Query[tables.OrderItem](tx).InsertMany(ctx, order.Items); err != nil {
			return err
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, lib.ErrTableBusy), errors.Is(err, lib.ErrNotFound):
		return err
	case lib.ConstraintName(err) == database.ActiveOrderIndex:
		// Lost the race against another order for the same table
		return fmt.Errorf("%w: %v", lib.ErrTableBusy, err)
	}
	return lib.Persist("orders.create", err)
}

func (r *OrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*tables.Order, error) {
	order, err := database.Query[tables.Order](r.db).
		Relation("Items").
		Where("o.id", id).
		First(ctx)
	if err != nil {
		return nil, lib.Persist("orders.get", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", lib.ErrNotFound, id)
	}
	return order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, opts *structs.OrderListOptions) ([]tables.Order, int, error) {
	query := database.Query[tables.Order](r.db).Relation("Items")

	if len(opts.Statuses) > 0 {
		statuses := make([]any, 0, len(opts.Statuses))
		for _, s := range opts.Statuses {
			statuses = append(statuses, s)
		}
		query = query.WhereIn("o.status", statuses)
	}
	if opts.TableId != nil {
		query = query.Where("o.table_id", *opts.TableId)
	}
	if opts.ActiveOnly {
		query = query.WhereNotIn("o.status", tables.TerminalStatuses())
	}
	query = query.OrderBy("o.created_at", database.DESC)

	result, err := database.Paginate(query, ctx, opts.Page, opts.PageSize)
	if err != nil {
		return nil, 0, lib.Persist("orders.list", err)
	}
	return result.Data, result.Pagination.Total, nil
}

func (r *OrderRepository) ActiveOrders(ctx context.Context) ([]tables.Order, error) {
	orders, err := activeOrders(r.db).
		Relation("Items").
		OrderBy("o.created_at", database.ASC).
		All(ctx)
	if err != nil {
		return nil, lib.Persist("orders.active", err)
	}
	return orders, nil
}

func (r *OrderRepository) ActiveOrderForTable(ctx context.Context, tableId uuid.UUID) (*tables.Order, error) {
	order, err := activeOrders(r.db).
		Relation("Items").
		Where("o.table_id", tableId).
		OrderBy("o.created_at", database.ASC).
		First(ctx)
	if err != nil {
		return nil, lib.Persist("orders.active_for_table", err)
	}
	return order, nil
}

// UpdateOrderStatus is a compare-and-set on the current status
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to tables.OrderStatus) error {
	n, err := database.Query[tables.Order](r.db).
		Where("o.id", id).
		Where("o.status", from).
		Update(ctx, map[string]any{
			"status":     to,
			"updated_at": time.Now(),
		})
	if err != nil {
		return lib.Persist("orders.update_status", err)
	}
	if n > 0 {
		return nil
	}

	exists, err := database.Query[tables.Order](r.db).Where("o.id", id).Exists(ctx)
	if err != nil {
		return lib.Persist("orders.update_status", err)
	}
	if !exists {
		return fmt.Errorf("%w: order %s", lib.ErrNotFound, id)
	}
	return fmt.Errorf("%w: order %s is no longer %s", lib.ErrConflict, id, from)
}

func activeOrders(db bun.IDB) *database.QueryBuilder[tables.Order] {
	return database.Query[tables.Order](db).WhereNotIn("o.status", tables.TerminalStatuses())
}
