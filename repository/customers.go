package repository

import (
	"context"
	"fmt"
	"strings"
	"tableside_server/database"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CustomerRepository struct {
	db     *database.DB
	logger *gecho.Logger
}

func NewCustomerRepository(db *database.DB, logger *gecho.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger}
}

// UpsertCustomer finds the customer by phone or creates it. A non-empty name
// replaces the stored one.
func (r *CustomerRepository) UpsertCustomer(ctx context.Context, customer *tables.Customer) (*tables.Customer, error) {
	stored, err := upsertCustomer(ctx, r.db, customer)
	if err != nil {
		return nil, lib.Persist("customers.upsert", err)
	}
	return stored, nil
}

func upsertCustomer(ctx context.Context, db bun.IDB, customer *tables.Customer) (*tables.Customer, error) {
	updates := []string{"updated_at"}
	if strings.TrimSpace(customer.Name) != "" {
		updates = append(updates, "name")
	}
	return database.Upsert(db, ctx, customer, "phone", updates...)
}

func (r *CustomerRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*tables.Customer, error) {
	customer, err := database.FindByID[tables.Customer](r.db, ctx, id)
	if err != nil {
		return nil, lib.Persist("customers.get", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer %s", lib.ErrNotFound, id)
	}
	return customer, nil
}

func (r *CustomerRepository) ListCustomers(ctx context.Context, opts *structs.CustomerListOptions) ([]tables.Customer, int, error) {
	query := database.Query[tables.Customer](r.db)
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Or().
			WhereOp("c.name", "ILIKE", pattern).
			WhereOp("c.phone", "ILIKE", pattern).
			End()
	}
	query = query.OrderBy("c.name", database.ASC)

	result, err := database.Paginate(query, ctx, opts.Page, opts.PageSize)
	if err != nil {
		return nil, 0, lib.Persist("customers.list", err)
	}
	return result.Data, result.Pagination.Total, nil
}

// RefreshCustomerStats calls the update_customer_stats procedure
func (r *CustomerRepository) RefreshCustomerStats(ctx context.Context, id uuid.UUID) error {
	if _, err := database.RawExec(r.db, ctx, "SELECT update_customer_stats(?)", id); err != nil {
		return lib.Persist("customers.refresh_stats", err)
	}
	return nil
}
