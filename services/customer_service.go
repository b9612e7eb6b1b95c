package services

import (
	"context"
	"strings"
	"tableside_server/database"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type CustomerService struct {
	logger    *gecho.Logger
	customers CustomerStore
}

func NewCustomerService(logger *gecho.Logger, customers CustomerStore) *CustomerService {
	return &CustomerService{
		logger:    logger,
		customers: customers,
	}
}

// CustomerListResult wraps the customer list response with metadata
type CustomerListResult struct {
	Customers  []tables.Customer   `json:"customers"`
	Pagination database.Pagination `json:"pagination"`
}

// FindOrCreateCustomer returns the customer with this phone, creating it if
// needed. A non-empty name replaces the stored one.
func (cs *CustomerService) FindOrCreateCustomer(ctx context.Context, name, phone string) (*tables.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, lib.NewValidationError("phone", "is required")
	}

	now := time.Now()
	return cs.customers.UpsertCustomer(ctx, &tables.Customer{
		Id:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (cs *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*tables.Customer, error) {
	return cs.customers.GetCustomer(ctx, id)
}

func (cs *CustomerService) ListCustomers(ctx context.Context, opts *structs.CustomerListOptions) (*CustomerListResult, error) {
	if opts == nil {
		opts = &structs.CustomerListOptions{}
	}
	pagination := database.NewPagination(opts.Page, opts.PageSize, 0)
	opts.Page, opts.PageSize = pagination.Page, pagination.PageSize

	customers, total, err := cs.customers.ListCustomers(ctx, opts)
	if err != nil {
		cs.logger.Error("Failed to fetch customers", gecho.Field("error", err))
		return nil, err
	}

	return &CustomerListResult{
		Customers:  customers,
		Pagination: database.NewPagination(opts.Page, opts.PageSize, total),
	}, nil
}

// RefreshCustomerStats recomputes order count and spend, then returns the customer
func (cs *CustomerService) RefreshCustomerStats(ctx context.Context, id uuid.UUID) (*tables.Customer, error) {
	if err := cs.customers.RefreshCustomerStats(ctx, id); err != nil {
		return nil, err
	}
	return cs.customers.GetCustomer(ctx, id)
}
