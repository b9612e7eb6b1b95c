package services

import (
	"context"
	"errors"
	"slices"
	"tableside_server/lib"
	"tableside_server/messaging"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderFixture struct {
	cfg       *structs.Config
	orders    *fakeOrderStore
	customers *fakeCustomerStore
	publisher *fakePublisher
	service   *OrderService
}

func newOrderFixture() *orderFixture {
	cfg := testConfig()
	customers := newFakeCustomerStore()
	orders := newFakeOrderStore(customers)
	publisher := &fakePublisher{}
	return &orderFixture{
		cfg:       cfg,
		orders:    orders,
		customers: customers,
		publisher: publisher,
		service:   NewOrderService(testLogger(), cfg, orders, customers, publisher),
	}
}

func line(menuItemId uuid.UUID, name, price string, qty int) structs.OrderLineInput {
	return structs.OrderLineInput{
		MenuItemId: menuItemId,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Quantity:   qty,
	}
}

func TestCreateOrder_TotalAndSnapshot(t *testing.T) {
	f := newOrderFixture()
	burger, fries := uuid.New(), uuid.New()

	order, err := f.service.CreateOrder(context.Background(), &structs.OrderRequest{
		Items: []structs.OrderLineInput{
			line(burger, "Burger", "7.99", 2),
			line(fries, "Fries", "5.99", 1),
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	f.service.Wait()

	if !order.Total.Equal(decimal.RequireFromString("21.97")) {
		t.Errorf("total = %s, want 21.97", order.Total)
	}
	if order.Status != tables.OrderStatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if len(order.Items) != 2 || order.Items[0].Name != "Burger" || order.Items[0].OrderId != order.Id {
		t.Errorf("unexpected items: %+v", order.Items)
	}
	if order.OrderNumber == "" || order.OrderNumber[:3] != "BT-" {
		t.Errorf("order number = %q", order.OrderNumber)
	}
	if !slices.Contains(f.publisher.types(), messaging.EventOrderCreated) {
		t.Errorf("expected %s event, got %v", messaging.EventOrderCreated, f.publisher.types())
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	item := uuid.New()

	tests := []struct {
		name            string
		requireCustomer bool
		req             *structs.OrderRequest
		field           string
	}{
		{
			name:  "no lines",
			req:   &structs.OrderRequest{},
			field: "items",
		},
		{
			name:  "zero quantity",
			req:   &structs.OrderRequest{Items: []structs.OrderLineInput{line(item, "Soup", "4.50", 0)}},
			field: "items[0].quantity",
		},
		{
			name:  "negative price",
			req:   &structs.OrderRequest{Items: []structs.OrderLineInput{line(item, "Soup", "-1.00", 1)}},
			field: "items[0].price",
		},
		{
			name:            "customer details required",
			requireCustomer: true,
			req: &structs.OrderRequest{
				Items:    []structs.OrderLineInput{line(item, "Soup", "4.50", 1)},
				Customer: &structs.CustomerInfo{Name: "Ada"},
			},
			field: "customer.phone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.cfg.Store.RequireCustomerDetails = tt.requireCustomer

			_, err := f.service.CreateOrder(context.Background(), tt.req)

			var ve *lib.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !slices.ContainsFunc(ve.Errors, func(fe lib.FieldError) bool { return fe.Field == tt.field }) {
				t.Errorf("expected error on %s, got %+v", tt.field, ve.Errors)
			}
			if f.orders.createCalls != 0 {
				t.Errorf("store was called %d times", f.orders.createCalls)
			}
		})
	}
}

func TestCreateOrder_MergesDuplicateLines(t *testing.T) {
	f := newOrderFixture()
	tea := uuid.New()

	withNotes := line(tea, "Tea", "2.50", 1)
	withNotes.Notes = "no sugar"

	order, err := f.service.CreateOrder(context.Background(), &structs.OrderRequest{
		Items: []structs.OrderLineInput{
			line(tea, "Tea", "2.50", 1),
			line(tea, "Tea", "2.50", 2),
			withNotes,
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	f.service.Wait()

	if len(order.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Errorf("merged quantity = %d, want 3", order.Items[0].Quantity)
	}
	if order.Items[1].Notes != "no sugar" || order.Items[1].Quantity != 1 {
		t.Errorf("line with notes should stay separate: %+v", order.Items[1])
	}
	if !order.Total.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("total = %s, want 10.00", order.Total)
	}
}

func TestCreateOrder_OneActiveOrderPerTable(t *testing.T) {
	f := newOrderFixture()
	tableId := uuid.New()
	req := &structs.OrderRequest{
		TableId: &tableId,
		Items:   []structs.OrderLineInput{line(uuid.New(), "Pasta", "12.00", 1)},
	}

	first, err := f.service.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("first order: %v", err)
	}

	if _, err := f.service.CreateOrder(context.Background(), req); !errors.Is(err, lib.ErrTableBusy) {
		t.Fatalf("second order: expected ErrTableBusy, got %v", err)
	}

	if _, err := f.service.CompleteOrder(context.Background(), first.Id); err != nil {
		t.Fatalf("CompleteOrder() error = %v", err)
	}
	if _, err := f.service.CreateOrder(context.Background(), req); err != nil {
		t.Fatalf("table should accept a new order once the first completed: %v", err)
	}

	takeout := &structs.OrderRequest{Items: req.Items}
	for range 2 {
		if _, err := f.service.CreateOrder(context.Background(), takeout); err != nil {
			t.Fatalf("takeout orders never conflict: %v", err)
		}
	}
	f.service.Wait()
}

func TestCreateOrder_UnknownTable(t *testing.T) {
	f := newOrderFixture()
	f.orders.tables = newFakeTableStore()
	known := f.orders.tables.addTable("T1", tables.TableStatusAvailable)
	ctx := context.Background()

	missing := uuid.New()
	_, err := f.service.CreateOrder(ctx, &structs.OrderRequest{
		TableId: &missing,
		Items:   []structs.OrderLineInput{line(uuid.New(), "Soup", "4.50", 1)},
	})
	if !errors.Is(err, lib.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if active, _ := f.service.ActiveOrders(ctx); len(active) != 0 {
		t.Errorf("an order for an unknown table was stored: %+v", active)
	}

	if _, err := f.service.CreateOrder(ctx, &structs.OrderRequest{
		TableId: &known.Id,
		Items:   []structs.OrderLineInput{line(uuid.New(), "Soup", "4.50", 1)},
	}); err != nil {
		t.Fatalf("CreateOrder() for a known table error = %v", err)
	}
	f.service.Wait()
}

func TestCreateOrder_RegeneratesOrderNumberOnConflict(t *testing.T) {
	f := newOrderFixture()
	f.orders.createErrs = []error{lib.ErrConflict, lib.ErrConflict}

	_, err := f.service.CreateOrder(context.Background(), &structs.OrderRequest{
		Items: []structs.OrderLineInput{line(uuid.New(), "Cake", "3.00", 1)},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	f.service.Wait()

	if f.orders.createCalls != 3 {
		t.Errorf("createCalls = %d, want 3", f.orders.createCalls)
	}
}

func TestCreateOrder_LinksCustomer(t *testing.T) {
	f := newOrderFixture()

	order, err := f.service.CreateOrder(context.Background(), &structs.OrderRequest{
		Items:    []structs.OrderLineInput{line(uuid.New(), "Salad", "8.00", 1)},
		Customer: &structs.CustomerInfo{Name: " Ada ", Phone: "0612345678"},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	f.service.Wait()

	if order.CustomerId == nil {
		t.Fatalf("customer was not linked")
	}
	if order.CustomerName != "Ada" {
		t.Errorf("customer name = %q", order.CustomerName)
	}
	if len(f.customers.refreshed) != 1 || f.customers.refreshed[0] != *order.CustomerId {
		t.Errorf("customer stats refresh = %v", f.customers.refreshed)
	}
}

func TestCreateOrder_PriceSnapshotSurvivesMenuChange(t *testing.T) {
	f := newOrderFixture()
	menuStore := newFakeMenuStore()
	menu := NewMenuService(testLogger(), menuStore, nil)
	ctx := context.Background()

	item, err := menu.CreateMenuItem(ctx, &structs.CreateMenuItemRequest{Name: "Burger", Price: decimal.RequireFromString("7.99")})
	if err != nil {
		t.Fatalf("CreateMenuItem() error = %v", err)
	}

	order, err := f.service.CreateOrder(ctx, &structs.OrderRequest{
		Items: []structs.OrderLineInput{{MenuItemId: item.Id, Name: item.Name, Price: item.Price, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	f.service.Wait()

	newPrice := decimal.RequireFromString("9.49")
	if _, err := menu.UpdateMenuItem(ctx, item.Id, &structs.UpdateMenuItemRequest{Price: &newPrice}); err != nil {
		t.Fatalf("UpdateMenuItem() error = %v", err)
	}

	stored, err := f.service.GetOrder(ctx, order.Id)
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if !stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("7.99")) || !stored.Total.Equal(decimal.RequireFromString("7.99")) {
		t.Errorf("order price changed with the menu: %s / %s", stored.Items[0].UnitPrice, stored.Total)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		from    tables.OrderStatus
		to      tables.OrderStatus
		wantErr error
	}{
		{name: "permissive skip to completed", from: tables.OrderStatusPending, to: tables.OrderStatusCompleted},
		{name: "permissive step back", from: tables.OrderStatusServed, to: tables.OrderStatusPreparing},
		{name: "strict next step", strict: true, from: tables.OrderStatusReady, to: tables.OrderStatusServed},
		{name: "strict skip", strict: true, from: tables.OrderStatusPending, to: tables.OrderStatusReady, wantErr: lib.ErrInvalidTransition},
		{name: "cancel from any active", strict: true, from: tables.OrderStatusServed, to: tables.OrderStatusCancelled},
		{name: "completed is final", from: tables.OrderStatusCompleted, to: tables.OrderStatusPending, wantErr: lib.ErrInvalidTransition},
		{name: "cancelled is final", from: tables.OrderStatusCancelled, to: tables.OrderStatusCompleted, wantErr: lib.ErrInvalidTransition},
		{name: "same status", from: tables.OrderStatusReady, to: tables.OrderStatusReady, wantErr: lib.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.cfg.Store.StrictTransitions = tt.strict
			order := tables.Order{Id: uuid.New(), OrderNumber: "BT-1", Status: tt.from}
			f.orders.put(order)

			updated, err := f.service.UpdateOrderStatus(context.Background(), order.Id, tt.to)
			f.service.Wait()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				stored, _ := f.orders.GetOrder(context.Background(), order.Id)
				if stored.Status != tt.from {
					t.Errorf("status changed to %s on a rejected transition", stored.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateOrderStatus() error = %v", err)
			}
			if updated.Status != tt.to {
				t.Errorf("status = %s, want %s", updated.Status, tt.to)
			}
			if !slices.Contains(f.publisher.types(), messaging.EventOrderStatusChanged) {
				t.Errorf("expected status_changed event")
			}
		})
	}
}

func TestUpdateOrderStatus_ConcurrentChange(t *testing.T) {
	f := newOrderFixture()
	order := tables.Order{Id: uuid.New(), Status: tables.OrderStatusPending}
	f.orders.put(order)
	f.orders.updateErr = lib.ErrConflict

	_, err := f.service.UpdateOrderStatus(context.Background(), order.Id, tables.OrderStatusPreparing)
	if !errors.Is(err, lib.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	f.service.Wait()
	if len(f.publisher.types()) != 0 {
		t.Errorf("no event should be published for a lost update")
	}
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	f := newOrderFixture()

	_, err := f.service.UpdateOrderStatus(context.Background(), uuid.New(), "eaten")
	var ve *lib.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCompleteOrder_StrictModeOverride(t *testing.T) {
	tests := []struct {
		name    string
		from    tables.OrderStatus
		wantErr error
	}{
		{name: "pending", from: tables.OrderStatusPending},
		{name: "preparing", from: tables.OrderStatusPreparing},
		{name: "ready", from: tables.OrderStatusReady},
		{name: "already completed", from: tables.OrderStatusCompleted, wantErr: lib.ErrInvalidTransition},
		{name: "cancelled", from: tables.OrderStatusCancelled, wantErr: lib.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.cfg.Store.StrictTransitions = true
			order := tables.Order{Id: uuid.New(), Status: tt.from}
			f.orders.put(order)

			_, err := f.service.CompleteOrder(context.Background(), order.Id)
			f.service.Wait()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CompleteOrder() error = %v", err)
			}
			stored, _ := f.orders.GetOrder(context.Background(), order.Id)
			if stored.Status != tables.OrderStatusCompleted {
				t.Errorf("status = %s, want completed", stored.Status)
			}
		})
	}
}

func TestAdvanceOrder(t *testing.T) {
	f := newOrderFixture()
	f.cfg.Store.StrictTransitions = true
	order := tables.Order{Id: uuid.New(), Status: tables.OrderStatusPending}
	f.orders.put(order)

	want := []tables.OrderStatus{
		tables.OrderStatusPreparing,
		tables.OrderStatusReady,
		tables.OrderStatusServed,
		tables.OrderStatusCompleted,
	}
	for _, status := range want {
		updated, err := f.service.AdvanceOrder(context.Background(), order.Id)
		if err != nil {
			t.Fatalf("AdvanceOrder() error = %v", err)
		}
		if updated.Status != status {
			t.Fatalf("status = %s, want %s", updated.Status, status)
		}
	}

	if _, err := f.service.AdvanceOrder(context.Background(), order.Id); !errors.Is(err, lib.ErrInvalidTransition) {
		t.Fatalf("advancing a completed order: expected ErrInvalidTransition, got %v", err)
	}
	f.service.Wait()
}

func TestListOrders_ClampsPaging(t *testing.T) {
	f := newOrderFixture()

	result, err := f.service.ListOrders(context.Background(), &structs.OrderListOptions{Page: 0, PageSize: 1000})
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if result.Pagination.Page != 1 || result.Pagination.PageSize != 100 {
		t.Errorf("pagination = %+v", result.Pagination)
	}
}
