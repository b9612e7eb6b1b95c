package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"tableside_server/database"
	"tableside_server/lib"
	"tableside_server/messaging"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxOrderNumberAttempts bounds regeneration after an order number collision
const maxOrderNumberAttempts = 5

type OrderService struct {
	logger    *gecho.Logger
	cfg       *structs.Config
	orders    OrderStore
	customers CustomerStore
	publisher messaging.Publisher
	now       func() time.Time

	// side effects started after commit
	background sync.WaitGroup
}

func NewOrderService(
	logger *gecho.Logger,
	cfg *structs.Config,
	orders OrderStore,
	customers CustomerStore,
	publisher messaging.Publisher,
) *OrderService {
	return &OrderService{
		logger:    logger,
		cfg:       cfg,
		orders:    orders,
		customers: customers,
		publisher: publisher,
		now:       time.Now,
	}
}

// OrderListResult wraps the order list response with metadata
type OrderListResult struct {
	Orders     []tables.Order      `json:"orders"`
	Pagination database.Pagination `json:"pagination"`
}

// CreateOrder validates the request, snapshots every line's name and price as
// sent, and persists header and lines together.
func (os *OrderService) CreateOrder(ctx context.Context, req *structs.OrderRequest) (*tables.Order, error) {
	if err := os.validateOrderRequest(req); err != nil {
		return nil, err
	}

	now := os.now()
	order := &tables.Order{
		Id:        uuid.New(),
		TableId:   req.TableId,
		Status:    tables.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	lines := MergeOrderLines(req.Items)
	order.Items = make([]tables.OrderItem, 0, len(lines))
	for _, line := range lines {
		order.Items = append(order.Items, tables.OrderItem{
			Id:         uuid.New(),
			OrderId:    order.Id,
			MenuItemId: line.MenuItemId,
			Name:       line.Name,
			UnitPrice:  line.Price,
			Quantity:   line.Quantity,
			Notes:      line.Notes,
		})
	}
	order.Total = OrderTotal(order.Items)

	var customer *tables.Customer
	if req.Customer != nil {
		order.CustomerName = strings.TrimSpace(req.Customer.Name)
		order.CustomerPhone = strings.TrimSpace(req.Customer.Phone)
		if order.CustomerPhone != "" {
			customer = &tables.Customer{
				Id:        uuid.New(),
				Name:      order.CustomerName,
				Phone:     order.CustomerPhone,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
	}

	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = lib.GenerateOrderNumber(os.cfg.Store.OrderNumberPrefix, now)
		err = os.orders.CreateOrder(ctx, order, customer)
		if !errors.Is(err, lib.ErrConflict) {
			break
		}
		os.logger.Warn("Order number collision, regenerating",
			gecho.Field("order_number", order.OrderNumber),
			gecho.Field("attempt", attempt))
	}
	if err != nil {
		if !errors.Is(err, lib.ErrTableBusy) && !errors.Is(err, lib.ErrNotFound) {
			os.logger.Error("Failed to create order", gecho.Field("error", err))
		}
		return nil, err
	}

	os.logger.Info("Order created successfully",
		gecho.Field("order_id", order.Id),
		gecho.Field("order_number", order.OrderNumber),
		gecho.Field("lines", len(order.Items)),
		gecho.Field("total", order.Total.StringFixed(2)))

	if order.CustomerId != nil {
		os.refreshCustomerStats(*order.CustomerId)
	}
	os.publish(messaging.NewEvent(messaging.EventOrderCreated, order.Id.String(), order))

	return order, nil
}

// validateOrderRequest rejects a request before anything is persisted
func (os *OrderService) validateOrderRequest(req *structs.OrderRequest) error {
	ve := &lib.ValidationError{}

	if len(req.Items) == 0 {
		ve.Add("items", "must contain at least one line")
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			ve.Add(fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
		if item.Price.IsNegative() {
			ve.Add(fmt.Sprintf("items[%d].price", i), "must not be negative")
		}
	}

	if os.cfg.Store.RequireCustomerDetails {
		var name, phone string
		if req.Customer != nil {
			name = strings.TrimSpace(req.Customer.Name)
			phone = strings.TrimSpace(req.Customer.Phone)
		}
		if name == "" {
			ve.Add("customer.name", "is required")
		}
		if phone == "" {
			ve.Add("customer.phone", "is required")
		}
	}

	return ve.OrNil()
}

// MergeOrderLines folds lines for the same menu item, price and notes into one
// line, keeping first-seen order.
func MergeOrderLines(lines []structs.OrderLineInput) []structs.OrderLineInput {
	type lineKey struct {
		menuItemId uuid.UUID
		price      string
		notes      string
	}

	merged := make([]structs.OrderLineInput, 0, len(lines))
	index := make(map[lineKey]int, len(lines))
	for _, line := range lines {
		key := lineKey{line.MenuItemId, line.Price.String(), strings.TrimSpace(line.Notes)}
		if i, ok := index[key]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// OrderTotal sums the extended price of every line
func OrderTotal(items []tables.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total.Round(2)
}

// GetOrder retrieves an order with its lines
func (os *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*tables.Order, error) {
	return os.orders.GetOrder(ctx, id)
}

// ListOrders retrieves orders with filtering and pagination
func (os *OrderService) ListOrders(ctx context.Context, opts *structs.OrderListOptions) (*OrderListResult, error) {
	if opts == nil {
		opts = &structs.OrderListOptions{}
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100 // Max page size for performance
	}

	orders, total, err := os.orders.ListOrders(ctx, opts)
	if err != nil {
		os.logger.Error("Failed to fetch orders", gecho.Field("error", err))
		return nil, err
	}

	return &OrderListResult{
		Orders:     orders,
		Pagination: database.NewPagination(opts.Page, opts.PageSize, total),
	}, nil
}

// ActiveOrders lists orders that still hold a table
func (os *OrderService) ActiveOrders(ctx context.Context) ([]tables.Order, error) {
	return os.orders.ActiveOrders(ctx)
}

// ActiveOrderForTable returns the table's active order or nil
func (os *OrderService) ActiveOrderForTable(ctx context.Context, tableId uuid.UUID) (*tables.Order, error) {
	return os.orders.ActiveOrderForTable(ctx, tableId)
}

// UpdateOrderStatus moves an order to newStatus if the transition table allows
// it. The write only lands when nobody changed the status in between.
func (os *OrderService) UpdateOrderStatus(ctx context.Context, orderId uuid.UUID, newStatus tables.OrderStatus) (*tables.Order, error) {
	return os.setStatus(ctx, orderId, newStatus, os.cfg.Store.StrictTransitions)
}

func (os *OrderService) setStatus(ctx context.Context, orderId uuid.UUID, newStatus tables.OrderStatus, strict bool) (*tables.Order, error) {
	if !newStatus.IsValid() {
		return nil, lib.NewValidationError("status", "is invalid")
	}

	order, err := os.orders.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(order.Status, newStatus, strict); err != nil {
		return nil, err
	}

	if err := os.orders.UpdateOrderStatus(ctx, orderId, order.Status, newStatus); err != nil {
		if errors.Is(err, lib.ErrConflict) {
			os.logger.Warn("Order status changed concurrently",
				gecho.Field("order_id", orderId),
				gecho.Field("expected_status", order.Status))
		}
		return nil, err
	}

	oldStatus := order.Status
	order.Status = newStatus
	order.UpdatedAt = os.now()

	os.logger.Info("Order status updated",
		gecho.Field("order_id", orderId),
		gecho.Field("old_status", oldStatus),
		gecho.Field("new_status", newStatus))

	if newStatus == tables.OrderStatusCompleted {
		for _, item := range order.Items {
			os.logger.Info("Completed order line",
				gecho.Field("order_number", order.OrderNumber),
				gecho.Field("menu_item_id", item.MenuItemId),
				gecho.Field("name", item.Name),
				gecho.Field("quantity", item.Quantity))
		}
	}

	if newStatus.IsTerminal() && order.CustomerId != nil {
		os.refreshCustomerStats(*order.CustomerId)
	}
	os.publish(messaging.NewEvent(messaging.EventOrderStatusChanged, order.Id.String(), map[string]any{
		"order_id":     order.Id,
		"order_number": order.OrderNumber,
		"table_id":     order.TableId,
		"from":         oldStatus,
		"to":           newStatus,
	}))

	return order, nil
}

// AdvanceOrder moves an order one step along the progression
func (os *OrderService) AdvanceOrder(ctx context.Context, orderId uuid.UUID) (*tables.Order, error) {
	order, err := os.orders.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	next, ok := NextStatus(order.Status)
	if !ok {
		return nil, &lib.TransitionError{From: string(order.Status), To: "next"}
	}

	return os.UpdateOrderStatus(ctx, orderId, next)
}

// CompleteOrder marks the order completed from any non-terminal status. Staff
// use it to close out a table, so strict mode's one-step rule does not apply.
func (os *OrderService) CompleteOrder(ctx context.Context, orderId uuid.UUID) (*tables.Order, error) {
	return os.setStatus(ctx, orderId, tables.OrderStatusCompleted, false)
}

// Wait blocks until all post-commit side effects have finished
func (os *OrderService) Wait() {
	os.background.Wait()
}

// refreshCustomerStats recomputes the customer's totals without blocking the caller
func (os *OrderService) refreshCustomerStats(customerId uuid.UUID) {
	os.background.Add(1)
	go func() {
		defer os.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := os.customers.RefreshCustomerStats(ctx, customerId); err != nil {
			os.logger.Error("Failed to refresh customer stats",
				gecho.Field("error", err),
				gecho.Field("customer_id", customerId))
		}
	}()
}

// publish sends an event without blocking the caller
func (os *OrderService) publish(event messaging.Event) {
	os.background.Add(1)
	go func() {
		defer os.background.Done()

		if err := os.publisher.Publish(context.Background(), event); err != nil {
			os.logger.Error("Failed to publish event",
				gecho.Field("error", err),
				gecho.Field("type", event.Type),
				gecho.Field("key", event.Key))
		}
	}()
}
