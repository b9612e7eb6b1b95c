package services

import (
	"context"
	"fmt"
	"strings"
	"tableside_server/lib"
	"tableside_server/messaging"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultTransactionLimit = 100

type InventoryService struct {
	logger    *gecho.Logger
	inventory InventoryStore
	orders    OrderStore
	publisher messaging.Publisher
}

func NewInventoryService(logger *gecho.Logger, inventory InventoryStore, orders OrderStore, publisher messaging.Publisher) *InventoryService {
	return &InventoryService{
		logger:    logger,
		inventory: inventory,
		orders:    orders,
		publisher: publisher,
	}
}

func (is *InventoryService) ListInventory(ctx context.Context) ([]tables.InventoryItem, error) {
	return is.inventory.ListInventory(ctx)
}

func (is *InventoryService) CreateInventoryItem(ctx context.Context, req *structs.CreateInventoryItemRequest) (*tables.InventoryItem, error) {
	ve := &lib.ValidationError{}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		ve.Add("name", "is required")
	}
	if req.Quantity.IsNegative() {
		ve.Add("quantity", "must not be negative")
	}
	if req.Threshold.IsNegative() {
		ve.Add("threshold", "must not be negative")
	}
	if req.UnitCost.IsNegative() {
		ve.Add("unit_cost", "must not be negative")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &tables.InventoryItem{
		Id:        uuid.New(),
		Name:      name,
		Quantity:  req.Quantity,
		Unit:      strings.TrimSpace(req.Unit),
		Threshold: req.Threshold,
		UnitCost:  req.UnitCost.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := is.inventory.InsertInventoryItem(ctx, item); err != nil {
		return nil, err
	}

	is.logger.Info("Inventory item created", gecho.Field("id", item.Id), gecho.Field("name", item.Name))
	return item, nil
}

// AdjustQuantity sets an absolute quantity or applies a signed delta, recording
// exactly one transaction row alongside the new quantity.
func (is *InventoryService) AdjustQuantity(ctx context.Context, itemId uuid.UUID, req *structs.AdjustInventoryRequest) (*structs.InventoryChangeResult, error) {
	if (req.NewQuantity == nil) == (req.Delta == nil) {
		return nil, lib.NewValidationError("new_quantity", "exactly one of new_quantity and delta is required")
	}
	txType := tables.TransactionType(req.Type)
	if !txType.IsValid() {
		return nil, lib.NewValidationError("type", "must be one of: restock usage adjustment")
	}

	results, err := is.applyChanges(ctx, []structs.InventoryChange{{
		ItemId:      itemId,
		NewQuantity: req.NewQuantity,
		Delta:       req.Delta,
		Type:        txType,
		Notes:       strings.TrimSpace(req.Notes),
	}})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (is *InventoryService) ListTransactions(ctx context.Context, itemId uuid.UUID, limit int) ([]tables.InventoryTransaction, error) {
	if limit < 1 || limit > 500 {
		limit = defaultTransactionLimit
	}
	if _, err := is.inventory.GetInventoryItem(ctx, itemId); err != nil {
		return nil, err
	}
	return is.inventory.ListTransactions(ctx, itemId, limit)
}

// LowStock lists items at or below their reorder threshold
func (is *InventoryService) LowStock(ctx context.Context) ([]tables.InventoryItem, error) {
	return is.inventory.LowStock(ctx)
}

// SetRecipe replaces the ingredient list of a menu item
func (is *InventoryService) SetRecipe(ctx context.Context, menuItemId uuid.UUID, req *structs.SetRecipeRequest) ([]tables.RecipeIngredient, error) {
	ve := &lib.ValidationError{}
	seen := make(map[uuid.UUID]bool, len(req.Ingredients))
	ingredients := make([]tables.RecipeIngredient, 0, len(req.Ingredients))
	for i, in := range req.Ingredients {
		if !in.Quantity.IsPositive() {
			ve.Add(fmt.Sprintf("ingredients[%d].quantity", i), "must be greater than 0")
		}
		if seen[in.InventoryItemId] {
			ve.Add(fmt.Sprintf("ingredients[%d].inventory_item_id", i), "is listed twice")
		}
		seen[in.InventoryItemId] = true
		ingredients = append(ingredients, tables.RecipeIngredient{
			MenuItemId:      menuItemId,
			InventoryItemId: in.InventoryItemId,
			Quantity:        in.Quantity,
		})
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := is.inventory.SetRecipe(ctx, menuItemId, ingredients); err != nil {
		return nil, err
	}
	return ingredients, nil
}

// ConsumeRecipeForOrder decrements stock for every line of a completed order
// according to the recipes of its menu items. It runs at most once per order;
// the store rejects a second set of usage rows for the same order.
func (is *InventoryService) ConsumeRecipeForOrder(ctx context.Context, orderId uuid.UUID) ([]structs.InventoryChangeResult, error) {
	order, err := is.orders.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if order.Status != tables.OrderStatusCompleted {
		return nil, lib.NewValidationError("status", "order must be completed before its stock is consumed")
	}

	consumed, err := is.inventory.OrderConsumed(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if consumed {
		return nil, fmt.Errorf("%w: stock for order %s was already consumed", lib.ErrConflict, order.OrderNumber)
	}

	menuItemIds := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		menuItemIds = append(menuItemIds, item.MenuItemId)
	}
	recipes, err := is.inventory.GetRecipes(ctx, menuItemIds)
	if err != nil {
		return nil, err
	}

	changes := RecipeUsage(order, recipes)
	if len(changes) == 0 {
		is.logger.Info("Order has no recipe ingredients to consume", gecho.Field("order_id", orderId))
		return []structs.InventoryChangeResult{}, nil
	}

	return is.applyChanges(ctx, changes)
}

// RecipeUsage turns an order's lines into one usage change per inventory item
func RecipeUsage(order *tables.Order, recipes []tables.RecipeIngredient) []structs.InventoryChange {
	byMenuItem := make(map[uuid.UUID][]tables.RecipeIngredient)
	for _, r := range recipes {
		byMenuItem[r.MenuItemId] = append(byMenuItem[r.MenuItemId], r)
	}

	usage := make(map[uuid.UUID]decimal.Decimal)
	var itemOrder []uuid.UUID
	for _, line := range order.Items {
		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, r := range byMenuItem[line.MenuItemId] {
			if _, ok := usage[r.InventoryItemId]; !ok {
				itemOrder = append(itemOrder, r.InventoryItemId)
			}
			usage[r.InventoryItemId] = usage[r.InventoryItemId].Add(r.Quantity.Mul(qty))
		}
	}

	orderId := order.Id
	changes := make([]structs.InventoryChange, 0, len(itemOrder))
	for _, itemId := range itemOrder {
		delta := usage[itemId].Neg()
		changes = append(changes, structs.InventoryChange{
			ItemId:  itemId,
			Delta:   &delta,
			Type:    tables.TransactionUsage,
			Notes:   "order " + order.OrderNumber,
			OrderId: &orderId,
		})
	}
	return changes
}

func (is *InventoryService) applyChanges(ctx context.Context, changes []structs.InventoryChange) ([]structs.InventoryChangeResult, error) {
	results, err := is.inventory.ApplyChanges(ctx, changes)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		is.logger.Info("Inventory adjusted",
			gecho.Field("item_id", result.Item.Id),
			gecho.Field("type", result.Transaction.Type),
			gecho.Field("previous", result.Transaction.PreviousQuantity.String()),
			gecho.Field("new", result.Transaction.NewQuantity.String()))

		is.publish(ctx, messaging.NewEvent(messaging.EventInventoryAdjusted, result.Item.Id.String(), result.Transaction))
		if result.Item.IsLowStock() && !result.WasLowStock {
			is.logger.Warn("Inventory item is low on stock",
				gecho.Field("item_id", result.Item.Id),
				gecho.Field("name", result.Item.Name),
				gecho.Field("quantity", result.Item.Quantity.String()))
			is.publish(ctx, messaging.NewEvent(messaging.EventInventoryLowStock, result.Item.Id.String(), result.Item))
		}
	}

	return results, nil
}

func (is *InventoryService) publish(ctx context.Context, event messaging.Event) {
	if err := is.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		is.logger.Error("Failed to publish event",
			gecho.Field("error", err),
			gecho.Field("type", event.Type),
			gecho.Field("key", event.Key))
	}
}
