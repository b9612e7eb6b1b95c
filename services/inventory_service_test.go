package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"tableside_server/lib"
	"tableside_server/messaging"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type inventoryFixture struct {
	inventory *fakeInventoryStore
	orders    *fakeOrderStore
	publisher *fakePublisher
	service   *InventoryService
}

func newInventoryFixture() *inventoryFixture {
	inventory := newFakeInventoryStore()
	orders := newFakeOrderStore(nil)
	publisher := &fakePublisher{}
	return &inventoryFixture{
		inventory: inventory,
		orders:    orders,
		publisher: publisher,
		service:   NewInventoryService(testLogger(), inventory, orders, publisher),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *inventoryFixture) addItem(t *testing.T, name, qty, threshold string) *tables.InventoryItem {
	t.Helper()
	item, err := f.service.CreateInventoryItem(context.Background(), &structs.CreateInventoryItemRequest{
		Name: name, Quantity: dec(qty), Unit: "kg", Threshold: dec(threshold), UnitCost: dec("1.00"),
	})
	if err != nil {
		t.Fatalf("CreateInventoryItem() error = %v", err)
	}
	return item
}

func TestAdjustQuantity(t *testing.T) {
	tests := []struct {
		name        string
		req         *structs.AdjustInventoryRequest
		want        string
		wantLowFeed bool
		wantErr     bool
	}{
		{name: "restock delta", req: &structs.AdjustInventoryRequest{Delta: ptr(dec("5")), Type: "restock"}, want: "15"},
		{name: "absolute count", req: &structs.AdjustInventoryRequest{NewQuantity: ptr(dec("12.5")), Type: "adjustment"}, want: "12.5"},
		{name: "cross into low stock", req: &structs.AdjustInventoryRequest{Delta: ptr(dec("-8")), Type: "usage"}, want: "2", wantLowFeed: true},
		{name: "exactly at threshold is low", req: &structs.AdjustInventoryRequest{NewQuantity: ptr(dec("3")), Type: "adjustment"}, want: "3", wantLowFeed: true},
		{name: "below zero", req: &structs.AdjustInventoryRequest{Delta: ptr(dec("-11")), Type: "usage"}, wantErr: true},
		{name: "both forms", req: &structs.AdjustInventoryRequest{Delta: ptr(dec("1")), NewQuantity: ptr(dec("1")), Type: "restock"}, wantErr: true},
		{name: "neither form", req: &structs.AdjustInventoryRequest{Type: "restock"}, wantErr: true},
		{name: "unknown type", req: &structs.AdjustInventoryRequest{Delta: ptr(dec("1")), Type: "gift"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInventoryFixture()
			item := f.addItem(t, "Flour", "10", "3")

			result, err := f.service.AdjustQuantity(context.Background(), item.Id, tt.req)
			if tt.wantErr {
				var ve *lib.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if len(f.inventory.transactions) != 0 {
					t.Errorf("no transaction row may be written on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("AdjustQuantity() error = %v", err)
			}

			if !result.Item.Quantity.Equal(dec(tt.want)) {
				t.Errorf("quantity = %s, want %s", result.Item.Quantity, tt.want)
			}
			if len(f.inventory.transactions) != 1 {
				t.Fatalf("expected exactly one transaction row, got %d", len(f.inventory.transactions))
			}
			record := f.inventory.transactions[0]
			if !record.PreviousQuantity.Equal(dec("10")) || !record.NewQuantity.Equal(dec(tt.want)) {
				t.Errorf("transaction %s -> %s", record.PreviousQuantity, record.NewQuantity)
			}

			events := f.publisher.types()
			if !slices.Contains(events, messaging.EventInventoryAdjusted) {
				t.Errorf("expected adjusted event, got %v", events)
			}
			if slices.Contains(events, messaging.EventInventoryLowStock) != tt.wantLowFeed {
				t.Errorf("low stock event = %t, want %t", !tt.wantLowFeed, tt.wantLowFeed)
			}
		})
	}
}

func TestAdjustQuantity_LowStockFiresOnceWhenCrossing(t *testing.T) {
	f := newInventoryFixture()
	item := f.addItem(t, "Milk", "4", "3")
	ctx := context.Background()

	for range 2 {
		if _, err := f.service.AdjustQuantity(ctx, item.Id, &structs.AdjustInventoryRequest{Delta: ptr(dec("-1")), Type: "usage"}); err != nil {
			t.Fatalf("AdjustQuantity() error = %v", err)
		}
	}

	lowEvents := 0
	for _, e := range f.publisher.types() {
		if e == messaging.EventInventoryLowStock {
			lowEvents++
		}
	}
	if lowEvents != 1 {
		t.Errorf("low stock events = %d, want 1", lowEvents)
	}

	low, _ := f.service.LowStock(ctx)
	if len(low) != 1 || low[0].Id != item.Id {
		t.Errorf("LowStock() = %+v", low)
	}
}

func TestRecipeUsage(t *testing.T) {
	burger, salad := uuid.New(), uuid.New()
	bun, beef, lettuce := uuid.New(), uuid.New(), uuid.New()

	order := &tables.Order{
		Id:          uuid.New(),
		OrderNumber: "BT-1",
		Items: []tables.OrderItem{
			{MenuItemId: burger, Quantity: 2},
			{MenuItemId: salad, Quantity: 1},
		},
	}
	recipes := []tables.RecipeIngredient{
		{MenuItemId: burger, InventoryItemId: bun, Quantity: dec("1")},
		{MenuItemId: burger, InventoryItemId: beef, Quantity: dec("0.15")},
		{MenuItemId: burger, InventoryItemId: lettuce, Quantity: dec("0.02")},
		{MenuItemId: salad, InventoryItemId: lettuce, Quantity: dec("0.1")},
	}

	changes := RecipeUsage(order, recipes)
	if len(changes) != 3 {
		t.Fatalf("expected one change per ingredient, got %d", len(changes))
	}

	want := map[uuid.UUID]string{bun: "-2", beef: "-0.3", lettuce: "-0.14"}
	for _, c := range changes {
		if !c.Delta.Equal(dec(want[c.ItemId])) {
			t.Errorf("delta for %s = %s, want %s", c.ItemId, c.Delta, want[c.ItemId])
		}
		if c.Type != tables.TransactionUsage || c.OrderId == nil || *c.OrderId != order.Id {
			t.Errorf("unexpected change %+v", c)
		}
	}
}

func TestConsumeRecipeForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses active orders", func(t *testing.T) {
		f := newInventoryFixture()
		order := tables.Order{Id: uuid.New(), Status: tables.OrderStatusServed}
		f.orders.put(order)

		_, err := f.service.ConsumeRecipeForOrder(ctx, order.Id)
		var ve *lib.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("decrements once", func(t *testing.T) {
		f := newInventoryFixture()
		flour := f.addItem(t, "Flour", "10", "1")
		pizza := uuid.New()
		if _, err := f.service.SetRecipe(ctx, pizza, &structs.SetRecipeRequest{
			Ingredients: []structs.RecipeIngredientInput{{InventoryItemId: flour.Id, Quantity: dec("0.25")}},
		}); err != nil {
			t.Fatalf("SetRecipe() error = %v", err)
		}

		order := tables.Order{
			Id:     uuid.New(),
			Status: tables.OrderStatusCompleted,
			Items:  []tables.OrderItem{{MenuItemId: pizza, Quantity: 4}},
		}
		f.orders.put(order)

		results, err := f.service.ConsumeRecipeForOrder(ctx, order.Id)
		if err != nil {
			t.Fatalf("ConsumeRecipeForOrder() error = %v", err)
		}
		if len(results) != 1 || !results[0].Item.Quantity.Equal(dec("9")) {
			t.Fatalf("unexpected results %+v", results)
		}

		if _, err := f.service.ConsumeRecipeForOrder(ctx, order.Id); !errors.Is(err, lib.ErrConflict) {
			t.Fatalf("second consumption: expected ErrConflict, got %v", err)
		}
	})

	t.Run("concurrent requests consume once", func(t *testing.T) {
		f := newInventoryFixture()
		flour := f.addItem(t, "Flour", "10", "1")
		cheese := f.addItem(t, "Cheese", "5", "1")
		pizza := uuid.New()
		if _, err := f.service.SetRecipe(ctx, pizza, &structs.SetRecipeRequest{
			Ingredients: []structs.RecipeIngredientInput{
				{InventoryItemId: flour.Id, Quantity: dec("0.25")},
				{InventoryItemId: cheese.Id, Quantity: dec("0.1")},
			},
		}); err != nil {
			t.Fatalf("SetRecipe() error = %v", err)
		}

		order := tables.Order{
			Id:     uuid.New(),
			Status: tables.OrderStatusCompleted,
			Items:  []tables.OrderItem{{MenuItemId: pizza, Quantity: 2}},
		}
		f.orders.put(order)

		const callers = 8
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.service.ConsumeRecipeForOrder(ctx, order.Id)
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case !errors.Is(err, lib.ErrConflict):
				t.Errorf("unexpected error %v", err)
			}
		}
		if succeeded != 1 {
			t.Fatalf("%d consumptions succeeded, want 1", succeeded)
		}

		stored, _ := f.inventory.GetInventoryItem(ctx, flour.Id)
		if !stored.Quantity.Equal(dec("9.5")) {
			t.Errorf("flour = %s, want 9.5", stored.Quantity)
		}
		stored, _ = f.inventory.GetInventoryItem(ctx, cheese.Id)
		if !stored.Quantity.Equal(dec("4.8")) {
			t.Errorf("cheese = %s, want 4.8", stored.Quantity)
		}
	})
}

func TestSetRecipe_Validation(t *testing.T) {
	f := newInventoryFixture()
	flour := uuid.New()

	_, err := f.service.SetRecipe(context.Background(), uuid.New(), &structs.SetRecipeRequest{
		Ingredients: []structs.RecipeIngredientInput{
			{InventoryItemId: flour, Quantity: dec("0")},
			{InventoryItemId: flour, Quantity: dec("1")},
		},
	})

	var ve *lib.ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
