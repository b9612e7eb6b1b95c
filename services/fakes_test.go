package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"tableside_server/lib"
	"tableside_server/messaging"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

func testConfig() *structs.Config {
	return &structs.Config{
		Store: &structs.StoreConfig{
			Name:              "Bistro Test",
			Currency:          "EUR",
			OrderNumberPrefix: "BT",
		},
		Email: &structs.EmailConfig{From: "receipts@example.com"},
		Cache: &structs.CacheConfig{},
	}
}

func testLogger() *gecho.Logger {
	return gecho.NewDefaultLogger()
}

func cloneOrder(o tables.Order) *tables.Order {
	o.Items = slices.Clone(o.Items)
	return &o
}

type fakeOrderStore struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]tables.Order
	customers   *fakeCustomerStore
	tables      *fakeTableStore // when set, table ids must exist like the foreign key requires
	createCalls int
	createErrs  []error // returned one per CreateOrder call, nil entries pass through
	updateErr   error
	onCreate    func() // runs before CreateOrder takes the lock
}

func newFakeOrderStore(customers *fakeCustomerStore) *fakeOrderStore {
	return &fakeOrderStore{orders: map[uuid.UUID]tables.Order{}, customers: customers}
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, order *tables.Order, customer *tables.Customer) error {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}

	if order.TableId != nil && f.tables != nil {
		if _, err := f.tables.GetTable(ctx, *order.TableId); err != nil {
			return err
		}
	}
	if order.TableId != nil {
		for _, existing := range f.orders {
			if existing.TableId != nil && *existing.TableId == *order.TableId && existing.IsActive() {
				return lib.ErrTableBusy
			}
		}
	}

	if customer != nil && f.customers != nil {
		stored, err := f.customers.UpsertCustomer(ctx, customer)
		if err != nil {
			return err
		}
		order.CustomerId = &stored.Id
	}

	f.orders[order.Id] = *cloneOrder(*order)
	return nil
}

func (f *fakeOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*tables.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", lib.ErrNotFound, id)
	}
	return cloneOrder(order), nil
}

func (f *fakeOrderStore) ListOrders(ctx context.Context, opts *structs.OrderListOptions) ([]tables.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.Order{}
	for _, o := range f.orders {
		if opts.ActiveOnly && !o.IsActive() {
			continue
		}
		if len(opts.Statuses) > 0 && !slices.Contains(opts.Statuses, o.Status) {
			continue
		}
		if opts.TableId != nil && (o.TableId == nil || *o.TableId != *opts.TableId) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	return out, len(out), nil
}

func (f *fakeOrderStore) ActiveOrders(ctx context.Context) ([]tables.Order, error) {
	return f.active(nil), nil
}

func (f *fakeOrderStore) ActiveOrderForTable(ctx context.Context, tableId uuid.UUID) (*tables.Order, error) {
	active := f.active(&tableId)
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

func (f *fakeOrderStore) active(tableId *uuid.UUID) []tables.Order {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.Order{}
	for _, o := range f.orders {
		if !o.IsActive() {
			continue
		}
		if tableId != nil && (o.TableId == nil || *o.TableId != *tableId) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	return out
}

func (f *fakeOrderStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to tables.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	order, ok := f.orders[id]
	if !ok {
		return lib.ErrNotFound
	}
	if order.Status != from {
		return lib.ErrConflict
	}
	order.Status = to
	f.orders[id] = order
	return nil
}

// put stores an order directly, bypassing validation
func (f *fakeOrderStore) put(order tables.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.Id] = order
}

type fakeCustomerStore struct {
	mu        sync.Mutex
	byPhone   map[string]tables.Customer
	refreshed []uuid.UUID
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{byPhone: map[string]tables.Customer{}}
}

func (f *fakeCustomerStore) UpsertCustomer(ctx context.Context, customer *tables.Customer) (*tables.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.byPhone[customer.Phone]
	if !ok {
		stored = *customer
	} else if customer.Name != "" {
		stored.Name = customer.Name
	}
	f.byPhone[customer.Phone] = stored
	return &stored, nil
}

func (f *fakeCustomerStore) GetCustomer(ctx context.Context, id uuid.UUID) (*tables.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.byPhone {
		if c.Id == id {
			return &c, nil
		}
	}
	return nil, lib.ErrNotFound
}

func (f *fakeCustomerStore) ListCustomers(ctx context.Context, opts *structs.CustomerListOptions) ([]tables.Customer, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.Customer{}
	for _, c := range f.byPhone {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeCustomerStore) RefreshCustomerStats(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, id)
	return nil
}

type fakeTableStore struct {
	mu              sync.Mutex
	tables          map[uuid.UUID]tables.DiningTable
	sections        map[uuid.UUID]tables.Section
	updateStatusErr error
}

func newFakeTableStore() *fakeTableStore {
	return &fakeTableStore{
		tables:   map[uuid.UUID]tables.DiningTable{},
		sections: map[uuid.UUID]tables.Section{},
	}
}

func (f *fakeTableStore) addTable(name string, status tables.TableStatus) tables.DiningTable {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := tables.DiningTable{Id: uuid.New(), Name: name, Capacity: 4, Status: status}
	f.tables[table.Id] = table
	return table
}

func (f *fakeTableStore) ListTables(ctx context.Context) ([]tables.DiningTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.DiningTable{}
	for _, t := range f.tables {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTableStore) GetTable(ctx context.Context, id uuid.UUID) (*tables.DiningTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tables[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTableStore) InsertTable(ctx context.Context, table *tables.DiningTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table.Id] = *table
	return nil
}

func (f *fakeTableStore) UpdateTableStatus(ctx context.Context, id uuid.UUID, status tables.TableStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	t, ok := f.tables[id]
	if !ok {
		return lib.ErrNotFound
	}
	t.Status = status
	f.tables[id] = t
	return nil
}

func (f *fakeTableStore) UpdateTablePosition(ctx context.Context, id uuid.UUID, x, y float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tables[id]
	if !ok {
		return lib.ErrNotFound
	}
	t.PositionX, t.PositionY = x, y
	f.tables[id] = t
	return nil
}

func (f *fakeTableStore) ListSections(ctx context.Context) ([]tables.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.Section{}
	for _, s := range f.sections {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeTableStore) GetSection(ctx context.Context, id uuid.UUID) (*tables.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sections[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return &s, nil
}

func (f *fakeTableStore) InsertSection(ctx context.Context, section *tables.Section) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sections {
		if s.Name == section.Name {
			return lib.ErrConflict
		}
	}
	f.sections[section.Id] = *section
	return nil
}

func (f *fakeTableStore) RenameSection(ctx context.Context, id uuid.UUID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sections[id]
	if !ok {
		return lib.ErrNotFound
	}
	s.Name = name
	f.sections[id] = s
	return nil
}

type fakeMenuStore struct {
	mu         sync.Mutex
	items      map[uuid.UUID]tables.MenuItem
	categories map[uuid.UUID]tables.MenuCategory
	listCalls  int
}

func newFakeMenuStore() *fakeMenuStore {
	return &fakeMenuStore{
		items:      map[uuid.UUID]tables.MenuItem{},
		categories: map[uuid.UUID]tables.MenuCategory{},
	}
}

// withCategory resolves the belongs-to relation the way the bun store does
func (f *fakeMenuStore) withCategory(item tables.MenuItem) tables.MenuItem {
	item.Category = nil
	if item.CategoryId != nil {
		if c, ok := f.categories[*item.CategoryId]; ok {
			item.Category = &c
		}
	}
	return item
}

func (f *fakeMenuStore) ListMenuItems(ctx context.Context, opts *structs.MenuListOptions) ([]tables.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	out := []tables.MenuItem{}
	for _, item := range f.items {
		if opts.AvailableOnly && !item.IsAvailable {
			continue
		}
		out = append(out, f.withCategory(item))
	}
	return out, nil
}

func (f *fakeMenuStore) GetMenuItem(ctx context.Context, id uuid.UUID) (*tables.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	item = f.withCategory(item)
	return &item, nil
}

func (f *fakeMenuStore) InsertMenuItem(ctx context.Context, item *tables.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.Id] = *item
	return nil
}

func (f *fakeMenuStore) UpdateMenuItem(ctx context.Context, item *tables.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[item.Id]; !ok {
		return lib.ErrNotFound
	}
	f.items[item.Id] = *item
	return nil
}

func (f *fakeMenuStore) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return lib.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeMenuStore) ListCategories(ctx context.Context) ([]tables.MenuCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.MenuCategory{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeMenuStore) GetCategory(ctx context.Context, id uuid.UUID) (*tables.MenuCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.categories[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return &c, nil
}

func (f *fakeMenuStore) InsertCategory(ctx context.Context, category *tables.MenuCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories[category.Id] = *category
	return nil
}

type fakeInventoryStore struct {
	mu           sync.Mutex
	items        map[uuid.UUID]tables.InventoryItem
	transactions []tables.InventoryTransaction
	recipes      map[uuid.UUID][]tables.RecipeIngredient
}

func newFakeInventoryStore() *fakeInventoryStore {
	return &fakeInventoryStore{
		items:   map[uuid.UUID]tables.InventoryItem{},
		recipes: map[uuid.UUID][]tables.RecipeIngredient{},
	}
}

func (f *fakeInventoryStore) ListInventory(ctx context.Context) ([]tables.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.InventoryItem{}
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeInventoryStore) GetInventoryItem(ctx context.Context, id uuid.UUID) (*tables.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return &item, nil
}

func (f *fakeInventoryStore) InsertInventoryItem(ctx context.Context, item *tables.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.Id] = *item
	return nil
}

// ApplyChanges validates every change before writing any, like the transactional store
func (f *fakeInventoryStore) ApplyChanges(ctx context.Context, changes []structs.InventoryChange) ([]structs.InventoryChangeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	staged := make(map[uuid.UUID]tables.InventoryItem, len(f.items))
	for id, item := range f.items {
		staged[id] = item
	}

	var results []structs.InventoryChangeResult
	var records []tables.InventoryTransaction
	for _, change := range changes {
		item, ok := staged[change.ItemId]
		if !ok {
			return nil, lib.ErrNotFound
		}
		next, ok := change.Resolve(item.Quantity)
		if !ok {
			return nil, lib.NewValidationError("quantity", "would drop below zero")
		}
		if change.Type == tables.TransactionUsage && change.OrderId != nil && f.usedByOrder(slices.Concat(f.transactions, records), *change.OrderId, item.Id) {
			return nil, lib.ErrConflict
		}

		record := tables.InventoryTransaction{
			Id:               uuid.New(),
			InventoryItemId:  item.Id,
			PreviousQuantity: item.Quantity,
			NewQuantity:      next,
			Type:             change.Type,
			Notes:            change.Notes,
			OrderId:          change.OrderId,
			CreatedAt:        time.Now(),
		}
		wasLow := item.IsLowStock()
		item.Quantity = next
		staged[item.Id] = item
		records = append(records, record)
		results = append(results, structs.InventoryChangeResult{Item: item, Transaction: record, WasLowStock: wasLow})
	}

	f.items = staged
	f.transactions = append(f.transactions, records...)
	return results, nil
}

// usedByOrder mirrors the unique index on usage rows per order and item
func (f *fakeInventoryStore) usedByOrder(records []tables.InventoryTransaction, orderId, itemId uuid.UUID) bool {
	for _, tx := range records {
		if tx.Type == tables.TransactionUsage && tx.OrderId != nil && *tx.OrderId == orderId && tx.InventoryItemId == itemId {
			return true
		}
	}
	return false
}

func (f *fakeInventoryStore) ListTransactions(ctx context.Context, itemId uuid.UUID, limit int) ([]tables.InventoryTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.InventoryTransaction{}
	for _, tx := range f.transactions {
		if tx.InventoryItemId == itemId {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeInventoryStore) LowStock(ctx context.Context) ([]tables.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.InventoryItem{}
	for _, item := range f.items {
		if item.IsLowStock() {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeInventoryStore) SetRecipe(ctx context.Context, menuItemId uuid.UUID, ingredients []tables.RecipeIngredient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipes[menuItemId] = slices.Clone(ingredients)
	return nil
}

func (f *fakeInventoryStore) GetRecipes(ctx context.Context, menuItemIds []uuid.UUID) ([]tables.RecipeIngredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []tables.RecipeIngredient{}
	for _, id := range menuItemIds {
		out = append(out, f.recipes[id]...)
	}
	return out, nil
}

func (f *fakeInventoryStore) OrderConsumed(ctx context.Context, orderId uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, tx := range f.transactions {
		if tx.OrderId != nil && *tx.OrderId == orderId && tx.Type == tables.TransactionUsage {
			return true, nil
		}
	}
	return false, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
