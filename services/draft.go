package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDraft is an order being composed at the table, before it is placed.
// Price and name are captured when an item is first added.
type OrderDraft struct {
	Id        uuid.UUID                `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	lines     []structs.OrderLineInput
}

func NewOrderDraft() *OrderDraft {
	return &OrderDraft{
		Id:        uuid.New(),
		CreatedAt: time.Now(),
	}
}

// Add puts one unit of the menu item on the draft. Adding an item that is
// already there increments its line instead of adding a second one.
func (d *OrderDraft) Add(item *tables.MenuItem) error {
	if !item.IsAvailable {
		return lib.NewValidationError("menu_item_id", fmt.Sprintf("%s is not available", item.Name))
	}

	if i := d.indexOf(item.Id); i >= 0 {
		d.lines[i].Quantity++
		return nil
	}

	d.lines = append(d.lines, structs.OrderLineInput{
		MenuItemId: item.Id,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
	})
	return nil
}

// SetQuantity overwrites a line's quantity; zero removes the line
func (d *OrderDraft) SetQuantity(menuItemId uuid.UUID, quantity int) error {
	if quantity < 0 {
		return lib.NewValidationError("quantity", "must not be negative")
	}
	if quantity == 0 {
		return d.Remove(menuItemId)
	}

	i := d.indexOf(menuItemId)
	if i < 0 {
		return fmt.Errorf("%w: menu item %s is not on the draft", lib.ErrNotFound, menuItemId)
	}
	d.lines[i].Quantity = quantity
	return nil
}

// Remove drops a line. The last line cannot be removed; discard the draft instead.
func (d *OrderDraft) Remove(menuItemId uuid.UUID) error {
	i := d.indexOf(menuItemId)
	if i < 0 {
		return fmt.Errorf("%w: menu item %s is not on the draft", lib.ErrNotFound, menuItemId)
	}
	if len(d.lines) == 1 {
		return lib.NewValidationError("items", "a draft must keep at least one line")
	}
	d.lines = slices.Delete(d.lines, i, i+1)
	return nil
}

// Lines returns a copy of the draft's lines
func (d *OrderDraft) Lines() []structs.OrderLineInput {
	return slices.Clone(d.lines)
}

func (d *OrderDraft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(2)
}

// ToOrderRequest turns the draft into a placement request
func (d *OrderDraft) ToOrderRequest(tableId *uuid.UUID, customer *structs.CustomerInfo) *structs.OrderRequest {
	return &structs.OrderRequest{
		TableId:  tableId,
		Items:    d.Lines(),
		Customer: customer,
	}
}

func (d *OrderDraft) indexOf(menuItemId uuid.UUID) int {
	return slices.IndexFunc(d.lines, func(l structs.OrderLineInput) bool {
		return l.MenuItemId == menuItemId
	})
}

// DraftView is the JSON shape of a draft
type DraftView struct {
	Id        uuid.UUID                `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	Lines     []structs.OrderLineInput `json:"lines"`
	Total     decimal.Decimal          `json:"total"`
}

func (d *OrderDraft) View() *DraftView {
	lines := d.Lines()
	if lines == nil {
		lines = []structs.OrderLineInput{}
	}
	return &DraftView{
		Id:        d.Id,
		CreatedAt: d.CreatedAt,
		Lines:     lines,
		Total:     d.Total(),
	}
}

// DraftService keeps drafts in memory; they do not survive a restart. Drafts
// idle for longer than the configured TTL are dropped, and when the cap is
// reached the least recently used draft makes room for a new one.
type DraftService struct {
	logger    *gecho.Logger
	menu      *MenuService
	orders    *OrderService
	ttl       time.Duration
	maxDrafts int
	now       func() time.Time

	mu     sync.Mutex
	drafts map[uuid.UUID]*draftEntry
}

type draftEntry struct {
	draft      *OrderDraft
	touchedAt  time.Time
	submitting bool
}

func NewDraftService(logger *gecho.Logger, cfg *structs.Config, menu *MenuService, orders *OrderService) *DraftService {
	return &DraftService{
		logger:    logger,
		menu:      menu,
		orders:    orders,
		ttl:       cfg.Store.DraftTTL,
		maxDrafts: cfg.Store.MaxDrafts,
		now:       time.Now,
		drafts:    make(map[uuid.UUID]*draftEntry),
	}
}

func (ds *DraftService) CreateDraft() *DraftView {
	draft := NewOrderDraft()

	ds.mu.Lock()
	ds.sweep()
	ds.drafts[draft.Id] = &draftEntry{draft: draft, touchedAt: ds.now()}
	ds.mu.Unlock()

	return draft.View()
}

func (ds *DraftService) GetDraft(id uuid.UUID) (*DraftView, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entry, err := ds.lookup(id)
	if err != nil {
		return nil, err
	}
	return entry.draft.View(), nil
}

// AddItem adds one unit of a catalog item to the draft
func (ds *DraftService) AddItem(ctx context.Context, id uuid.UUID, menuItemId uuid.UUID) (*DraftView, error) {
	item, err := ds.menu.GetMenuItem(ctx, menuItemId)
	if err != nil {
		return nil, err
	}

	return ds.mutate(id, func(d *OrderDraft) error {
		return d.Add(&item.MenuItem)
	})
}

func (ds *DraftService) SetQuantity(id uuid.UUID, menuItemId uuid.UUID, quantity int) (*DraftView, error) {
	return ds.mutate(id, func(d *OrderDraft) error {
		return d.SetQuantity(menuItemId, quantity)
	})
}

func (ds *DraftService) RemoveItem(id uuid.UUID, menuItemId uuid.UUID) (*DraftView, error) {
	return ds.mutate(id, func(d *OrderDraft) error {
		return d.Remove(menuItemId)
	})
}

func (ds *DraftService) Discard(id uuid.UUID) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entry, err := ds.lookup(id)
	if err != nil {
		return err
	}
	if entry.submitting {
		return errDraftSubmitting(id)
	}
	delete(ds.drafts, id)
	return nil
}

// Submit places the draft as an order. The draft is only dropped once the
// order has been created; while the order is being created the draft is
// frozen and a second submit is refused.
func (ds *DraftService) Submit(ctx context.Context, id uuid.UUID, req *structs.DraftSubmitRequest) (*tables.Order, error) {
	ds.mu.Lock()
	entry, err := ds.lookup(id)
	if err == nil && entry.submitting {
		err = errDraftSubmitting(id)
	}
	if err != nil {
		ds.mu.Unlock()
		return nil, err
	}
	entry.submitting = true
	orderReq := entry.draft.ToOrderRequest(req.TableId, req.Customer)
	ds.mu.Unlock()

	order, err := ds.orders.CreateOrder(ctx, orderReq)

	ds.mu.Lock()
	if err != nil {
		entry.submitting = false
		entry.touchedAt = ds.now()
	} else {
		delete(ds.drafts, id)
	}
	ds.mu.Unlock()
	if err != nil {
		return nil, err
	}

	ds.logger.Debug("Draft submitted", gecho.Field("draft_id", id), gecho.Field("order_id", order.Id))
	return order, nil
}

func (ds *DraftService) mutate(id uuid.UUID, fn func(d *OrderDraft) error) (*DraftView, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entry, err := ds.lookup(id)
	if err != nil {
		return nil, err
	}
	if entry.submitting {
		return nil, errDraftSubmitting(id)
	}
	if err := fn(entry.draft); err != nil {
		return nil, err
	}
	entry.touchedAt = ds.now()
	return entry.draft.View(), nil
}

// lookup must be called with mu held. Expired drafts are treated as gone.
func (ds *DraftService) lookup(id uuid.UUID) (*draftEntry, error) {
	entry, ok := ds.drafts[id]
	if ok && ds.expired(entry) {
		delete(ds.drafts, id)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: draft %s", lib.ErrNotFound, id)
	}
	return entry, nil
}

func (ds *DraftService) expired(entry *draftEntry) bool {
	return ds.ttl > 0 && !entry.submitting && ds.now().Sub(entry.touchedAt) > ds.ttl
}

// sweep drops expired drafts and, at the cap, the least recently touched
// idle ones. Must be called with mu held.
func (ds *DraftService) sweep() {
	for id, entry := range ds.drafts {
		if ds.expired(entry) {
			delete(ds.drafts, id)
		}
	}
	if ds.maxDrafts <= 0 {
		return
	}

	for len(ds.drafts) >= ds.maxDrafts {
		var oldest uuid.UUID
		var oldestAt time.Time
		for id, entry := range ds.drafts {
			if entry.submitting {
				continue
			}
			if oldest == uuid.Nil || entry.touchedAt.Before(oldestAt) {
				oldest, oldestAt = id, entry.touchedAt
			}
		}
		if oldest == uuid.Nil {
			return
		}
		delete(ds.drafts, oldest)
		ds.logger.Debug("Evicted draft at capacity", gecho.Field("draft_id", oldest))
	}
}

func errDraftSubmitting(id uuid.UUID) error {
	return fmt.Errorf("%w: draft %s is being submitted", lib.ErrConflict, id)
}
