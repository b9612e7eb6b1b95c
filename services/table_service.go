package services

import (
	"context"
	"errors"
	"strings"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TableService struct {
	logger *gecho.Logger
	tables TableStore
	orders *OrderService
}

func NewTableService(logger *gecho.Logger, tableStore TableStore, orderService *OrderService) *TableService {
	return &TableService{
		logger: logger,
		tables: tableStore,
		orders: orderService,
	}
}

// ListTables loads tables, sections and active orders concurrently and derives
// each table's effective status.
func (ts *TableService) ListTables(ctx context.Context) (*FloorPlan, error) {
	var (
		diningTables []tables.DiningTable
		sections     []tables.Section
		activeOrders []tables.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		diningTables, err = ts.tables.ListTables(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sections, err = ts.tables.ListSections(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		activeOrders, err = ts.orders.ActiveOrders(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		ts.logger.Error("Failed to load floor plan", gecho.Field("error", err))
		return nil, err
	}

	return &FloorPlan{
		Sections: sections,
		Tables:   DeriveOccupancy(diningTables, activeOrders),
	}, nil
}

// SetTableStatus writes a table's stored status, reconciling it with the
// table's active order:
//   - available with an active order needs confirm, then completes the order
//     before the table is freed;
//   - reserved with an active order is refused;
//   - occupied is always allowed.
func (ts *TableService) SetTableStatus(ctx context.Context, tableId uuid.UUID, status tables.TableStatus, confirm bool) (*tables.DiningTable, error) {
	if !status.IsValid() {
		return nil, lib.NewValidationError("status", "must be one of: available occupied reserved")
	}

	table, err := ts.tables.GetTable(ctx, tableId)
	if err != nil {
		return nil, err
	}

	if status == tables.TableStatusOccupied {
		return ts.writeStatus(ctx, table, status)
	}

	active, err := ts.orders.ActiveOrderForTable(ctx, tableId)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return ts.writeStatus(ctx, table, status)
	}

	if status == tables.TableStatusReserved {
		return nil, lib.ErrTableBusy
	}

	if !confirm {
		return nil, &lib.ConfirmationError{
			TableId:  tableId,
			OrderId:  active.Id,
			OrderNum: active.OrderNumber,
		}
	}

	return ts.freeTable(ctx, table, active)
}

// freeTable completes the active order, then frees the table. The two writes
// are independent; a failure reports which half landed.
func (ts *TableService) freeTable(ctx context.Context, table *tables.DiningTable, active *tables.Order) (*tables.DiningTable, error) {
	if _, err := ts.orders.CompleteOrder(ctx, active.Id); err != nil {
		return nil, &lib.OccupancyError{
			OrderId: active.Id,
			TableId: table.Id,
			Err:     err,
		}
	}

	updated, err := ts.writeStatus(ctx, table, tables.TableStatusAvailable)
	if err != nil {
		ts.logger.Error("Order completed but table was not freed",
			gecho.Field("order_id", active.Id),
			gecho.Field("table_id", table.Id),
			gecho.Field("error", err))
		return nil, &lib.OccupancyError{
			OrderId:        active.Id,
			TableId:        table.Id,
			OrderCompleted: true,
			Err:            err,
		}
	}

	ts.logger.Info("Table freed",
		gecho.Field("table_id", table.Id),
		gecho.Field("completed_order", active.OrderNumber))
	return updated, nil
}

func (ts *TableService) writeStatus(ctx context.Context, table *tables.DiningTable, status tables.TableStatus) (*tables.DiningTable, error) {
	if err := ts.tables.UpdateTableStatus(ctx, table.Id, status); err != nil {
		return nil, err
	}
	table.Status = status
	table.UpdatedAt = time.Now()
	return table, nil
}

// UpdateTablePosition stores floor-plan coordinates, last write wins
func (ts *TableService) UpdateTablePosition(ctx context.Context, tableId uuid.UUID, x, y float64) error {
	return ts.tables.UpdateTablePosition(ctx, tableId, x, y)
}

// AddTable creates a table in an existing section
func (ts *TableService) AddTable(ctx context.Context, req *structs.CreateTableRequest) (*tables.DiningTable, error) {
	name := strings.TrimSpace(req.Name)
	ve := &lib.ValidationError{}
	if name == "" {
		ve.Add("name", "is required")
	}
	if req.Capacity < 1 {
		ve.Add("capacity", "must be at least 1")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	section, err := ts.tables.GetSection(ctx, req.SectionId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	table := &tables.DiningTable{
		Id:        uuid.New(),
		Name:      name,
		Capacity:  req.Capacity,
		SectionId: section.Id,
		Status:    tables.TableStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ts.tables.InsertTable(ctx, table); err != nil {
		return nil, err
	}
	table.Section = section

	ts.logger.Info("Table added", gecho.Field("table_id", table.Id), gecho.Field("section", section.Name))
	return table, nil
}

func (ts *TableService) ListSections(ctx context.Context) ([]tables.Section, error) {
	return ts.tables.ListSections(ctx)
}

func (ts *TableService) AddSection(ctx context.Context, name string) (*tables.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, lib.NewValidationError("name", "is required")
	}

	section := &tables.Section{
		Id:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := ts.tables.InsertSection(ctx, section); err != nil {
		if errors.Is(err, lib.ErrConflict) {
			ts.logger.Debug("Section name already taken", gecho.Field("name", name))
		}
		return nil, err
	}
	return section, nil
}

// RenameSection renames a section. Tables pick the new name up on their next read.
func (ts *TableService) RenameSection(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return lib.NewValidationError("name", "is required")
	}
	return ts.tables.RenameSection(ctx, id, name)
}
