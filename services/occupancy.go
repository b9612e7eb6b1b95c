package services

import (
	"tableside_server/structs/tables"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActiveOrderSummary is the slice of an active order shown on the floor plan
type ActiveOrderSummary struct {
	Id          uuid.UUID          `json:"id"`
	OrderNumber string             `json:"order_number"`
	Status      tables.OrderStatus `json:"status"`
	Total       decimal.Decimal    `json:"total"`
	CreatedAt   time.Time          `json:"created_at"`
}

// TableView is a table as staff see it: stored row, resolved section name and
// the status derived from its active order.
type TableView struct {
	tables.DiningTable
	SectionName     string              `json:"section_name"`
	EffectiveStatus tables.TableStatus  `json:"effective_status"`
	ActiveOrder     *ActiveOrderSummary `json:"active_order,omitempty"`
}

// FloorPlan is the result of ListTables
type FloorPlan struct {
	Sections []tables.Section `json:"sections"`
	Tables   []TableView      `json:"tables"`
}

// DeriveOccupancy computes the effective status of every table. A table with an
// active order is occupied whatever its stored status says; otherwise the
// stored status stands. Nothing is written back.
func DeriveOccupancy(diningTables []tables.DiningTable, activeOrders []tables.Order) []TableView {
	byTable := make(map[uuid.UUID]*tables.Order, len(activeOrders))
	for i := range activeOrders {
		order := &activeOrders[i]
		if order.TableId == nil || !order.IsActive() {
			continue
		}
		// Oldest order wins if the one-per-table index was ever bypassed
		if existing, ok := byTable[*order.TableId]; ok && existing.CreatedAt.Before(order.CreatedAt) {
			continue
		}
		byTable[*order.TableId] = order
	}

	views := make([]TableView, 0, len(diningTables))
	for _, t := range diningTables {
		view := TableView{
			DiningTable:     t,
			EffectiveStatus: t.Status,
		}
		if t.Section != nil {
			view.SectionName = t.Section.Name
		}

		if order, ok := byTable[t.Id]; ok {
			view.EffectiveStatus = tables.TableStatusOccupied
			view.ActiveOrder = &ActiveOrderSummary{
				Id:          order.Id,
				OrderNumber: order.OrderNumber,
				Status:      order.Status,
				Total:       order.Total,
				CreatedAt:   order.CreatedAt,
			}
		}

		views = append(views, view)
	}

	return views
}
