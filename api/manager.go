package api

import (
	"tableside_server/api/customers"
	"tableside_server/api/debug"
	"tableside_server/api/drafts"
	"tableside_server/api/floor"
	"tableside_server/api/health"
	"tableside_server/api/inventory"
	"tableside_server/api/menu"
	"tableside_server/api/orders"
	"tableside_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type routesRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type routerManager struct {
	menuRoutes      *menu.MenuRoutesManager
	floorRoutes     *floor.FloorRoutesManager
	orderRoutes     *orders.OrderRoutesManager
	draftRoutes     *drafts.DraftRoutesManager
	customerRoutes  *customers.CustomerRoutesManager
	inventoryRoutes *inventory.InventoryRoutesManager
	healthRoutes    *health.HealthRoutesManager
	debugRoutes     *debug.DebugRoutesManager
}

func NewRouterManager(logger *gecho.Logger, sm *services.ServiceManager) *routerManager {
	return &routerManager{
		menuRoutes:      menu.NewMenuRoutesManager(logger, sm.MenuService),
		floorRoutes:     floor.NewFloorRoutesManager(logger, sm.TableService),
		orderRoutes:     orders.NewOrderRoutesManager(logger, sm.OrderService, sm.InvoiceService, sm.InventoryService),
		draftRoutes:     drafts.NewDraftRoutesManager(logger, sm.DraftService),
		customerRoutes:  customers.NewCustomerRoutesManager(logger, sm.CustomerService),
		inventoryRoutes: inventory.NewInventoryRoutesManager(logger, sm.InventoryService),
		healthRoutes:    health.NewHealthRoutesManager(sm.HealthService),
		debugRoutes:     debug.NewDebugRoutesManager(sm.CacheService),
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	for _, routes := range []routesRegistrar{
		rm.menuRoutes,
		rm.floorRoutes,
		rm.orderRoutes,
		rm.draftRoutes,
		rm.customerRoutes,
		rm.inventoryRoutes,
		rm.healthRoutes,
		rm.debugRoutes,
	} {
		routes.RegisterRoutes(r)
	}
}
