package orders

import (
	"tableside_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type OrderRoutesManager struct {
	logger           *gecho.Logger
	orderService     *services.OrderService
	invoiceService   *services.InvoiceService
	inventoryService *services.InventoryService
}

func NewOrderRoutesManager(logger *gecho.Logger, orderService *services.OrderService, invoiceService *services.InvoiceService, inventoryService *services.InventoryService) *OrderRoutesManager {
	return &OrderRoutesManager{
		logger:           logger,
		orderService:     orderService,
		invoiceService:   invoiceService,
		inventoryService: inventoryService,
	}
}

func (orm *OrderRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orm.ListOrders)
		r.Post("/", orm.CreateOrder)
		r.Get("/active", orm.ListActiveOrders)
		r.Get("/{id}", orm.GetOrder)
		r.Patch("/{id}/status", orm.UpdateStatus)
		r.Post("/{id}/advance", orm.AdvanceOrder)
		r.Get("/{id}/invoice", orm.GetInvoice)
		r.Post("/{id}/invoice/email", orm.EmailInvoice)
		r.Post("/{id}/consume", orm.ConsumeInventory)
	})
}
