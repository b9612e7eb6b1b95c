package inventory

import (
	"tableside_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type InventoryRoutesManager struct {
	logger           *gecho.Logger
	inventoryService *services.InventoryService
}

func NewInventoryRoutesManager(logger *gecho.Logger, inventoryService *services.InventoryService) *InventoryRoutesManager {
	return &InventoryRoutesManager{
		logger:           logger,
		inventoryService: inventoryService,
	}
}

func (irm *InventoryRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", irm.ListInventory)
		r.Post("/", irm.CreateItem)
		r.Get("/low-stock", irm.LowStock)
		r.Post("/{id}/adjust", irm.Adjust)
		r.Get("/{id}/transactions", irm.ListTransactions)
		r.Put("/recipes/{menuItemId}", irm.SetRecipe)
	})
}
