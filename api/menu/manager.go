package menu

import (
	"tableside_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type MenuRoutesManager struct {
	logger      *gecho.Logger
	menuService *services.MenuService
}

func NewMenuRoutesManager(logger *gecho.Logger, menuService *services.MenuService) *MenuRoutesManager {
	return &MenuRoutesManager{
		logger:      logger,
		menuService: menuService,
	}
}

func (mrm *MenuRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/menu", func(r chi.Router) {
		r.Get("/items", mrm.ListItems)
		r.Post("/items", mrm.CreateItem)
		r.Get("/items/{id}", mrm.GetItem)
		r.Patch("/items/{id}", mrm.UpdateItem)
		r.Delete("/items/{id}", mrm.DeleteItem)

		r.Get("/categories", mrm.ListCategories)
		r.Post("/categories", mrm.CreateCategory)
	})
}
