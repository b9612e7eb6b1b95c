package floor

import (
	"tableside_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// FloorRoutesManager serves tables and the sections that group them.
type FloorRoutesManager struct {
	logger       *gecho.Logger
	tableService *services.TableService
}

func NewFloorRoutesManager(logger *gecho.Logger, tableService *services.TableService) *FloorRoutesManager {
	return &FloorRoutesManager{
		logger:       logger,
		tableService: tableService,
	}
}

func (frm *FloorRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", frm.ListTables)
		r.Post("/", frm.AddTable)
		r.Patch("/{id}/status", frm.SetTableStatus)
		r.Patch("/{id}/position", frm.UpdatePosition)
	})

	r.Route("/sections", func(r chi.Router) {
		r.Get("/", frm.ListSections)
		r.Post("/", frm.AddSection)
		r.Patch("/{id}", frm.RenameSection)
	})
}
