package drafts

import (
	"tableside_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// DraftRoutesManager serves in-progress orders before they reach the ledger.
type DraftRoutesManager struct {
	logger       *gecho.Logger
	draftService *services.DraftService
}

func NewDraftRoutesManager(logger *gecho.Logger, draftService *services.DraftService) *DraftRoutesManager {
	return &DraftRoutesManager{
		logger:       logger,
		draftService: draftService,
	}
}

func (drm *DraftRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", drm.CreateDraft)
		r.Get("/{id}", drm.GetDraft)
		r.Delete("/{id}", drm.DiscardDraft)
		r.Post("/{id}/items", drm.AddItem)
		r.Patch("/{id}/items/{menuItemId}", drm.SetQuantity)
		r.Delete("/{id}/items/{menuItemId}", drm.RemoveItem)
		r.Post("/{id}/submit", drm.Submit)
	})
}
