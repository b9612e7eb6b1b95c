package drafts

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

func (drm *DraftRoutesManager) CreateDraft(w http.ResponseWriter, r *http.Request) {
	gecho.Success(w,
		gecho.WithMessage("success.draft.created"),
		gecho.WithData(drm.draftService.CreateDraft()),
		gecho.Send(),
	)
}

func (drm *DraftRoutesManager) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "draft")
		return
	}

	draft, err := drm.draftService.GetDraft(id)
	if err != nil {
		handling.HandleServiceError(w, err, drm.logger, "draft")
		return
	}

	gecho.Success(w,
		gecho.WithData(draft),
		gecho.Send(),
	)
}

func (drm *DraftRoutesManager) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "draft")
		return
	}

	if err := drm.draftService.Discard(id); err != nil {
		handling.HandleServiceError(w, err, drm.logger, "draft")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.draft.discarded"),
		gecho.Send(),
	)
}

func (drm *DraftRoutesManager) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "draft")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.DraftAddRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "draft")
		return
	}

	draft, err := drm.draftService.AddItem(r.Context(), id, body.MenuItemId)
	if err != nil {
		handling.HandleServiceError(w, err, drm.logger, "draft")
		return
	}

	gecho.Success(w,
		gecho.WithData(draft),
		gecho.Send(),
	)
}

func (drm *DraftRoutesManager) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, menuItemId, ok := drm.lineParams(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.DraftQuantityRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "draft")
		return
	}

	draft, err := drm.draftService.SetQuantity(id, menuItemId, body.Quantity)
	if err != nil {
		handling.HandleServiceError(w, err, drm.logger, "draft")
		return
	}

	gecho.Success(w,
		gecho.WithData(draft),
		gecho.Send(),
	)
}

func (drm *DraftRoutesManager) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, menuItemId, ok := drm.lineParams(w, r)
	if !ok {
		return
	}

	draft, err := drm.draftService.RemoveItem(id, menuItemId)
	if err != nil {
		handling.HandleServiceError(w, err, drm.logger, "draft")
		return
	}

	gecho.Success(w,
		gecho.WithData(draft),
		gecho.Send(),
	)
}

// Submit turns the draft into an order. The draft survives a failed submit.
func (drm *DraftRoutesManager) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "draft")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.DraftSubmitRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "draft")
		return
	}

	order, err := drm.draftService.Submit(r.Context(), id, body)
	if err != nil {
		handling.HandleServiceError(w, err, drm.logger, "draft")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.created"),
		gecho.WithData(order),
		gecho.Send(),
	)
}

func (drm *DraftRoutesManager) lineParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "draft")
		return uuid.Nil, uuid.Nil, false
	}
	menuItemId, err := handling.ParseUUIDParam(r, "menuItemId")
	if err != nil {
		handling.HandleParamError(w, err, "draft")
		return uuid.Nil, uuid.Nil, false
	}
	return id, menuItemId, true
}
