package menu

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
)

// ListItems handles GET /menu/items with category, availability and search filters
func (mrm *MenuRoutesManager) ListItems(w http.ResponseWriter, r *http.Request) {
	opts, err := handling.ParseMenuListOptions(r)
	if err != nil {
		mrm.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		handling.HandleParamError(w, err, "menu")
		return
	}

	items, err := mrm.menuService.ListMenuItems(r.Context(), opts)
	if err != nil {
		handling.HandleServiceError(w, err, mrm.logger, "menu")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"items": items,
			"count": len(items),
		}),
		gecho.Send(),
	)
}

func (mrm *MenuRoutesManager) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "menu")
		return
	}

	item, err := mrm.menuService.GetMenuItem(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(w, err, mrm.logger, "menu")
		return
	}

	gecho.Success(w,
		gecho.WithData(item),
		gecho.Send(),
	)
}

func (mrm *MenuRoutesManager) CreateItem(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.CreateMenuItemRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "menu")
		return
	}

	item, err := mrm.menuService.CreateMenuItem(r.Context(), body)
	if err != nil {
		handling.HandleServiceError(w, err, mrm.logger, "menu")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.menu.created"),
		gecho.WithData(item),
		gecho.Send(),
	)
}

func (mrm *MenuRoutesManager) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "menu")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.UpdateMenuItemRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "menu")
		return
	}

	item, err := mrm.menuService.UpdateMenuItem(r.Context(), id, body)
	if err != nil {
		handling.HandleServiceError(w, err, mrm.logger, "menu")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.menu.updated"),
		gecho.WithData(item),
		gecho.Send(),
	)
}

func (mrm *MenuRoutesManager) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "menu")
		return
	}

	if err := mrm.menuService.DeleteMenuItem(r.Context(), id); err != nil {
		handling.HandleServiceError(w, err, mrm.logger, "menu")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.menu.deleted"),
		gecho.Send(),
	)
}
