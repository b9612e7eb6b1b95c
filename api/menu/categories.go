package menu

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
)

func (mrm *MenuRoutesManager) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := mrm.menuService.ListCategories(r.Context())
	if err != nil {
		handling.HandleServiceError(w, err, mrm.logger, "category")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"categories": categories}),
		gecho.Send(),
	)
}

func (mrm *MenuRoutesManager) CreateCategory(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.CategoryRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "category")
		return
	}

	category, err := mrm.menuService.CreateCategory(r.Context(), body.Name)
	if err != nil {
		handling.HandleServiceError(w, err, mrm.logger, "category")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.category.created"),
		gecho.WithData(category),
		gecho.Send(),
	)
}
