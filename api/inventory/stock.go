package inventory

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
)

const defaultTransactionLimit = 50

func (irm *InventoryRoutesManager) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := irm.inventoryService.ListInventory(r.Context())
	if err != nil {
		handling.HandleServiceError(w, err, irm.logger, "inventory")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"items": items}),
		gecho.Send(),
	)
}

func (irm *InventoryRoutesManager) CreateItem(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.CreateInventoryItemRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "inventory")
		return
	}

	item, err := irm.inventoryService.CreateInventoryItem(r.Context(), body)
	if err != nil {
		handling.HandleServiceError(w, err, irm.logger, "inventory")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.inventory.created"),
		gecho.WithData(item),
		gecho.Send(),
	)
}

func (irm *InventoryRoutesManager) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := irm.inventoryService.LowStock(r.Context())
	if err != nil {
		handling.HandleServiceError(w, err, irm.logger, "inventory")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"items": items}),
		gecho.Send(),
	)
}

// Adjust applies a restock, usage or count correction and records it.
func (irm *InventoryRoutesManager) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "inventory")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.AdjustInventoryRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "inventory")
		return
	}

	result, err := irm.inventoryService.AdjustQuantity(r.Context(), id, body)
	if err != nil {
		handling.HandleServiceError(w, err, irm.logger, "inventory")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.inventory.adjusted"),
		gecho.WithData(result),
		gecho.Send(),
	)
}

func (irm *InventoryRoutesManager) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "inventory")
		return
	}

	limit, err := handling.ParseLimit(r, defaultTransactionLimit)
	if err != nil {
		handling.HandleParamError(w, err, "inventory")
		return
	}

	transactions, err := irm.inventoryService.ListTransactions(r.Context(), id, limit)
	if err != nil {
		handling.HandleServiceError(w, err, irm.logger, "inventory")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"transactions": transactions}),
		gecho.Send(),
	)
}

func (irm *InventoryRoutesManager) SetRecipe(w http.ResponseWriter, r *http.Request) {
	menuItemId, err := handling.ParseUUIDParam(r, "menuItemId")
	if err != nil {
		handling.HandleParamError(w, err, "recipe")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.SetRecipeRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "recipe")
		return
	}

	ingredients, err := irm.inventoryService.SetRecipe(r.Context(), menuItemId, body)
	if err != nil {
		handling.HandleServiceError(w, err, irm.logger, "recipe")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.recipe.saved"),
		gecho.WithData(map[string]any{"ingredients": ingredients}),
		gecho.Send(),
	)
}
