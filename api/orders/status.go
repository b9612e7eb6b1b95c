package orders

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

func (orm *OrderRoutesManager) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "order")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.UpdateOrderStatusRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "order")
		return
	}

	order, err := orm.orderService.UpdateOrderStatus(r.Context(), id, tables.OrderStatus(body.Status))
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "order")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.statusUpdated"),
		gecho.WithData(order),
		gecho.Send(),
	)
}

// AdvanceOrder moves the order one step along the kitchen flow.
func (orm *OrderRoutesManager) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "order")
		return
	}

	order, err := orm.orderService.AdvanceOrder(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "order")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.statusUpdated"),
		gecho.WithData(order),
		gecho.Send(),
	)
}

func (orm *OrderRoutesManager) ConsumeInventory(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "inventory")
		return
	}

	results, err := orm.inventoryService.ConsumeRecipeForOrder(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "inventory")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.inventory.consumed"),
		gecho.WithData(map[string]any{"changes": results}),
		gecho.Send(),
	)
}
