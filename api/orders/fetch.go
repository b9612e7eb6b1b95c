package orders

import (
	"net/http"
	"tableside_server/handling"

	"github.com/MonkyMars/gecho"
)

// ListOrders handles GET /orders with status, table and paging filters
func (orm *OrderRoutesManager) ListOrders(w http.ResponseWriter, r *http.Request) {
	opts, err := handling.ParseOrderListOptions(r)
	if err != nil {
		orm.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		handling.HandleParamError(w, err, "order")
		return
	}

	result, err := orm.orderService.ListOrders(r.Context(), opts)
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "order")
		return
	}

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}

func (orm *OrderRoutesManager) ListActiveOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := orm.orderService.ActiveOrders(r.Context())
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "order")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"orders": orders}),
		gecho.Send(),
	)
}

func (orm *OrderRoutesManager) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "order")
		return
	}

	order, err := orm.orderService.GetOrder(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "order")
		return
	}

	gecho.Success(w,
		gecho.WithData(order),
		gecho.Send(),
	)
}
