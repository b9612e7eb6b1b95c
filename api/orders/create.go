package orders

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
)

func (orm *OrderRoutesManager) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.OrderRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "order")
		return
	}

	order, err := orm.orderService.CreateOrder(r.Context(), body)
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "order")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.created"),
		gecho.WithData(order),
		gecho.Send(),
	)
}
