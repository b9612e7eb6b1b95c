package orders

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
)

// GetInvoice renders the invoice as HTML, or as JSON with ?format=json.
func (orm *OrderRoutesManager) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "invoice")
		return
	}

	if r.URL.Query().Get("format") == "json" {
		invoice, err := orm.invoiceService.GetInvoice(r.Context(), id)
		if err != nil {
			handling.HandleServiceError(w, err, orm.logger, "invoice")
			return
		}
		gecho.Success(w,
			gecho.WithData(invoice),
			gecho.Send(),
		)
		return
	}

	html, err := orm.invoiceService.RenderInvoiceHTML(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(w, err, orm.logger, "invoice")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		orm.logger.Warn("Failed to write invoice", gecho.Field("order_id", id), gecho.Field("error", err))
	}
}

func (orm *OrderRoutesManager) EmailInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "invoice")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.EmailInvoiceRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "invoice")
		return
	}

	if err := orm.invoiceService.EmailInvoice(r.Context(), id, body.Email); err != nil {
		handling.HandleServiceError(w, err, orm.logger, "invoice")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.invoice.sent"),
		gecho.Send(),
	)
}
