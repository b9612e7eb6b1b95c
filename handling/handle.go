package handling

import (
	"errors"
	"net/http"
	"tableside_server/lib"

	"github.com/MonkyMars/gecho"
)

func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) error {
	logger.Error("An error occurred", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))

	return gecho.InternalServerError(w, gecho.Send())
}

// HandleServiceError maps a service error onto a response. area prefixes
// the message key, e.g. "order" gives "error.order.notFound".
func HandleServiceError(w http.ResponseWriter, err error, logger *gecho.Logger, area string) {
	var (
		ve *lib.ValidationError
		te *lib.TransitionError
		ce *lib.ConfirmationError
		oe *lib.OccupancyError
		pe *lib.PresentationError
	)

	switch {
	case errors.As(err, &ve):
		gecho.BadRequest(w,
			gecho.WithMessage("error."+area+".invalid"),
			gecho.WithData(ve),
			gecho.Send(),
		)
	case errors.As(err, &oe):
		// Checked before the sentinels it may wrap
		logger.Warn("Partial occupancy update",
			gecho.Field("table_id", oe.TableId),
			gecho.Field("order_id", oe.OrderId),
			gecho.Field("error", oe.Err),
		)
		gecho.Conflict(w,
			gecho.WithMessage("error."+area+".partialUpdate"),
			gecho.WithData(map[string]any{
				"order_id":        oe.OrderId,
				"table_id":        oe.TableId,
				"order_completed": oe.OrderCompleted,
				"error":           oe.Err.Error(),
			}),
			gecho.Send(),
		)
	case errors.As(err, &ce):
		gecho.Conflict(w,
			gecho.WithMessage("error."+area+".confirmationRequired"),
			gecho.WithData(map[string]any{
				"table_id":     ce.TableId,
				"order_id":     ce.OrderId,
				"order_number": ce.OrderNum,
			}),
			gecho.Send(),
		)
	case errors.As(err, &te):
		gecho.Conflict(w,
			gecho.WithMessage("error."+area+".invalidTransition"),
			gecho.WithData(map[string]string{"from": te.From, "to": te.To}),
			gecho.Send(),
		)
	case errors.Is(err, lib.ErrNotFound):
		gecho.NotFound(w,
			gecho.WithMessage("error."+area+".notFound"),
			gecho.Send(),
		)
	case errors.Is(err, lib.ErrTableBusy):
		gecho.Conflict(w,
			gecho.WithMessage("error."+area+".tableBusy"),
			gecho.Send(),
		)
	case errors.Is(err, lib.ErrConflict):
		gecho.Conflict(w,
			gecho.WithMessage("error."+area+".conflict"),
			gecho.Send(),
		)
	case errors.As(err, &pe):
		logger.Warn("Presentation sink unavailable", gecho.Field("sink", pe.Sink), gecho.Field("error", pe.Err))
		gecho.ServiceUnavailable(w,
			gecho.WithMessage("error."+area+".unavailable"),
			gecho.WithData(map[string]string{"sink": pe.Sink}),
			gecho.Send(),
		)
	default:
		logger.Error("Request failed", gecho.Field("area", area), gecho.Field("error", err), gecho.WithCallerSkip(3))
		gecho.InternalServerError(w,
			gecho.WithMessage("error."+area+".failed"),
			gecho.WithData(map[string]string{"error": err.Error()}),
			gecho.Send(),
		)
	}
}

// HandleBodyError answers a body that failed to decode or validate.
func HandleBodyError(w http.ResponseWriter, err error, area string) {
	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		gecho.BadRequest(w,
			gecho.WithMessage("error."+area+".invalidRequestBody"),
			gecho.WithData(ve),
			gecho.Send(),
		)
		return
	}
	gecho.BadRequest(w,
		gecho.WithMessage("error."+area+".invalidRequestBody"),
		gecho.WithData(map[string]string{"error": err.Error()}),
		gecho.Send(),
	)
}

// HandleParamError answers a malformed path or query parameter.
func HandleParamError(w http.ResponseWriter, err error, area string) {
	gecho.BadRequest(w,
		gecho.WithMessage("error."+area+".invalidParameters"),
		gecho.WithData(map[string]string{"error": err.Error()}),
		gecho.Send(),
	)
}
