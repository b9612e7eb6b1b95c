package floor

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

// ListTables returns the floor plan with derived occupancy.
func (frm *FloorRoutesManager) ListTables(w http.ResponseWriter, r *http.Request) {
	plan, err := frm.tableService.ListTables(r.Context())
	if err != nil {
		handling.HandleServiceError(w, err, frm.logger, "table")
		return
	}

	gecho.Success(w,
		gecho.WithData(plan),
		gecho.Send(),
	)
}

func (frm *FloorRoutesManager) AddTable(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.CreateTableRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "table")
		return
	}

	table, err := frm.tableService.AddTable(r.Context(), body)
	if err != nil {
		handling.HandleServiceError(w, err, frm.logger, "table")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.table.created"),
		gecho.WithData(table),
		gecho.Send(),
	)
}

// SetTableStatus answers 409 with the active order when freeing a busy
// table without confirm.
func (frm *FloorRoutesManager) SetTableStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "table")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.TableStatusRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "table")
		return
	}

	table, err := frm.tableService.SetTableStatus(r.Context(), id, tables.TableStatus(body.Status), body.Confirm)
	if err != nil {
		handling.HandleServiceError(w, err, frm.logger, "table")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.table.statusUpdated"),
		gecho.WithData(table),
		gecho.Send(),
	)
}

func (frm *FloorRoutesManager) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "table")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.TablePositionRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "table")
		return
	}

	if err := frm.tableService.UpdateTablePosition(r.Context(), id, body.X, body.Y); err != nil {
		handling.HandleServiceError(w, err, frm.logger, "table")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.table.moved"),
		gecho.Send(),
	)
}
