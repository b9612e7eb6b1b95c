package floor

import (
	"net/http"
	"tableside_server/handling"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
)

func (frm *FloorRoutesManager) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := frm.tableService.ListSections(r.Context())
	if err != nil {
		handling.HandleServiceError(w, err, frm.logger, "section")
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"sections": sections}),
		gecho.Send(),
	)
}

func (frm *FloorRoutesManager) AddSection(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.SectionRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "section")
		return
	}

	section, err := frm.tableService.AddSection(r.Context(), body.Name)
	if err != nil {
		handling.HandleServiceError(w, err, frm.logger, "section")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.section.created"),
		gecho.WithData(section),
		gecho.Send(),
	)
}

func (frm *FloorRoutesManager) RenameSection(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		handling.HandleParamError(w, err, "section")
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.SectionRequest](r)
	if err != nil {
		handling.HandleBodyError(w, err, "section")
		return
	}

	if err := frm.tableService.RenameSection(r.Context(), id, body.Name); err != nil {
		handling.HandleServiceError(w, err, frm.logger, "section")
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.section.renamed"),
		gecho.Send(),
	)
}
