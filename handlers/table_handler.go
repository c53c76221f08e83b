package handlers

import (
	"net/http"

	"github.com/Dosada05/pokernow/services"
)

type TableHandler struct {
	tableService services.TableService
}

func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

// List godoc
// @Summary List tables of a shop with their head count
// @Tags tables
// @Produce json
// @Param shopID path string true "Shop ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/shops/{shopID}/tables [get]
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tables, err := h.tableService.List(r.Context(), shopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tables": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Create a table
// @Tags tables
// @Accept json
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param input body services.CreateTableInput true "Table"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Name already used"
// @Security BearerAuth
// @Router /api/shops/{shopID}/tables [post]
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateTableInput
	if !readValidJSON(w, r, &input) {
		return
	}

	table, err := h.tableService.Create(r.Context(), session, shopID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"table": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tableID, err := urlParam(r, "tableID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTableInput
	if !readValidJSON(w, r, &input) {
		return
	}

	table, err := h.tableService.Update(r.Context(), session, shopID, tableID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"table": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
