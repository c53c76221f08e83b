package handlers

import (
	"net/http"

	"github.com/Dosada05/pokernow/services"
)

type SeatingHandler struct {
	seatingService services.SeatingService
}

func NewSeatingHandler(ss services.SeatingService) *SeatingHandler {
	return &SeatingHandler{seatingService: ss}
}

// CheckIn godoc
// @Summary Check in to a table
// @Tags seatings
// @Accept json
// @Produce json
// @Param input body services.CheckInInput true "Table and optional seat"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "AlreadySeated, TableUnavailable, TableFull or SeatTaken"
// @Security BearerAuth
// @Router /api/seatings [post]
func (h *SeatingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input services.CheckInInput
	if !readValidJSON(w, r, &input) {
		return
	}

	seating, err := h.seatingService.CheckIn(r.Context(), session, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"seating": seating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckOut godoc
// @Summary Leave the table
// @Tags seatings
// @Produce json
// @Param seatingID path string true "Seating ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "No such active seating for the caller"
// @Security BearerAuth
// @Router /api/seatings/{seatingID} [delete]
func (h *SeatingHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	seatingID, err := urlParam(r, "seatingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seating, err := h.seatingService.CheckOut(r.Context(), session, seatingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seating": seating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ForceCheckOut ends someone else's seating from the floor.
func (h *SeatingHandler) ForceCheckOut(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	seatingID, err := urlParam(r, "seatingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seating, err := h.seatingService.ForceCheckOut(r.Context(), session, seatingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seating": seating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeatingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	seating, err := h.seatingService.MySeating(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seating": seating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TableSeatings godoc
// @Summary Players seated at a table
// @Tags seatings
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param tableID path string true "Table ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/shops/{shopID}/tables/{tableID}/seatings [get]
func (h *SeatingHandler) TableSeatings(w http.ResponseWriter, r *http.Request) {
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

	seatings, err := h.seatingService.TableSeatings(r.Context(), shopID, tableID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seatings": seatings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Evacuate godoc
// @Summary Check everyone out of a table
// @Tags seatings
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param tableID path string true "Table ID"
// @Success 200 {object} map[string]int "released"
// @Security BearerAuth
// @Router /api/shops/{shopID}/tables/{tableID}/seatings [delete]
func (h *SeatingHandler) Evacuate(w http.ResponseWriter, r *http.Request) {
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

	released, err := h.seatingService.EvacuateTable(r.Context(), session, shopID, tableID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"released": released}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
