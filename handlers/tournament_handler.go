package handlers

import (
	"net/http"

	"github.com/Dosada05/pokernow/clock"
	"github.com/Dosada05/pokernow/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

type controlRequest struct {
	Action string `json:"action" validate:"required"`
}

// List godoc
// @Summary List tournaments of a shop
// @Tags tournaments
// @Produce json
// @Param shopID path string true "Shop ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/shops/{shopID}/tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.List(r.Context(), shopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Get a tournament
// @Tags tournaments
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/shops/{shopID}/tournaments/{tournamentID} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), shopID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Create a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param input body services.CreateTournamentInput true "Tournament"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Validation error or invalid blind structure"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/shops/{shopID}/tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateTournamentInput
	if !readValidJSON(w, r, &input) {
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), session, shopID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Update a tournament
// @Tags tournaments
// @Description The blind structure can only be replaced while the tournament is waiting.
// @Accept json
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param tournamentID path string true "Tournament ID"
// @Param input body services.UpdateTournamentInput true "Changes"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Tournament already started"
// @Security BearerAuth
// @Router /api/shops/{shopID}/tournaments/{tournamentID} [put]
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if !readValidJSON(w, r, &input) {
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), session, shopID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Control godoc
// @Summary Drive the tournament clock
// @Tags tournaments
// @Description action is one of start, pause, resume, break, next, end.
// @Accept json
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param tournamentID path string true "Tournament ID"
// @Param input body controlRequest true "Action"
// @Success 200 {object} map[string]interface{} "Clock state"
// @Failure 400 {object} map[string]string "Unknown action"
// @Failure 409 {object} map[string]string "Action not allowed in the current state"
// @Security BearerAuth
// @Router /api/shops/{shopID}/tournaments/{tournamentID}/control [post]
func (h *TournamentHandler) Control(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input controlRequest
	if !readValidJSON(w, r, &input) {
		return
	}
	action, err := clock.ParseAction(input.Action)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Control(r.Context(), session, shopID, id, action)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament.ClockState()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
