package handlers

import (
	"net/http"

	"github.com/Dosada05/pokernow/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s}
}

// Shops godoc
// @Summary List shops with live occupancy
// @Tags shops
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/shops [get]
func (h *DashboardHandler) Shops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.dashboardService.ListShops(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"shops": shops}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Shop godoc
// @Summary Shop detail with live occupancy
// @Tags shops
// @Produce json
// @Param shopID path string true "Shop ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/shops/{shopID} [get]
func (h *DashboardHandler) Shop(w http.ResponseWriter, r *http.Request) {
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	shop, err := h.dashboardService.GetShop(r.Context(), shopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"shop": shop}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Dashboard godoc
// @Summary Shop dashboard
// @Tags shops
// @Produce json
// @Param shopID path string true "Shop ID"
// @Success 200 {object} models.Dashboard
// @Failure 404 {object} map[string]string
// @Router /api/shops/{shopID}/dashboard [get]
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	shopID, err := urlParam(r, "shopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(r.Context(), shopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, dashboard, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
