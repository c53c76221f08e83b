package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/pokernow/hub"
	"github.com/Dosada05/pokernow/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *hub.Hub
	tournamentService services.TournamentService
	dashboardService  services.DashboardService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; an empty list
// or "*" accepts any origin.
func NewWebSocketHandler(h *hub.Hub, ts services.TournamentService, ds services.DashboardService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               h,
		tournamentService: ts,
		dashboardService:  ds,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeTournament subscribes to clock updates of one tournament. The first
// frame is a SNAPSHOT of the current clock.
// Clients connect to /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, err := h.tournamentService.Get(r.Context(), "", id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, hub.TournamentRoom(id), tournament.ClockState())
}

// ServeShop subscribes to occupancy updates of a shop. The first frame is a
// SNAPSHOT of the shop dashboard.
func (h *WebSocketHandler) ServeShop(w http.ResponseWriter, r *http.Request) {
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
	h.serve(w, r, hub.ShopRoom(shopID), dashboard)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string, snapshot interface{}) {
	frame, err := json.Marshal(hub.Message{Type: hub.TypeSnapshot, Payload: snapshot, RoomID: room})
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := hub.NewClient(h.hub, conn, room)
	client.Send <- frame
	if !h.hub.Subscribe(client) {
		closeWithReason(conn, websocket.CloseGoingAway, "server shutting down")
		return
	}

	go client.WritePump()
	go client.ReadPump()
	h.logger.Debug("websocket client connected", slog.String("room", room))
}

func closeWithReason(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}
