package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/realtime"
	"github.com/quanpsy/tornamate/services"
)

type WebSocketHandler struct {
	base
	hub               *realtime.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" allows any
// origin.
func NewWebSocketHandler(hub *realtime.Hub, ts services.TournamentService, allowedOrigins []string, logger *logging.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		base:              newBase(logger),
		hub:               hub,
		tournamentService: ts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ServeWs joins the caller to the room of a tournament.
// Clients connect to /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.GetTournament(r.Context(), id); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "tournament_id", id, "error", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.TournamentRoom(id))
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()

	h.logger.DebugContext(r.Context(), "websocket client joined", "room", client.Room())
}
