package handlers

import (
	"net/http"

	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/middleware"
	"github.com/quanpsy/tornamate/services"
)

type MatchHandler struct {
	base
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService, logger *logging.Logger) *MatchHandler {
	return &MatchHandler{base: newBase(logger), matchService: ms}
}

func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// UpdateHandler godoc
// @Summary      Update live score, status, details, time or venue
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID path string true "Match ID"
// @Param        input body services.UpdateMatchInput true "Changes"
// @Success      200 {object} models.Match
// @Security     BearerAuth
// @Router       /matches/{matchID} [patch]
func (h *MatchHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to update match")
		return
	}
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), id, userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// CompleteHandler godoc
// @Summary      Record the final result and advance the winner
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID path string true "Match ID"
// @Param        input body services.CompleteMatchInput true "Result"
// @Success      200 {object} services.CompleteMatchResult
// @Security     BearerAuth
// @Router       /matches/{matchID}/complete [post]
func (h *MatchHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to complete match")
		return
	}
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.CompleteMatchInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.CompleteMatch(r.Context(), id, userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result)
}

func (h *MatchHandler) AddCommentaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to add commentary")
		return
	}
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.CommentaryInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	event, err := h.matchService.AddCommentary(r.Context(), id, userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"event": event})
}
