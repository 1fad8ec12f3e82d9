package handlers

import (
	"fmt"
	"net/http"

	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/middleware"
	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/services"
)

type TournamentHandler struct {
	base
	tournamentService services.TournamentService
	matchService      services.MatchService
	snapshotService   services.SnapshotService
}

func NewTournamentHandler(ts services.TournamentService, ms services.MatchService, ss services.SnapshotService, logger *logging.Logger) *TournamentHandler {
	return &TournamentHandler{
		base:              newBase(logger),
		tournamentService: ts,
		matchService:      ms,
		snapshotService:   ss,
	}
}

// CreateHandler godoc
// @Summary      Create a tournament
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        input body services.CreateTournamentInput true "Tournament"
// @Success      201 {object} models.Tournament
// @Security     BearerAuth
// @Router       /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"tournament": tournament})
}

// GetByIDHandler godoc
// @Summary      Tournament with teams and matches
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "Tournament ID"
// @Success      200 {object} services.TournamentDetails
// @Router       /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	details, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournament": details})
}

// ListHandler godoc
// @Summary      List tournaments
// @Tags         tournaments
// @Produce      json
// @Param        status query string false "UPCOMING, ONGOING or COMPLETED"
// @Param        sport query string false "Sport"
// @Param        organizer_id query string false "Organizer"
// @Param        limit query int false "Page size"
// @Param        offset query int false "Offset"
// @Router       /tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var input services.ListTournamentsInput
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		if !status.IsValid() {
			h.badRequestResponse(w, r, fmt.Errorf("invalid status query parameter %q", raw))
			return
		}
		input.Status = &status
	}
	if raw := query.Get("sport"); raw != "" {
		sport := models.Sport(raw)
		if !sport.IsValid() {
			h.badRequestResponse(w, r, fmt.Errorf("invalid sport query parameter %q", raw))
			return
		}
		input.Sport = &sport
	}
	if raw := query.Get("organizer_id"); raw != "" {
		input.OrganizerID = &raw
	}

	limit, ok, err := queryInt(r, "limit", 1)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if ok {
		input.Limit = limit
	}
	offset, ok, err := queryInt(r, "offset", 0)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if ok {
		input.Offset = offset
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournaments": tournaments})
}

// AddTeamHandler godoc
// @Summary      Register a team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        tournamentID path string true "Tournament ID"
// @Param        input body services.AddTeamInput true "Team"
// @Success      201 {object} models.Team
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/teams [post]
func (h *TournamentHandler) AddTeamHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to register a team")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.AddTeamInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	team, err := h.tournamentService.AddTeam(r.Context(), id, userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"team": team})
}

// StartHandler godoc
// @Summary      Generate fixtures and start the tournament
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "Tournament ID"
// @Success      200 {object} services.TournamentDetails
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/start [post]
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to start tournament")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	details, err := h.tournamentService.StartTournament(r.Context(), id, userID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournament": details})
}

func (h *TournamentHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"matches": matches})
}

// StandingsHandler godoc
// @Summary      Points table derived from completed matches
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path string true "Tournament ID"
// @Success      200 {array} models.StandingsRow
// @Router       /tournaments/{tournamentID}/standings [get]
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.Standings(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"standings": standings})
}

// SnapshotHandler exports the tournament to object storage on demand. Only
// the organizer may trigger it.
func (h *TournamentHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to export a snapshot")
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	details, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	if details.OrganizerID != userID {
		h.mapServiceErrorToHTTP(w, r, services.ErrForbiddenOperation)
		return
	}

	location, err := h.snapshotService.Export(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"location": location})
}
