package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/services"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func getIDFromURL(r *http.Request, param string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, param))
	if id == "" {
		return "", fmt.Errorf("missing %s in path", param)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, min int) (int, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return 0, false, fmt.Errorf("invalid %s query parameter", key)
	}
	return v, true, nil
}

// base carries the response helpers shared by every handler.
type base struct {
	logger *logging.Logger
}

func newBase(logger *logging.Logger) base {
	if logger == nil {
		logger = logging.NewNop()
	}
	return base{logger: logger}
}

func (b base) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data, nil); err != nil {
		b.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

func (b base) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	b.respond(w, r, status, jsonResponse{"error": message})
}

func (b base) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.ErrorContext(r.Context(), "internal server error",
		"error", err, "method", r.Method, "path", r.URL.Path)
	b.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (b base) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	b.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (b base) unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	b.errorResponse(w, r, http.StatusUnauthorized, message)
}

// mapServiceErrorToHTTP writes the response for an error returned by the
// service layer.
func (b base) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMatchNotFound):
		b.errorResponse(w, r, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrValidationFailed):
		b.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, services.ErrDetailsSportMismatch),
		errors.Is(err, services.ErrWinnerNotParticipant),
		errors.Is(err, services.ErrWinnerContradictsResult),
		errors.Is(err, services.ErrFormatNotSupported),
		errors.Is(err, services.ErrNotEnoughTeams):
		b.badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrInvalidJoinCode):
		b.errorResponse(w, r, http.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrTournamentInvalidStatusTransition),
		errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrTournamentNotOngoing),
		errors.Is(err, services.ErrMatchInvalidStatusTransition),
		errors.Is(err, services.ErrMatchAlreadyCompleted),
		errors.Is(err, services.ErrMatchParticipantsUnresolved),
		errors.Is(err, services.ErrWinnerUndetermined):
		b.errorResponse(w, r, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrSnapshotsDisabled):
		b.errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		b.serverErrorResponse(w, r, err)
	}
}
