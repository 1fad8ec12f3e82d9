package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/repositories"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and reports failures as
// ErrValidationFailed.
func validateInput(in interface{}) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid %s", ErrValidationFailed, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}

// handleRepositoryError translates repository sentinels into service ones.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound), errors.Is(err, repositories.ErrTeamTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	}
	return err
}

func isValidMatchStatusTransition(current, next models.MatchStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.MatchStatus][]models.MatchStatus{
		models.MatchStatusScheduled: {models.MatchStatusLive},
		models.MatchStatusLive:      {models.MatchStatusPaused},
		models.MatchStatusPaused:    {models.MatchStatusLive},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func checkDetails(sport models.Sport, details *models.MatchDetails) error {
	if details == nil {
		return nil
	}
	if err := details.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if !sport.AcceptsDetails(details.Kind) {
		return fmt.Errorf("%w: %s details on a %s match", ErrDetailsSportMismatch, details.Kind, sport)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringPtr(s string) *string { return &s }
