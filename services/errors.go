package services

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrInvalidJoinCode    = errors.New("join code is missing or incorrect")

	ErrTeamNameConflict = errors.New("team name is already in use in this tournament")

	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrRegistrationClosed                = errors.New("tournament is no longer accepting teams")
	ErrTournamentNotOngoing              = errors.New("tournament is not in progress")
	ErrNotEnoughTeams                    = errors.New("at least two teams are required to start a tournament")
	ErrFormatNotSupported                = errors.New("fixtures cannot be generated for this tournament format")

	ErrMatchInvalidStatusTransition = errors.New("invalid match status transition")
	ErrMatchAlreadyCompleted        = errors.New("match is already completed")
	ErrMatchParticipantsUnresolved  = errors.New("match does not have both participants yet")
	ErrWinnerNotParticipant         = errors.New("winner must be one of the match participants")
	ErrWinnerUndetermined           = errors.New("a knockout match cannot end without a winner")
	ErrWinnerContradictsResult      = errors.New("winner contradicts the recorded result")
	ErrDetailsSportMismatch         = errors.New("match details do not belong to the match sport")

	ErrSnapshotsDisabled = errors.New("snapshot export is not configured")
)
