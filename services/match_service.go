package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/quanpsy/tornamate/brackets"
	"github.com/quanpsy/tornamate/db"
	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/realtime"
	"github.com/quanpsy/tornamate/repositories"
)

type UpdateMatchInput struct {
	ScoreA    *string              `json:"score_a,omitempty" validate:"omitempty,max=64"`
	ScoreB    *string              `json:"score_b,omitempty" validate:"omitempty,max=64"`
	Status    *models.MatchStatus  `json:"status,omitempty"`
	Details   *models.MatchDetails `json:"details,omitempty"`
	StartTime *time.Time           `json:"start_time,omitempty"`
	Location  *string              `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
}

type CompleteMatchInput struct {
	WinnerTeamID *string              `json:"winner_team_id,omitempty"`
	ScoreA       *string              `json:"score_a,omitempty" validate:"omitempty,max=64"`
	ScoreB       *string              `json:"score_b,omitempty" validate:"omitempty,max=64"`
	Details      *models.MatchDetails `json:"details,omitempty"`
}

type CommentaryInput struct {
	Text   string                `json:"text" validate:"required,max=500"`
	Type   models.CommentaryType `json:"type,omitempty"`
	TeamID *string               `json:"team_id,omitempty"`
}

type CompleteMatchResult struct {
	Match               models.Match  `json:"match"`
	NextMatch           *models.Match `json:"next_match,omitempty"`
	TournamentCompleted bool          `json:"tournament_completed"`
}

type MatchService interface {
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID string) ([]models.Match, error)
	UpdateMatch(ctx context.Context, matchID, userID string, input UpdateMatchInput) (*models.Match, error)
	CompleteMatch(ctx context.Context, matchID, userID string, input CompleteMatchInput) (*CompleteMatchResult, error)
	AddCommentary(ctx context.Context, matchID, userID string, input CommentaryInput) (*models.CommentaryEvent, error)
}

// SnapshotExporter is invoked once a tournament completes.
type SnapshotExporter interface {
	Export(ctx context.Context, tournamentID string) (string, error)
}

type matchService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	transactor     db.Transactor
	locks          *KeyedMutex
	notifier       Notifier
	snapshots      SnapshotExporter
	clock          clockwork.Clock
	logger         *logging.Logger
}

func NewMatchService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	transactor db.Transactor,
	locks *KeyedMutex,
	notifier Notifier,
	snapshots SnapshotExporter,
	clock clockwork.Clock,
	logger *logging.Logger,
) MatchService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &matchService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		transactor:     transactor,
		locks:          locks,
		notifier:       notifier,
		snapshots:      snapshots,
		clock:          clock,
		logger:         logger.With("component", "match_service"),
	}
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return m, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID string) ([]models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// lockMatch resolves the tournament of matchID, locks it, and reloads the
// match and tournament under the lock. The caller must call the returned
// unlock function.
func (s *matchService) lockMatch(ctx context.Context, matchID, userID string) (*models.Match, *models.Tournament, func(), error) {
	current, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, nil, nil, handleRepositoryError(err)
	}

	unlock := s.locks.Lock(current.TournamentID)
	fail := func(err error) (*models.Match, *models.Tournament, func(), error) {
		unlock()
		return nil, nil, nil, err
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, current.TournamentID)
	if err != nil {
		return fail(handleRepositoryError(err))
	}
	if t.OrganizerID != userID {
		return fail(ErrForbiddenOperation)
	}
	if t.Status != models.StatusOngoing {
		return fail(ErrTournamentNotOngoing)
	}
	m, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return fail(handleRepositoryError(err))
	}
	return m, t, unlock, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, matchID, userID string, input UpdateMatchInput) (*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	m, _, unlock, err := s.lockMatch(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if m.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if input.Status != nil {
		next := *input.Status
		if !next.IsValid() || next == models.MatchStatusCompleted || !isValidMatchStatusTransition(m.Status, next) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrMatchInvalidStatusTransition, m.Status, next)
		}
		if next == models.MatchStatusLive && !m.HasBothTeams() {
			return nil, ErrMatchParticipantsUnresolved
		}
		m.Status = next
	}
	if err := checkDetails(m.Sport, input.Details); err != nil {
		return nil, err
	}
	if input.Details != nil {
		m.Details = input.Details
	}
	if input.ScoreA != nil {
		m.ScoreA = strings.TrimSpace(*input.ScoreA)
	}
	if input.ScoreB != nil {
		m.ScoreB = strings.TrimSpace(*input.ScoreB)
	}
	if input.StartTime != nil {
		m.StartTime = input.StartTime.UTC()
	}
	if input.Location != nil {
		m.Location = strings.TrimSpace(*input.Location)
	}

	if err := s.matchRepo.Update(ctx, nil, m); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", handleRepositoryError(err))
	}

	s.logger.DebugContext(ctx, "match updated", "match_id", m.ID, "status", m.Status, "score_a", m.ScoreA, "score_b", m.ScoreB)
	s.notifier.Publish(m.TournamentID, realtime.MessageMatchUpdated, m)
	return m, nil
}

func (s *matchService) CompleteMatch(ctx context.Context, matchID, userID string, input CompleteMatchInput) (*CompleteMatchResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	result, bracket, err := s.completeLocked(ctx, matchID, userID, input)
	if err != nil {
		return nil, err
	}

	tournamentID := result.Match.TournamentID
	s.notifier.Publish(tournamentID, realtime.MessageMatchUpdated, result.Match)
	s.notifier.Publish(tournamentID, realtime.MessageBracketUpdated, bracket)

	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		s.logger.WarnContext(ctx, "standings not broadcast", "tournament_id", tournamentID, "error", err)
	} else {
		s.notifier.Publish(tournamentID, realtime.MessageStandingsUpdated,
			brackets.CalculateStandings(bracket, teams, result.Match.Sport))
	}

	if result.TournamentCompleted {
		s.notifier.Publish(tournamentID, realtime.MessageTournamentUpdated,
			map[string]interface{}{"id": tournamentID, "status": models.StatusCompleted})
		s.exportSnapshot(ctx, tournamentID)
	}
	return result, nil
}

func (s *matchService) completeLocked(ctx context.Context, matchID, userID string, input CompleteMatchInput) (*CompleteMatchResult, []models.Match, error) {
	m, t, unlock, err := s.lockMatch(ctx, matchID, userID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	if m.Status == models.MatchStatusCompleted {
		return nil, nil, ErrMatchAlreadyCompleted
	}

	all, err := s.matchRepo.ListByTournament(ctx, nil, t.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bracket: %w", err)
	}
	walkover := false
	if !m.HasBothTeams() {
		if (m.TeamAID == nil && m.TeamBID == nil) || !openSlotClosed(*m, all) {
			return nil, nil, ErrMatchParticipantsUnresolved
		}
		walkover = true
	}
	if err := checkDetails(m.Sport, input.Details); err != nil {
		return nil, nil, err
	}
	if input.Details != nil {
		m.Details = input.Details
	}
	if input.ScoreA != nil {
		m.ScoreA = strings.TrimSpace(*input.ScoreA)
	}
	if input.ScoreB != nil {
		m.ScoreB = strings.TrimSpace(*input.ScoreB)
	}

	var winner *string
	if walkover {
		winner, err = walkoverWinner(*m, input.WinnerTeamID)
	} else {
		winner, err = decideWinner(*m, t.Format, input.WinnerTeamID)
	}
	if err != nil {
		return nil, nil, err
	}
	m.WinnerTeamID = winner
	m.Status = models.MatchStatusCompleted

	for i := range all {
		if all[i].ID == m.ID {
			all[i] = *m
		}
	}

	var next *models.Match
	if winner != nil && m.NextMatchID != nil {
		all = brackets.AdvanceBracket(*m, *winner, all)
		for i := range all {
			if all[i].ID == *m.NextMatchID {
				next = &all[i]
			}
		}
		if next == nil {
			s.logger.WarnContext(ctx, "next match missing from bracket", "match_id", m.ID, "next_match_id", *m.NextMatchID)
		}
	}

	completed := tournamentFinished(*m, t.Format, all)

	err = s.transactor.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.matchRepo.Update(ctx, tx, m); err != nil {
			return handleRepositoryError(err)
		}
		if next != nil {
			if err := s.matchRepo.Update(ctx, tx, next); err != nil {
				return fmt.Errorf("failed to advance winner: %w", handleRepositoryError(err))
			}
		}
		if completed {
			if err := s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusCompleted); err != nil {
				return handleRepositoryError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "match completed",
		"tournament_id", t.ID, "match_id", m.ID, "winner_team_id", derefString(winner),
		"walkover", walkover, "tournament_completed", completed)

	result := &CompleteMatchResult{Match: *m, TournamentCompleted: completed}
	if next != nil {
		copied := *next
		result.NextMatch = &copied
	}
	return result, all, nil
}

// decideWinner returns the side ahead on the match result. An explicit
// winner must agree with a decisive result and settles a level one, such as
// a penalty shoot-out. Level results without one are draws in leagues and an
// error in knockouts.
func decideWinner(m models.Match, format models.Format, explicit *string) (*string, error) {
	if explicit != nil && !m.HasTeam(*explicit) {
		return nil, ErrWinnerNotParticipant
	}

	var ahead *string
	a, b, _ := brackets.MatchResult(m, m.Sport)
	switch {
	case a > b:
		ahead = m.TeamAID
	case b > a:
		ahead = m.TeamBID
	}
	if ahead != nil {
		if explicit != nil && *explicit != *ahead {
			return nil, fmt.Errorf("%w: %s-%s", ErrWinnerContradictsResult, m.ScoreA, m.ScoreB)
		}
		return stringPtr(*ahead), nil
	}
	if explicit != nil {
		return stringPtr(*explicit), nil
	}
	if format == models.FormatKnockout || m.NextMatchID != nil {
		return nil, ErrWinnerUndetermined
	}
	return nil, nil
}

// walkoverWinner returns the lone team of a match whose other slot can no
// longer be filled.
func walkoverWinner(m models.Match, explicit *string) (*string, error) {
	lone := m.TeamAID
	if lone == nil {
		lone = m.TeamBID
	}
	if explicit != nil && *explicit != *lone {
		return nil, ErrWinnerNotParticipant
	}
	return stringPtr(*lone), nil
}

// openSlotClosed reports whether the empty slot of m will never receive a
// team: nothing feeds it, or the match feeding it cannot produce a winner.
func openSlotClosed(m models.Match, all []models.Match) bool {
	feeder := feederOf(m.ID, m.TeamAID == nil, all)
	return feeder == nil || !canProduceWinner(*feeder, all)
}

// feederOf finds the match whose winner moves into slot A (even bracket
// index) or slot B (odd) of matchID.
func feederOf(matchID string, slotA bool, all []models.Match) *models.Match {
	for i := range all {
		f := all[i]
		if f.NextMatchID != nil && *f.NextMatchID == matchID && (f.BracketIndex%2 == 0) == slotA {
			return &all[i]
		}
	}
	return nil
}

func canProduceWinner(m models.Match, all []models.Match) bool {
	if m.Status == models.MatchStatusCompleted {
		return m.WinnerTeamID != nil
	}
	if m.TeamAID != nil || m.TeamBID != nil {
		return true
	}
	for _, slotA := range []bool{true, false} {
		if f := feederOf(m.ID, slotA, all); f != nil && canProduceWinner(*f, all) {
			return true
		}
	}
	return false
}

// tournamentFinished reports whether completing m ends the tournament: the
// final of a knockout, or the last open match of a league.
func tournamentFinished(m models.Match, format models.Format, all []models.Match) bool {
	if format == models.FormatKnockout {
		return m.NextMatchID == nil
	}
	for _, other := range all {
		if other.Status != models.MatchStatusCompleted {
			return false
		}
	}
	return true
}

func (s *matchService) exportSnapshot(ctx context.Context, tournamentID string) {
	if s.snapshots == nil {
		return
	}
	location, err := s.snapshots.Export(ctx, tournamentID)
	switch {
	case errors.Is(err, ErrSnapshotsDisabled):
		s.logger.DebugContext(ctx, "snapshot export skipped", "tournament_id", tournamentID)
	case err != nil:
		s.logger.ErrorContext(ctx, "snapshot export failed", "tournament_id", tournamentID, "error", err)
	default:
		s.logger.InfoContext(ctx, "snapshot exported", "tournament_id", tournamentID, "location", location)
	}
}

func (s *matchService) AddCommentary(ctx context.Context, matchID, userID string, input CommentaryInput) (*models.CommentaryEvent, error) {
	input.Text = strings.TrimSpace(input.Text)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Type == "" {
		input.Type = models.CommentaryInfo
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown commentary type %q", ErrValidationFailed, input.Type)
	}

	m, _, unlock, err := s.lockMatch(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if input.TeamID != nil && !m.HasTeam(*input.TeamID) {
		return nil, fmt.Errorf("%w: team %s is not playing this match", ErrValidationFailed, *input.TeamID)
	}

	event := models.CommentaryEvent{
		ID:        uuid.NewString(),
		Timestamp: s.clock.Now().UTC(),
		Text:      input.Text,
		Type:      input.Type,
		TeamID:    input.TeamID,
	}
	if err := s.matchRepo.AppendCommentary(ctx, nil, m.ID, event); err != nil {
		return nil, fmt.Errorf("failed to add commentary: %w", handleRepositoryError(err))
	}

	s.notifier.Publish(m.TournamentID, realtime.MessageCommentaryAdded,
		map[string]interface{}{"match_id": m.ID, "event": event})
	return &event, nil
}
