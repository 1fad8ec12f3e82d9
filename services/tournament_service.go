package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/quanpsy/tornamate/brackets"
	"github.com/quanpsy/tornamate/db"
	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/realtime"
	"github.com/quanpsy/tornamate/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type CreateTournamentInput struct {
	Name        string        `json:"name" validate:"required,min=3,max=120"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	Sport       models.Sport  `json:"sport" validate:"required"`
	Format      models.Format `json:"format" validate:"required"`
	StartDate   time.Time     `json:"start_date" validate:"required"`
	Location    *string       `json:"location,omitempty" validate:"omitempty,max=200"`
	JoinCode    *string       `json:"join_code,omitempty" validate:"omitempty,min=4,max=32"`
}

type AddTeamInput struct {
	Name      string   `json:"name" validate:"required,min=2,max=80"`
	CaptainID *string  `json:"captain_id,omitempty" validate:"omitempty,min=1"`
	PlayerIDs []string `json:"player_ids" validate:"max=50,dive,required"`
	JoinCode  string   `json:"join_code,omitempty"`
}

type ListTournamentsInput struct {
	Status      *models.TournamentStatus
	Sport       *models.Sport
	OrganizerID *string
	Limit       int
	Offset      int
}

// TournamentDetails is a tournament with its roster and schedule.
type TournamentDetails struct {
	models.Tournament
	Matches []models.Match `json:"matches"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, organizerID string, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*TournamentDetails, error)
	ListTournaments(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error)
	AddTeam(ctx context.Context, tournamentID, userID string, input AddTeamInput) (*models.Team, error)
	StartTournament(ctx context.Context, tournamentID, userID string) (*TournamentDetails, error)
	AutoStartDueTournaments(ctx context.Context) (int, error)
	Standings(ctx context.Context, tournamentID string) ([]models.StandingsRow, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	transactor     db.Transactor
	locks          *KeyedMutex
	notifier       Notifier
	clock          clockwork.Clock
	logger         *logging.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	transactor db.Transactor,
	locks *KeyedMutex,
	notifier Notifier,
	clock clockwork.Clock,
	logger *logging.Logger,
) TournamentService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		transactor:     transactor,
		locks:          locks,
		notifier:       notifier,
		clock:          clock,
		logger:         logger.With("component", "tournament_service"),
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, organizerID string, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if organizerID == "" {
		return nil, ErrForbiddenOperation
	}
	if !input.Sport.IsValid() {
		return nil, fmt.Errorf("%w: unknown sport %q", ErrValidationFailed, input.Sport)
	}
	if !input.Format.IsValid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, input.Format)
	}
	if _, ok := brackets.GeneratorFor(input.Format); !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotSupported, input.Format)
	}

	id := uuid.NewString()
	t := &models.Tournament{
		ID:          id,
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		OrganizerID: organizerID,
		Sport:       input.Sport,
		Format:      input.Format,
		StartDate:   input.StartDate.UTC(),
		Location:    input.Location,
		Status:      models.StatusUpcoming,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if input.JoinCode != nil && *input.JoinCode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.JoinCode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash join code: %w", err)
		}
		t.JoinCodeHash = stringPtr(string(hash))
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", handleRepositoryError(err))
	}
	s.logger.InfoContext(ctx, "tournament created",
		"tournament_id", t.ID, "sport", t.Sport, "format", t.Format, "private", t.IsPrivate())
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*TournamentDetails, error) {
	var (
		tournament *models.Tournament
		teams      []models.Team
		matches    []models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, id)
		if err != nil {
			return handleRepositoryError(err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		list, err := s.teamRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		teams = list
		return nil
	})
	g.Go(func() error {
		list, err := s.matchRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		matches = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Teams = teams
	return &TournamentDetails{Tournament: *tournament, Matches: matches}, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, *input.Status)
	}
	if input.Sport != nil && !input.Sport.IsValid() {
		return nil, fmt.Errorf("%w: unknown sport %q", ErrValidationFailed, *input.Sport)
	}
	if input.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrValidationFailed)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status:      input.Status,
		Sport:       input.Sport,
		OrganizerID: input.OrganizerID,
		Limit:       limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) AddTeam(ctx context.Context, tournamentID, userID string, input AddTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrForbiddenOperation
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if t.Status != models.StatusUpcoming {
		return nil, ErrRegistrationClosed
	}
	if t.IsPrivate() && userID != t.OrganizerID {
		if input.JoinCode == "" || bcrypt.CompareHashAndPassword([]byte(*t.JoinCodeHash), []byte(input.JoinCode)) != nil {
			return nil, ErrInvalidJoinCode
		}
	}

	captainID := userID
	if input.CaptainID != nil {
		captainID = *input.CaptainID
	}
	team := &models.Team{
		ID:           uuid.NewString(),
		TournamentID: t.ID,
		Name:         input.Name,
		CaptainID:    captainID,
		PlayerIDs:    rosterWithCaptain(captainID, input.PlayerIDs),
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "team registered", "tournament_id", t.ID, "team_id", team.ID, "team_name", team.Name)
	s.notifier.Publish(t.ID, realtime.MessageTournamentUpdated, map[string]interface{}{"team_added": team})
	return team, nil
}

// rosterWithCaptain returns the player list with duplicates removed and the
// captain first.
func rosterWithCaptain(captainID string, players []string) []string {
	seen := map[string]bool{captainID: true}
	out := []string{captainID}
	for _, p := range players {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func (s *tournamentService) StartTournament(ctx context.Context, tournamentID, userID string) (*TournamentDetails, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if t.OrganizerID != userID {
		return nil, ErrForbiddenOperation
	}
	if t.Status != models.StatusUpcoming {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, models.StatusOngoing)
	}

	details, err := s.start(ctx, t)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tournament started",
		"tournament_id", t.ID, "teams", len(details.Teams), "matches", len(details.Matches))
	return details, nil
}

// start generates the fixtures and moves t to ONGOING in one transaction.
// The caller holds the tournament lock and has checked that t is UPCOMING.
func (s *tournamentService) start(ctx context.Context, t *models.Tournament) (*TournamentDetails, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, nil, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}
	generator, ok := brackets.GeneratorFor(t.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotSupported, t.Format)
	}

	t.Teams = teams
	matches := brackets.GenerateFixtures(*t)

	err = s.transactor.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusOngoing); err != nil {
			return handleRepositoryError(err)
		}
		if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
			return fmt.Errorf("failed to store fixtures: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.Status = models.StatusOngoing

	s.logger.DebugContext(ctx, "fixtures generated", "tournament_id", t.ID, "generator", generator.GetName())
	s.notifier.Publish(t.ID, realtime.MessageTournamentUpdated, t)
	s.notifier.Publish(t.ID, realtime.MessageBracketUpdated, matches)
	return &TournamentDetails{Tournament: *t, Matches: matches}, nil
}

// AutoStartDueTournaments starts every upcoming tournament whose start date
// has passed. Tournaments that cannot start yet are skipped and logged.
func (s *tournamentService) AutoStartDueTournaments(ctx context.Context) (int, error) {
	due, err := s.tournamentRepo.ListDueForStart(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list due tournaments: %w", err)
	}

	started := 0
	for _, candidate := range due {
		if ctx.Err() != nil {
			return started, ctx.Err()
		}
		ok, err := s.autoStart(ctx, candidate.ID)
		switch {
		case err == nil && ok:
			started++
		case errors.Is(err, ErrNotEnoughTeams), errors.Is(err, ErrFormatNotSupported):
			s.logger.WarnContext(ctx, "due tournament cannot start", "tournament_id", candidate.ID, "error", err)
		case err != nil:
			s.logger.ErrorContext(ctx, "auto start failed", "tournament_id", candidate.ID, "error", err)
		}
	}
	return started, nil
}

func (s *tournamentService) autoStart(ctx context.Context, tournamentID string) (bool, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return false, handleRepositoryError(err)
	}
	if t.Status != models.StatusUpcoming {
		return false, nil
	}
	if _, err := s.start(ctx, t); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "tournament auto-started", "tournament_id", t.ID)
	return true, nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID string) ([]models.StandingsRow, error) {
	details, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.CalculateStandings(details.Matches, details.Teams, details.Sport), nil
}
