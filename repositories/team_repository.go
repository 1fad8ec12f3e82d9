package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/quanpsy/tornamate/models"
)

var (
	ErrTeamNotFound           = errors.New("team not found")
	ErrTeamNameConflict       = errors.New("team name already taken in this tournament")
	ErrTeamTournamentNotFound = errors.New("team references an unknown tournament")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	// ListByTournament returns teams in registration order.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, tournament_id, name, captain_id, player_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	playerIDs := team.PlayerIDs
	if playerIDs == nil {
		playerIDs = []string{}
	}
	err := r.db.QueryRowContext(ctx, query,
		team.ID, team.TournamentID, team.Name, team.CaptainID, pq.Array(playerIDs),
	).Scan(&team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, tournament_id, name, captain_id, player_ids, created_at
		FROM teams
		WHERE id = $1`

	var team models.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.TournamentID, &team.Name, &team.CaptainID, pq.Array(&team.PlayerIDs), &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return &team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Team, error) {
	query := `
		SELECT id, tournament_id, name, captain_id, player_ids, created_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := executor(exec, r.db).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID, &team.TournamentID, &team.Name, &team.CaptainID, pq.Array(&team.PlayerIDs), &team.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team: %w", scanErr)
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == "uq_teams_tournament_name" {
				return ErrTeamNameConflict
			}
		case pqForeignKeyViolation:
			return ErrTeamTournamentNotFound
		}
	}
	return err
}
