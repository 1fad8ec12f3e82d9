package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quanpsy/tornamate/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchIDConflict     = errors.New("match id already exists")
	ErrMatchTeamNotFound   = errors.New("match references an unknown team or tournament")
	ErrMatchDetailsCorrupt = errors.New("stored match details are invalid")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	// ListByTournament returns matches ordered by round, then bracket index.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	AppendCommentary(ctx context.Context, exec SQLExecutor, matchID string, event models.CommentaryEvent) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, sport, team_a_id, team_b_id, start_time, location, round,
	bracket_index, next_match_id, status, score_a, score_b, winner_team_id, details, commentary`

func scanMatch(row rowScanner) (models.Match, error) {
	var (
		m          models.Match
		details    []byte
		commentary []byte
	)
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Sport, &m.TeamAID, &m.TeamBID, &m.StartTime, &m.Location, &m.Round,
		&m.BracketIndex, &m.NextMatchID, &m.Status, &m.ScoreA, &m.ScoreB, &m.WinnerTeamID, &details, &commentary,
	)
	if err != nil {
		return m, err
	}
	if len(details) > 0 {
		m.Details = &models.MatchDetails{}
		if err := json.Unmarshal(details, m.Details); err != nil {
			return m, fmt.Errorf("%w: match %s: %v", ErrMatchDetailsCorrupt, m.ID, err)
		}
	}
	m.Commentary = []models.CommentaryEvent{}
	if len(commentary) > 0 {
		if err := json.Unmarshal(commentary, &m.Commentary); err != nil {
			return m, fmt.Errorf("failed to decode commentary of match %s: %w", m.ID, err)
		}
	}
	return m, nil
}

func encodeDetails(d *models.MatchDetails) (interface{}, error) {
	if d == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match details: %w", err)
	}
	return string(raw), nil
}

func encodeCommentary(events []models.CommentaryEvent) (string, error) {
	if events == nil {
		events = []models.CommentaryEvent{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("failed to encode commentary: %w", err)
	}
	return string(raw), nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.Match) error {
	query := `
		INSERT INTO matches (
			id, tournament_id, sport, team_a_id, team_b_id, start_time, location, round,
			bracket_index, next_match_id, status, score_a, score_b, winner_team_id, details, commentary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	ex := executor(exec, r.db)
	for i := range matches {
		m := &matches[i]
		details, err := encodeDetails(m.Details)
		if err != nil {
			return err
		}
		commentary, err := encodeCommentary(m.Commentary)
		if err != nil {
			return err
		}
		if _, err := ex.ExecContext(ctx, query,
			m.ID, m.TournamentID, m.Sport, m.TeamAID, m.TeamBID, m.StartTime, m.Location, m.Round,
			m.BracketIndex, m.NextMatchID, m.Status, m.ScoreA, m.ScoreB, m.WinnerTeamID, details, commentary,
		); err != nil {
			return fmt.Errorf("failed to insert match %s: %w", m.ID, r.handleMatchError(err))
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(executor(exec, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round ASC, bracket_index ASC`

	rows, err := executor(exec, r.db).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// Update writes the mutable columns of a match: participants, schedule,
// status, scores, winner and details. Commentary is append-only and written
// through AppendCommentary.
func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	details, err := encodeDetails(m.Details)
	if err != nil {
		return err
	}
	query := `
		UPDATE matches SET
			team_a_id = $1,
			team_b_id = $2,
			start_time = $3,
			location = $4,
			status = $5,
			score_a = $6,
			score_b = $7,
			winner_team_id = $8,
			details = $9
		WHERE id = $10`

	result, err := executor(exec, r.db).ExecContext(ctx, query,
		m.TeamAID, m.TeamBID, m.StartTime, m.Location, m.Status, m.ScoreA, m.ScoreB, m.WinnerTeamID, details,
		m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) AppendCommentary(ctx context.Context, exec SQLExecutor, matchID string, event models.CommentaryEvent) error {
	raw, err := encodeCommentary([]models.CommentaryEvent{event})
	if err != nil {
		return err
	}
	query := `UPDATE matches SET commentary = commentary || $1::jsonb WHERE id = $2`
	result, err := executor(exec, r.db).ExecContext(ctx, query, raw, matchID)
	if err != nil {
		return fmt.Errorf("failed to append commentary to match %s: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrMatchIDConflict
		case pqForeignKeyViolation:
			return ErrMatchTeamNotFound
		}
	}
	return err
}
