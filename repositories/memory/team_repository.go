package memory

import (
	"context"
	"time"

	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/repositories"
)

type TeamRepository struct {
	store *Store
}

var _ repositories.TeamRepository = (*TeamRepository)(nil)

func (r *TeamRepository) Create(_ context.Context, team *models.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tournaments[team.TournamentID]; !ok {
		return repositories.ErrTeamTournamentNotFound
	}
	for _, existing := range r.store.teams {
		if existing.TournamentID == team.TournamentID && existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	r.store.teams[team.ID] = cloneTeam(*team)
	r.store.teamOrder = append(r.store.teamOrder, team.ID)
	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, id string) (*models.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	team, ok := r.store.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := cloneTeam(team)
	return &copied, nil
}

func (r *TeamRepository) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]models.Team, 0)
	for _, id := range r.store.teamOrder {
		if team := r.store.teams[id]; team.TournamentID == tournamentID {
			out = append(out, cloneTeam(team))
		}
	}
	return out, nil
}
