package memory

import (
	"context"
	"sort"

	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/repositories"
)

type MatchRepository struct {
	store *Store
}

var _ repositories.MatchRepository = (*MatchRepository)(nil)

func (r *MatchRepository) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, m := range matches {
		if _, exists := r.store.matches[m.ID]; exists {
			return repositories.ErrMatchIDConflict
		}
	}
	for _, m := range matches {
		r.store.matches[m.ID] = cloneMatch(m)
	}
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := cloneMatch(m)
	return &copied, nil
}

func (r *MatchRepository) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]models.Match, 0)
	for _, m := range r.store.matches {
		if m.TournamentID == tournamentID {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].BracketIndex < out[j].BracketIndex
	})
	return out, nil
}

func (r *MatchRepository) Update(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	updated := cloneMatch(*m)
	updated.Commentary = stored.Commentary
	updated.TournamentID = stored.TournamentID
	updated.Sport = stored.Sport
	updated.Round = stored.Round
	updated.BracketIndex = stored.BracketIndex
	updated.NextMatchID = stored.NextMatchID
	r.store.matches[m.ID] = updated
	return nil
}

func (r *MatchRepository) AppendCommentary(_ context.Context, _ repositories.SQLExecutor, matchID string, event models.CommentaryEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	event.TeamID = cloneString(event.TeamID)
	m.Commentary = append(m.Commentary, event)
	r.store.matches[matchID] = m
	return nil
}
