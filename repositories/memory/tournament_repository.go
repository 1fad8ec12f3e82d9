package memory

import (
	"context"
	"sort"
	"time"

	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/repositories"
)

type TournamentRepository struct {
	store *Store
}

var _ repositories.TournamentRepository = (*TournamentRepository)(nil)

func (r *TournamentRepository) Create(_ context.Context, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.tournaments[t.ID]; exists {
		return repositories.ErrTournamentIDConflict
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	r.store.tournaments[t.ID] = cloneTournament(*t)
	return nil
}

func (r *TournamentRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := cloneTournament(t)
	return &copied, nil
}

func (r *TournamentRepository) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]models.Tournament, 0, len(r.store.tournaments))
	for _, t := range r.store.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Sport != nil && t.Sport != *filter.Sport {
			continue
		}
		if filter.OrganizerID != nil && t.OrganizerID != *filter.OrganizerID {
			continue
		}
		out = append(out, cloneTournament(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []models.Tournament{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *TournamentRepository) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.store.tournaments[id] = t
	return nil
}

func (r *TournamentRepository) ListDueForStart(_ context.Context, now time.Time) ([]models.Tournament, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]models.Tournament, 0)
	for _, t := range r.store.tournaments {
		if t.Status == models.StatusUpcoming && !t.StartDate.After(now) {
			out = append(out, cloneTournament(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
