package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/quanpsy/tornamate/models"
)

// Store keeps tournaments, teams and matches in process memory. Its
// repositories share one lock, and WithinTx restores the previous state
// when the callback fails.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	tournaments map[string]models.Tournament
	teams       map[string]models.Team
	teamOrder   []string
	matches     map[string]models.Match
}

func NewStore() *Store {
	return &Store{
		tournaments: make(map[string]models.Tournament),
		teams:       make(map[string]models.Team),
		matches:     make(map[string]models.Match),
	}
}

func (s *Store) Tournaments() *TournamentRepository { return &TournamentRepository{store: s} }
func (s *Store) Teams() *TeamRepository             { return &TeamRepository{store: s} }
func (s *Store) Matches() *MatchRepository          { return &MatchRepository{store: s} }

// WithinTx runs fn with a nil transaction. Transactions are serialized.
func (s *Store) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeState struct {
	tournaments map[string]models.Tournament
	teams       map[string]models.Team
	teamOrder   []string
	matches     map[string]models.Match
}

func (s *Store) snapshot() storeState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := storeState{
		tournaments: make(map[string]models.Tournament, len(s.tournaments)),
		teams:       make(map[string]models.Team, len(s.teams)),
		teamOrder:   append([]string(nil), s.teamOrder...),
		matches:     make(map[string]models.Match, len(s.matches)),
	}
	for k, v := range s.tournaments {
		st.tournaments[k] = cloneTournament(v)
	}
	for k, v := range s.teams {
		st.teams[k] = cloneTeam(v)
	}
	for k, v := range s.matches {
		st.matches[k] = cloneMatch(v)
	}
	return st
}

func (s *Store) restore(st storeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments = st.tournaments
	s.teams = st.teams
	s.teamOrder = st.teamOrder
	s.matches = st.matches
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTournament(t models.Tournament) models.Tournament {
	copied := t
	copied.Description = cloneString(t.Description)
	copied.Location = cloneString(t.Location)
	copied.JoinCodeHash = cloneString(t.JoinCodeHash)
	copied.Teams = nil
	return copied
}

func cloneTeam(t models.Team) models.Team {
	copied := t
	copied.PlayerIDs = append([]string{}, t.PlayerIDs...)
	return copied
}

func cloneMatch(m models.Match) models.Match {
	copied := m
	copied.TeamAID = cloneString(m.TeamAID)
	copied.TeamBID = cloneString(m.TeamBID)
	copied.NextMatchID = cloneString(m.NextMatchID)
	copied.WinnerTeamID = cloneString(m.WinnerTeamID)
	copied.Details = cloneDetails(m.Details)
	copied.Commentary = make([]models.CommentaryEvent, len(m.Commentary))
	for i, e := range m.Commentary {
		e.TeamID = cloneString(e.TeamID)
		copied.Commentary[i] = e
	}
	return copied
}

func cloneDetails(d *models.MatchDetails) *models.MatchDetails {
	if d == nil {
		return nil
	}
	copied := *d
	if d.Cricket != nil {
		c := *d.Cricket
		c.Innings = append([]models.CricketInnings(nil), d.Cricket.Innings...)
		copied.Cricket = &c
	}
	if d.Football != nil {
		f := *d.Football
		copied.Football = &f
	}
	if d.Sets != nil {
		s := *d.Sets
		s.Sets = append([]models.SetScore(nil), d.Sets.Sets...)
		copied.Sets = &s
	}
	if d.Kabaddi != nil {
		k := *d.Kabaddi
		copied.Kabaddi = &k
	}
	return &copied
}
