package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/repositories/memory"
	"github.com/quanpsy/tornamate/storage"
)

const organizer = "user-organizer"

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type published struct {
	TournamentID string
	Type         string
	Payload      interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(tournamentID, messageType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{tournamentID, messageType, payload})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploads == nil {
		u.uploads = make(map[string][]byte)
	}
	u.uploads[key] = body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

type testEnv struct {
	store       *memory.Store
	clock       *clockwork.FakeClock
	notifier    *recordingNotifier
	uploader    *fakeUploader
	tournaments TournamentService
	matches     MatchService
	snapshots   SnapshotService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	clock := clockwork.NewFakeClockAt(fixedNow)
	notifier := &recordingNotifier{}
	uploader := &fakeUploader{}
	locks := NewKeyedMutex()
	logger := logging.NewNop()

	tournaments := NewTournamentService(store.Tournaments(), store.Teams(), store.Matches(), store, locks, notifier, clock, logger)
	snapshots := NewSnapshotService(tournaments, uploader, clock, logger)
	matches := NewMatchService(store.Tournaments(), store.Teams(), store.Matches(), store, locks, notifier, snapshots, clock, logger)

	return &testEnv{
		store:       store,
		clock:       clock,
		notifier:    notifier,
		uploader:    uploader,
		tournaments: tournaments,
		matches:     matches,
		snapshots:   snapshots,
	}
}

func (e *testEnv) createTournament(t *testing.T, sport models.Sport, format models.Format) *models.Tournament {
	t.Helper()
	tournament, err := e.tournaments.CreateTournament(context.Background(), organizer, CreateTournamentInput{
		Name:      "Spring Cup " + string(format),
		Sport:     sport,
		Format:    format,
		StartDate: fixedNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return tournament
}

func (e *testEnv) addTeams(t *testing.T, tournamentID string, n int) []models.Team {
	t.Helper()
	teams := make([]models.Team, 0, n)
	for i := 0; i < n; i++ {
		team, err := e.tournaments.AddTeam(context.Background(), tournamentID, fmt.Sprintf("captain-%d", i), AddTeamInput{
			Name: fmt.Sprintf("Team %c", 'A'+i),
		})
		require.NoError(t, err)
		teams = append(teams, *team)
	}
	return teams
}

// startedTournament creates and starts a tournament with n teams.
func (e *testEnv) startedTournament(t *testing.T, sport models.Sport, format models.Format, n int) (*TournamentDetails, []models.Team) {
	t.Helper()
	tournament := e.createTournament(t, sport, format)
	teams := e.addTeams(t, tournament.ID, n)
	details, err := e.tournaments.StartTournament(context.Background(), tournament.ID, organizer)
	require.NoError(t, err)
	return details, teams
}

func (e *testEnv) match(t *testing.T, id string) *models.Match {
	t.Helper()
	m, err := e.matches.GetMatch(context.Background(), id)
	require.NoError(t, err)
	return m
}
