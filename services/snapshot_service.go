package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/quanpsy/tornamate/brackets"
	"github.com/quanpsy/tornamate/logging"
	"github.com/quanpsy/tornamate/models"
	"github.com/quanpsy/tornamate/storage"
)

// Snapshot is the archived state of a tournament.
type Snapshot struct {
	Tournament models.Tournament     `json:"tournament"`
	Matches    []models.Match        `json:"matches"`
	Standings  []models.StandingsRow `json:"standings"`
	ExportedAt time.Time             `json:"exported_at"`
}

type SnapshotService interface {
	Export(ctx context.Context, tournamentID string) (string, error)
}

type snapshotService struct {
	tournaments TournamentService
	uploader    storage.FileUploader
	clock       clockwork.Clock
	logger      *logging.Logger
}

// NewSnapshotService returns a service whose Export fails with
// ErrSnapshotsDisabled when uploader is nil.
func NewSnapshotService(tournaments TournamentService, uploader storage.FileUploader, clock clockwork.Clock, logger *logging.Logger) SnapshotService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &snapshotService{
		tournaments: tournaments,
		uploader:    uploader,
		clock:       clock,
		logger:      logger.With("component", "snapshot_service"),
	}
}

func SnapshotKey(t models.Tournament) string {
	name := t.Slug
	if name == "" {
		name = "tournament"
	}
	return fmt.Sprintf("tournaments/%s-%s/snapshot.json", name, t.ID)
}

func (s *snapshotService) Export(ctx context.Context, tournamentID string) (string, error) {
	if s.uploader == nil {
		return "", ErrSnapshotsDisabled
	}

	details, err := s.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return "", err
	}

	snapshot := Snapshot{
		Tournament: details.Tournament,
		Matches:    details.Matches,
		Standings:  brackets.CalculateStandings(details.Matches, details.Teams, details.Sport),
		ExportedAt: s.clock.Now().UTC(),
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := SnapshotKey(details.Tournament)
	res, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "snapshot uploaded", "tournament_id", tournamentID, "key", key, "bytes", len(body))
	return res.Location, nil
}
