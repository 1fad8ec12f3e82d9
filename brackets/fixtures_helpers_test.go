package brackets

import (
	"fmt"
	"time"

	"github.com/quanpsy/tornamate/models"
)

var testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testTeams(names ...string) []models.Team {
	teams := make([]models.Team, len(names))
	for i, name := range names {
		teams[i] = models.Team{ID: name, Name: "Team " + name}
	}
	return teams
}

func numberedTeams(n int) []models.Team {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("T%02d", i)
	}
	return testTeams(names...)
}

func testTournament(format models.Format, teams []models.Team) models.Tournament {
	return models.Tournament{
		ID:        "TOUR1",
		Sport:     models.SportFootball,
		Format:    format,
		StartDate: testStart,
		Teams:     teams,
	}
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
