package brackets

import (
	"fmt"
	"time"

	"github.com/quanpsy/tornamate/models"
)

// matchDay is the spacing between consecutive fixture start times.
const matchDay = 24 * time.Hour

const defaultLocation = "TBD"

// FixtureGenerator builds the complete match list for one tournament format.
// Implementations are pure: the same tournament always yields the same
// matches, ids included.
type FixtureGenerator interface {
	Generate(tournament models.Tournament) []models.Match
	GetName() string
}

var generators = map[models.Format]FixtureGenerator{
	models.FormatLeague:   NewRoundRobinGenerator(),
	models.FormatKnockout: NewSingleEliminationGenerator(),
}

// GeneratorFor returns the generator registered for format. GroupKnockout
// has none.
func GeneratorFor(format models.Format) (FixtureGenerator, bool) {
	g, ok := generators[format]
	return g, ok
}

// GenerateFixtures produces the full schedule for a tournament from its
// current team list. Tournaments with fewer than two teams, or whose format
// has no generator, get an empty schedule.
func GenerateFixtures(tournament models.Tournament) []models.Match {
	if len(tournament.Teams) < 2 {
		return []models.Match{}
	}
	g, ok := GeneratorFor(tournament.Format)
	if !ok {
		return []models.Match{}
	}
	return g.Generate(tournament)
}

func newFixture(t models.Tournament, id string, start time.Time, round, bracketIndex int) models.Match {
	location := defaultLocation
	if t.Location != nil && *t.Location != "" {
		location = *t.Location
	}
	return models.Match{
		ID:           id,
		TournamentID: t.ID,
		Sport:        t.Sport,
		StartTime:    start,
		Location:     location,
		Round:        round,
		BracketIndex: bracketIndex,
		Status:       models.MatchStatusScheduled,
		ScoreA:       models.ScorePending,
		ScoreB:       models.ScorePending,
		Commentary:   []models.CommentaryEvent{},
	}
}

func leagueMatchUID(tournamentID string, order int) string {
	return fmt.Sprintf("%s_M%d", tournamentID, order)
}

func bracketMatchUID(tournamentID string, round, orderInRound int) string {
	return fmt.Sprintf("%s_R%dM%d", tournamentID, round, orderInRound)
}
