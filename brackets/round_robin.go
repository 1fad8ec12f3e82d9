package brackets

import (
	"time"

	"github.com/quanpsy/tornamate/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate creates one match for every unordered pair of teams, the team
// earlier in the roster playing as team A. Matches are emitted pair by pair
// (all of team 0's matches first, then team 1's remaining ones, ...) and
// scheduled one day apart in that order. The order is not a balanced
// rotation: a team can play on several consecutive days.
func (g *RoundRobinGenerator) Generate(tournament models.Tournament) []models.Match {
	teams := tournament.Teams
	n := len(teams)
	if n < 2 {
		return []models.Match{}
	}

	matches := make([]models.Match, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			order := len(matches)
			start := tournament.StartDate.Add(time.Duration(order) * matchDay)

			m := newFixture(tournament, leagueMatchUID(tournament.ID, order+1), start, 1, order)
			teamA, teamB := teams[i].ID, teams[j].ID
			m.TeamAID = &teamA
			m.TeamBID = &teamB
			matches = append(matches, m)
		}
	}
	return matches
}
