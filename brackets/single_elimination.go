package brackets

import (
	"math"
	"time"

	"github.com/quanpsy/tornamate/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() FixtureGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// Generate builds a full bracket of 2^ceil(log2(n)) leaf slots. Round-1 match
// i is seeded with teams 2i and 2i+1 in roster order; slots past the end of
// the roster stay empty and are never filled automatically, so a team drawn
// against an empty slot goes through only as a walkover.
//
// Matches are returned round by round, each round in bracket order.
func (g *SingleEliminationGenerator) Generate(tournament models.Tournament) []models.Match {
	teams := tournament.Teams
	n := len(teams)
	if n < 2 {
		return []models.Match{}
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	sizeOfFullBracket := 1 << uint(numRounds)

	rounds := make([][]models.Match, 0, numRounds)
	matchesInRound := sizeOfFullBracket / 2
	for r := 1; r <= numRounds; r++ {
		start := tournament.StartDate.Add(time.Duration(r) * matchDay)
		roundMatches := make([]models.Match, matchesInRound)
		for i := range roundMatches {
			roundMatches[i] = newFixture(tournament, bracketMatchUID(tournament.ID, r, i+1), start, r, i)
		}
		rounds = append(rounds, roundMatches)
		matchesInRound /= 2
	}

	// Matches 2k and 2k+1 of a round feed match k of the next one.
	for r := 0; r < len(rounds)-1; r++ {
		next := rounds[r+1]
		for i := range rounds[r] {
			nextID := next[i/2].ID
			rounds[r][i].NextMatchID = &nextID
		}
	}

	first := rounds[0]
	for i := range first {
		if a := 2 * i; a < n {
			teamID := teams[a].ID
			first[i].TeamAID = &teamID
		}
		if b := 2*i + 1; b < n {
			teamID := teams[b].ID
			first[i].TeamBID = &teamID
		}
	}

	allGeneratedMatches := make([]models.Match, 0, sizeOfFullBracket-1)
	for _, roundMatches := range rounds {
		allGeneratedMatches = append(allGeneratedMatches, roundMatches...)
	}
	return allGeneratedMatches
}
