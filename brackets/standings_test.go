package brackets

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanpsy/tornamate/models"
)

func complete(m models.Match, scoreA, scoreB string) models.Match {
	m.Status = models.MatchStatusCompleted
	m.ScoreA = scoreA
	m.ScoreB = scoreB
	return m
}

func TestCalculateStandings_LeagueExample(t *testing.T) {
	teams := testTeams("A", "B", "C", "D")
	matches := GenerateFixtures(testTournament(models.FormatLeague, teams))
	require.Len(t, matches, 6)

	matches[0] = complete(matches[0], "3", "1") // A v B
	matches[1] = complete(matches[1], "2", "2") // A v C

	got := CalculateStandings(matches, teams, models.SportFootball)
	want := []models.StandingsRow{
		{TeamID: "A", TeamName: "Team A", Played: 2, Won: 1, Drawn: 1, Points: 3},
		{TeamID: "C", TeamName: "Team C", Played: 1, Drawn: 1, Points: 1},
		{TeamID: "B", TeamName: "Team B", Played: 1, Lost: 1},
		{TeamID: "D", TeamName: "Team D"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateStandings_GoalDifferenceBreaksTies(t *testing.T) {
	teams := testTeams("A", "B", "C")
	matches := GenerateFixtures(testTournament(models.FormatLeague, teams))

	// A v B 1-0, A v C 0-4, B v C 1-0: everyone on 2 points.
	matches[0] = complete(matches[0], "1", "0")
	matches[0].Details = models.NewFootballDetails(1, 0)
	matches[1] = complete(matches[1], "0", "4")
	matches[1].Details = models.NewFootballDetails(0, 4)
	matches[2] = complete(matches[2], "1", "0")
	matches[2].Details = models.NewFootballDetails(1, 0)

	got := CalculateStandings(matches, teams, models.SportFootball)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{got[0].TeamID, got[1].TeamID, got[2].TeamID})
	assert.Equal(t, 3, got[0].GD)
	assert.Equal(t, 0, got[1].GD)
	assert.Equal(t, -3, got[2].GD)
	for _, row := range got {
		assert.Equal(t, 2, row.Points, row.TeamID)
	}
}

func TestCalculateStandings_FootballDetailsOverrideScoreStrings(t *testing.T) {
	teams := testTeams("A", "B")
	matches := GenerateFixtures(testTournament(models.FormatLeague, teams))
	matches[0] = complete(matches[0], "0", "0")
	matches[0].Details = models.NewFootballDetails(2, 1)

	got := CalculateStandings(matches, teams, models.SportFootball)
	assert.Equal(t, "A", got[0].TeamID)
	assert.Equal(t, 1, got[0].Won)
	assert.Equal(t, 1, got[0].GD)

	// Other sports ignore the goals and read the display scores.
	got = CalculateStandings(matches, teams, models.SportKabaddi)
	assert.Equal(t, 1, got[0].Drawn)
	assert.Equal(t, 0, got[0].GD)
}

func TestCalculateStandings_SkipsIncompleteAndUnknown(t *testing.T) {
	teams := testTeams("A", "B")
	live := models.Match{ID: "m1", TeamAID: ptr("A"), TeamBID: ptr("B"), Status: models.MatchStatusLive, ScoreA: "5", ScoreB: "0"}
	unresolved := models.Match{ID: "m2", TeamAID: ptr("A"), Status: models.MatchStatusCompleted, ScoreA: "1", ScoreB: "0"}
	stranger := models.Match{ID: "m3", TeamAID: ptr("A"), TeamBID: ptr("Z"), Status: models.MatchStatusCompleted, ScoreA: "1", ScoreB: "0"}

	got := CalculateStandings([]models.Match{live, unresolved, stranger}, teams, models.SportOther)
	for _, row := range got {
		assert.Zero(t, row.Played, row.TeamID)
		assert.Zero(t, row.Points, row.TeamID)
	}
}

func TestCalculateStandings_CricketComparesRunsOnly(t *testing.T) {
	teams := testTeams("A", "B")
	m := complete(models.Match{ID: "m1", TeamAID: ptr("A"), TeamBID: ptr("B")}, "142/3 (18.2)", "140/9 (20)")

	got := CalculateStandings([]models.Match{m}, teams, models.SportCricket)
	assert.Equal(t, "A", got[0].TeamID)
	assert.Equal(t, 1, got[0].Won)
	assert.Zero(t, got[0].NRR)
}

func TestCalculateStandings_ZeroSum(t *testing.T) {
	teams := numberedTeams(6)
	matches := GenerateFixtures(testTournament(models.FormatLeague, teams))
	scores := [][2]string{{"1", "0"}, {"2", "2"}, {"0", "3"}, {"-", "-"}, {"4", "4"}, {"1", "2"}, {"7", "1"}}
	decisive := 0
	for i := range matches {
		if i%5 == 4 {
			continue
		}
		s := scores[i%len(scores)]
		matches[i] = complete(matches[i], s[0], s[1])
		if parseScore(s[0]) != parseScore(s[1]) {
			decisive++
		}
	}

	rows := CalculateStandings(matches, teams, models.SportOther)
	var won, lost, drawn, played int
	for _, row := range rows {
		won += row.Won
		lost += row.Lost
		drawn += row.Drawn
		played += row.Played
		assert.Equal(t, row.Played, row.Won+row.Lost+row.Drawn, row.TeamID)
		assert.Equal(t, PointsForWin*row.Won+PointsForDraw*row.Drawn, row.Points, row.TeamID)
	}
	assert.Equal(t, decisive, won)
	assert.Equal(t, won, lost)
	assert.Zero(t, drawn%2)
	assert.Equal(t, played, 2*(won+drawn/2))
}

func TestCalculateStandings_NoTeams(t *testing.T) {
	got := CalculateStandings(nil, nil, models.SportFootball)
	assert.Empty(t, got)
}

func TestParseScore(t *testing.T) {
	tests := map[string]int{
		"3":                            3,
		"  12 ":                        12,
		"142/3 (18.2)":                 142,
		"21-19":                        21,
		"-":                            0,
		"":                             0,
		"abc":                          0,
		"-4":                           -4,
		"+7x":                          7,
		"2 sets":                       2,
		"99999999999999999999999 runs": math.MaxInt,
		"-99999999999999999999999":     math.MinInt,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseScore(in), "parseScore(%q)", in)
	}
}
