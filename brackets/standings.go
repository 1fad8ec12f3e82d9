package brackets

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/quanpsy/tornamate/models"
)

const (
	PointsForWin  = 2
	PointsForDraw = 1
)

// CalculateStandings aggregates the completed matches into one row per team,
// in the order of teams before sorting. Rows are sorted by points, then goal
// difference, keeping input order on ties. NRR is never filled in.
func CalculateStandings(matches []models.Match, teams []models.Team, sport models.Sport) []models.StandingsRow {
	rows := make([]models.StandingsRow, len(teams))
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		rows[i] = models.StandingsRow{TeamID: t.ID, TeamName: t.Name}
		index[t.ID] = i
	}

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || !m.HasBothTeams() {
			continue
		}
		ia, okA := index[*m.TeamAID]
		ib, okB := index[*m.TeamBID]
		if !okA || !okB {
			continue
		}
		a, b := &rows[ia], &rows[ib]
		a.Played++
		b.Played++

		valA, valB, fromGoals := MatchResult(m, sport)
		if fromGoals {
			a.GD += valA - valB
			b.GD += valB - valA
		}

		switch {
		case valA > valB:
			a.Won++
			a.Points += PointsForWin
			b.Lost++
		case valB > valA:
			b.Won++
			b.Points += PointsForWin
			a.Lost++
		default:
			a.Drawn++
			a.Points += PointsForDraw
			b.Drawn++
			b.Points += PointsForDraw
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].GD > rows[j].GD
	})
	return rows
}

// MatchResult extracts the comparable result of a match. Football matches
// carrying football details are read from the goals (fromGoals is true);
// everything else falls back to the leading integer of each display score,
// so a cricket score such as "142/3 (18.2)" compares on runs only.
func MatchResult(m models.Match, sport models.Sport) (a, b int, fromGoals bool) {
	if sport == models.SportFootball && m.Details != nil {
		switch m.Details.Kind {
		case models.DetailsFootball:
			if f := m.Details.Football; f != nil {
				return f.HomeGoals, f.AwayGoals, true
			}
		case models.DetailsCricket, models.DetailsSets, models.DetailsKabaddi:
		}
	}
	return parseScore(m.ScoreA), parseScore(m.ScoreB), false
}

// parseScore returns the optionally signed integer at the start of s after
// leading whitespace, or 0 when there is none. Values beyond the int range
// are clamped to it.
func parseScore(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	// On ErrRange ParseInt returns the bound of the matching sign.
	v, err := strconv.ParseInt(s[:end], 10, 0)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return int(v)
}
