package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusPaused    MatchStatus = "PAUSED"
	MatchStatusCompleted MatchStatus = "COMPLETED"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusPaused, MatchStatusCompleted:
		return true
	}
	return false
}

// ScorePending is the display score of a match that has not started.
const ScorePending = "-"

type CommentaryType string

const (
	CommentaryGoal   CommentaryType = "GOAL"
	CommentaryWicket CommentaryType = "WICKET"
	CommentaryFour   CommentaryType = "FOUR"
	CommentarySix    CommentaryType = "SIX"
	CommentaryFoul   CommentaryType = "FOUL"
	CommentaryInfo   CommentaryType = "INFO"
)

func (t CommentaryType) IsValid() bool {
	switch t {
	case CommentaryGoal, CommentaryWicket, CommentaryFour, CommentarySix, CommentaryFoul, CommentaryInfo:
		return true
	}
	return false
}

type CommentaryEvent struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Text      string         `json:"text"`
	Type      CommentaryType `json:"type"`
	TeamID    *string        `json:"team_id,omitempty"`
}

// Match is a fixture and, once played, its result. A nil TeamAID or TeamBID
// is a slot waiting for the winner of an earlier bracket match.
type Match struct {
	ID           string            `json:"id" db:"id"`
	TournamentID string            `json:"tournament_id" db:"tournament_id"`
	Sport        Sport             `json:"sport" db:"sport"`
	TeamAID      *string           `json:"team_a_id" db:"team_a_id"`
	TeamBID      *string           `json:"team_b_id" db:"team_b_id"`
	StartTime    time.Time         `json:"start_time" db:"start_time"`
	Location     string            `json:"location" db:"location"`
	Round        int               `json:"round" db:"round"`
	BracketIndex int               `json:"bracket_index" db:"bracket_index"`
	NextMatchID  *string           `json:"next_match_id,omitempty" db:"next_match_id"`
	Status       MatchStatus       `json:"status" db:"status"`
	ScoreA       string            `json:"score_a" db:"score_a"`
	ScoreB       string            `json:"score_b" db:"score_b"`
	WinnerTeamID *string           `json:"winner_team_id,omitempty" db:"winner_team_id"`
	Details      *MatchDetails     `json:"details,omitempty" db:"details"`
	Commentary   []CommentaryEvent `json:"commentary" db:"commentary"`
}

func (m Match) HasBothTeams() bool {
	return m.TeamAID != nil && m.TeamBID != nil
}

// HasTeam reports whether teamID occupies either slot of the match.
func (m Match) HasTeam(teamID string) bool {
	return (m.TeamAID != nil && *m.TeamAID == teamID) || (m.TeamBID != nil && *m.TeamBID == teamID)
}
