package models

// StandingsRow is one team's aggregate over the completed matches of a
// tournament. It is derived on demand and never stored.
type StandingsRow struct {
	TeamID   string  `json:"team_id"`
	TeamName string  `json:"team_name"`
	Played   int     `json:"played"`
	Won      int     `json:"won"`
	Lost     int     `json:"lost"`
	Drawn    int     `json:"drawn"`
	Points   int     `json:"points"`
	NRR      float64 `json:"nrr"`
	GD       int     `json:"gd"`
}
