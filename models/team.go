package models

import "time"

type Team struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	CaptainID    string    `json:"captain_id" db:"captain_id"`
	PlayerIDs    []string  `json:"player_ids" db:"player_ids"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
