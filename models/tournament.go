package models

import "time"

// TournamentStatus is stored as text in tournaments.status.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "UPCOMING"
	StatusOngoing   TournamentStatus = "ONGOING"
	StatusCompleted TournamentStatus = "COMPLETED"
)

func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

type Tournament struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Slug         string           `json:"slug" db:"slug"`
	Description  *string          `json:"description,omitempty" db:"description"`
	OrganizerID  string           `json:"organizer_id" db:"organizer_id"`
	Sport        Sport            `json:"sport" db:"sport"`
	Format       Format           `json:"format" db:"format"`
	StartDate    time.Time        `json:"start_date" db:"start_date"`
	Location     *string          `json:"location,omitempty" db:"location"`
	Status       TournamentStatus `json:"status" db:"status"`
	JoinCodeHash *string          `json:"-" db:"join_code_hash"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	// Teams is populated by the service in registration order; fixtures are
	// generated from this order.
	Teams []Team `json:"teams,omitempty" db:"-"`
}

func (t Tournament) IsPrivate() bool {
	return t.JoinCodeHash != nil && *t.JoinCodeHash != ""
}
