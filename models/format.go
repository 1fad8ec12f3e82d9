package models

// Format is the competition structure a tournament is scheduled with.
type Format string

const (
	FormatLeague   Format = "League"
	FormatKnockout Format = "Knockout"
	// FormatGroupKnockout has no fixture generator; new tournaments cannot use it.
	FormatGroupKnockout Format = "GroupKnockout"
)

func (f Format) IsValid() bool {
	switch f {
	case FormatLeague, FormatKnockout, FormatGroupKnockout:
		return true
	}
	return false
}
