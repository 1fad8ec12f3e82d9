package models

// Sport is the sport a tournament is played in.
type Sport string

const (
	SportCricket   Sport = "Cricket"
	SportFootball  Sport = "Football"
	SportKabaddi   Sport = "Kabaddi"
	SportBadminton Sport = "Badminton"
	SportTennis    Sport = "Tennis"
	SportOther     Sport = "Other"
)

func (s Sport) IsValid() bool {
	switch s {
	case SportCricket, SportFootball, SportKabaddi, SportBadminton, SportTennis, SportOther:
		return true
	}
	return false
}

// AcceptsDetails reports whether a details payload of the given kind can be
// attached to a match of this sport.
func (s Sport) AcceptsDetails(kind DetailsKind) bool {
	switch s {
	case SportCricket:
		return kind == DetailsCricket
	case SportFootball:
		return kind == DetailsFootball
	case SportKabaddi:
		return kind == DetailsKabaddi
	case SportBadminton, SportTennis:
		return kind == DetailsSets
	case SportOther:
		return kind.IsValid()
	}
	return false
}
