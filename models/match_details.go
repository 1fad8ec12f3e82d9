package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DetailsKind discriminates the sport-specific payload of a match.
type DetailsKind string

const (
	DetailsCricket  DetailsKind = "cricket"
	DetailsFootball DetailsKind = "football"
	DetailsSets     DetailsKind = "sets"
	DetailsKabaddi  DetailsKind = "kabaddi"
)

func (k DetailsKind) IsValid() bool {
	switch k {
	case DetailsCricket, DetailsFootball, DetailsSets, DetailsKabaddi:
		return true
	}
	return false
}

var (
	ErrDetailsKindUnknown  = errors.New("unknown match details kind")
	ErrDetailsKindMismatch = errors.New("match details payload does not match its kind")
	ErrDetailsNegative     = errors.New("match details cannot hold negative counts")
)

type CricketInnings struct {
	TeamID  string  `json:"team_id"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

type CricketDetails struct {
	Innings []CricketInnings `json:"innings"`
}

type FootballDetails struct {
	HomeGoals int `json:"home_goals"`
	AwayGoals int `json:"away_goals"`
}

type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// SetDetails is used by set-based sports such as badminton and tennis.
type SetDetails struct {
	Sets []SetScore `json:"sets"`
}

type KabaddiDetails struct {
	RaidPointsA   int `json:"raid_points_a"`
	RaidPointsB   int `json:"raid_points_b"`
	TacklePointsA int `json:"tackle_points_a"`
	TacklePointsB int `json:"tackle_points_b"`
	AllOutsA      int `json:"all_outs_a"`
	AllOutsB      int `json:"all_outs_b"`
}

// MatchDetails holds exactly one sport-specific payload, selected by Kind.
type MatchDetails struct {
	Kind     DetailsKind      `json:"kind"`
	Cricket  *CricketDetails  `json:"cricket,omitempty"`
	Football *FootballDetails `json:"football,omitempty"`
	Sets     *SetDetails      `json:"sets,omitempty"`
	Kabaddi  *KabaddiDetails  `json:"kabaddi,omitempty"`
}

func NewCricketDetails(d CricketDetails) *MatchDetails {
	return &MatchDetails{Kind: DetailsCricket, Cricket: &d}
}

func NewFootballDetails(home, away int) *MatchDetails {
	return &MatchDetails{Kind: DetailsFootball, Football: &FootballDetails{HomeGoals: home, AwayGoals: away}}
}

func NewSetDetails(sets ...SetScore) *MatchDetails {
	return &MatchDetails{Kind: DetailsSets, Sets: &SetDetails{Sets: sets}}
}

func NewKabaddiDetails(d KabaddiDetails) *MatchDetails {
	return &MatchDetails{Kind: DetailsKabaddi, Kabaddi: &d}
}

// Validate checks that the populated variant is the one named by Kind, that
// no other variant is set and that its counts are not negative.
func (d *MatchDetails) Validate() error {
	if d == nil {
		return nil
	}
	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrDetailsKindUnknown, d.Kind)
	}

	populated := 0
	var matches bool
	if d.Cricket != nil {
		populated++
		matches = d.Kind == DetailsCricket
	}
	if d.Football != nil {
		populated++
		matches = d.Kind == DetailsFootball
	}
	if d.Sets != nil {
		populated++
		matches = d.Kind == DetailsSets
	}
	if d.Kabaddi != nil {
		populated++
		matches = d.Kind == DetailsKabaddi
	}
	if populated != 1 || !matches {
		return fmt.Errorf("%w: kind %q", ErrDetailsKindMismatch, d.Kind)
	}
	if field := d.negativeField(); field != "" {
		return fmt.Errorf("%w: %s", ErrDetailsNegative, field)
	}
	return nil
}

func (d *MatchDetails) negativeField() string {
	switch d.Kind {
	case DetailsCricket:
		for i, in := range d.Cricket.Innings {
			if in.Runs < 0 || in.Wickets < 0 || in.Overs < 0 {
				return fmt.Sprintf("innings %d", i+1)
			}
		}
	case DetailsFootball:
		if d.Football.HomeGoals < 0 || d.Football.AwayGoals < 0 {
			return "goals"
		}
	case DetailsSets:
		for i, set := range d.Sets.Sets {
			if set.A < 0 || set.B < 0 {
				return fmt.Sprintf("set %d", i+1)
			}
		}
	case DetailsKabaddi:
		k := d.Kabaddi
		for _, v := range []int{k.RaidPointsA, k.RaidPointsB, k.TacklePointsA, k.TacklePointsB, k.AllOutsA, k.AllOutsB} {
			if v < 0 {
				return "kabaddi points"
			}
		}
	}
	return ""
}

func (d *MatchDetails) UnmarshalJSON(data []byte) error {
	type plain MatchDetails
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	details := MatchDetails(decoded)
	if err := details.Validate(); err != nil {
		return err
	}
	*d = details
	return nil
}
