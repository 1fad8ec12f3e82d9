package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchDetails_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *MatchDetails
		wantErr error
	}{
		{
			name: "football",
			body: `{"kind":"football","football":{"home_goals":3,"away_goals":1}}`,
			want: NewFootballDetails(3, 1),
		},
		{
			name: "sets",
			body: `{"kind":"sets","sets":{"sets":[{"a":21,"b":18},{"a":19,"b":21}]}}`,
			want: NewSetDetails(SetScore{A: 21, B: 18}, SetScore{A: 19, B: 21}),
		},
		{
			name:    "unknown kind",
			body:    `{"kind":"curling"}`,
			wantErr: ErrDetailsKindUnknown,
		},
		{
			name:    "payload for another kind",
			body:    `{"kind":"cricket","football":{"home_goals":1,"away_goals":0}}`,
			wantErr: ErrDetailsKindMismatch,
		},
		{
			name:    "two payloads",
			body:    `{"kind":"football","football":{},"kabaddi":{}}`,
			wantErr: ErrDetailsKindMismatch,
		},
		{
			name:    "negative goals",
			body:    `{"kind":"football","football":{"home_goals":-2,"away_goals":1}}`,
			wantErr: ErrDetailsNegative,
		},
		{
			name:    "negative set score",
			body:    `{"kind":"sets","sets":{"sets":[{"a":21,"b":18},{"a":-1,"b":21}]}}`,
			wantErr: ErrDetailsNegative,
		},
		{
			name:    "negative runs",
			body:    `{"kind":"cricket","cricket":{"innings":[{"team_id":"t1","runs":-5,"wickets":2,"overs":10}]}}`,
			wantErr: ErrDetailsNegative,
		},
		{
			name:    "negative raid points",
			body:    `{"kind":"kabaddi","kabaddi":{"raid_points_a":-3}}`,
			wantErr: ErrDetailsNegative,
		},
		{
			name:    "kind without payload",
			body:    `{"kind":"kabaddi"}`,
			wantErr: ErrDetailsKindMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got MatchDetails
			err := json.Unmarshal([]byte(tt.body), &got)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, *tt.want, got)
		})
	}
}

func TestSport_AcceptsDetails(t *testing.T) {
	assert.True(t, SportFootball.AcceptsDetails(DetailsFootball))
	assert.False(t, SportFootball.AcceptsDetails(DetailsCricket))
	assert.True(t, SportTennis.AcceptsDetails(DetailsSets))
	assert.True(t, SportBadminton.AcceptsDetails(DetailsSets))
	assert.True(t, SportOther.AcceptsDetails(DetailsKabaddi))
	assert.False(t, SportOther.AcceptsDetails(DetailsKind("curling")))
	assert.False(t, Sport("Chess").AcceptsDetails(DetailsSets))
}

func TestMatch_HasTeam(t *testing.T) {
	a := "TEAM_A"
	m := Match{TeamAID: &a}
	assert.True(t, m.HasTeam("TEAM_A"))
	assert.False(t, m.HasTeam("TEAM_B"))
	assert.False(t, m.HasBothTeams())
}
