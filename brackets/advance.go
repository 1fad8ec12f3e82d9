package brackets

import "github.com/quanpsy/tornamate/models"

// AdvanceBracket places winnerTeamID into the match that completed feeds.
// A completed match with an even BracketIndex fills slot A of the next match,
// an odd one slot B, matching the 2k/2k+1 pairing built by the generator.
//
// The returned slice has the same length, ids and order as all; inputs are
// not modified. A match without NextMatchID returns all as is, and a
// NextMatchID that is not in all leaves every match untouched.
func AdvanceBracket(completed models.Match, winnerTeamID string, all []models.Match) []models.Match {
	if completed.NextMatchID == nil {
		return all
	}
	targetID := *completed.NextMatchID
	toSlotA := completed.BracketIndex%2 == 0

	updated := make([]models.Match, len(all))
	for i, m := range all {
		if m.ID == targetID {
			winner := winnerTeamID
			if toSlotA {
				m.TeamAID = &winner
			} else {
				m.TeamBID = &winner
			}
		}
		updated[i] = m
	}
	return updated
}
