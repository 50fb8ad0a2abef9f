package game

import (
	"github.com/capicuhq/capicu/pkg/errors"
)

// ===== Round Scoring =====

// RemainingPips returns each player's unplayed pip total.
func (g *Game) RemainingPips() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remainingPipsLocked()
}

func (g *Game) remainingPipsLocked() map[string]int {
	pips := make(map[string]int, len(g.players))
	for _, p := range g.players {
		pips[p.ID] = p.HandTotal()
	}
	return pips
}

// RoundPoints computes individual scoring for a finished round.
//
// A dominoed winner collects the sum of all opponents' remaining pips.
// A blocked winner collects the opponents' total minus their own,
// floored at zero.
func (g *Game) RoundPoints() (winnerID string, points int, pips map[string]int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusFinished {
		return "", 0, nil, errors.New(errors.ErrCodeWrongPhase, "round is not finished")
	}

	pips = g.remainingPipsLocked()
	winnerID = g.winnerID
	if winnerID == "" {
		return "", 0, pips, nil
	}

	opponents := 0
	for id, v := range pips {
		if id != winnerID {
			opponents += v
		}
	}

	winner := g.playerLocked(winnerID)
	if winner != nil && len(winner.Hand) == 0 {
		points = opponents
	} else {
		points = max(0, opponents-pips[winnerID])
	}
	return winnerID, points, pips, nil
}

// TeamRoundPoints computes team scoring for a finished four-player round.
// Returns which team won ("team_a" or "team_b") and the points awarded:
// the losing team's pips for a dominoed win, or the pip difference
// floored at zero when blocked.
func (g *Game) TeamRoundPoints(teamA, teamB []string) (winningTeam string, points int, pips map[string]int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusFinished {
		return "", 0, nil, errors.New(errors.ErrCodeWrongPhase, "round is not finished")
	}

	pips = g.remainingPipsLocked()
	if g.winnerID == "" {
		return "", 0, pips, nil
	}

	sumTeam := func(ids []string) int {
		total := 0
		for _, id := range ids {
			total += pips[id]
		}
		return total
	}
	aPips, bPips := sumTeam(teamA), sumTeam(teamB)

	onTeamA := false
	for _, id := range teamA {
		if id == g.winnerID {
			onTeamA = true
			break
		}
	}

	winner := g.playerLocked(g.winnerID)
	dominoed := winner != nil && len(winner.Hand) == 0

	if onTeamA {
		winningTeam = TeamAKey
		if dominoed {
			points = bPips
		} else {
			points = max(0, bPips-aPips)
		}
	} else {
		winningTeam = TeamBKey
		if dominoed {
			points = aPips
		} else {
			points = max(0, aPips-bPips)
		}
	}
	return winningTeam, points, pips, nil
}

// VariantPoints returns mid-round points accumulated so far, keyed by
// player id. Only the allfives variant produces any.
func (g *Game) VariantPoints() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int, len(g.variantPoints))
	for id, v := range g.variantPoints {
		out[id] = v
	}
	return out
}
