package game

import (
	"fmt"
	"time"

	"github.com/capicuhq/capicu/pkg/domino"
)

// ===== CPU Seats =====

// Species is the table name pool. CPU seats and team names draw from it,
// so the two never collide at the same table.
var Species = []string{
	"Capuchin",
	"Tamarin",
	"Marmoset",
	"Macaque",
	"Howler",
	"Mandrill",
	"Gibbon",
	"Langur",
}

// AvatarPool is the set of selectable avatar ids.
var AvatarPool = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 14, 15, 16, 17, 18, 20}

// CPUName returns a species name not already seated at the table.
func CPUName(existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}
	for _, name := range Species {
		if !taken[name] {
			return name
		}
	}
	// All species seated; disambiguate with a counter.
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s %d", Species[(i-2)%len(Species)], i)
		if !taken[name] {
			return name
		}
	}
}

// IsCPUTurn reports whether a CPU seat is to move.
func (g *Game) IsCPUTurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentTurn == "" {
		return false
	}
	p := g.playerLocked(g.currentTurn)
	return p != nil && p.CPU
}

// ===== Move Selection =====

// CPUMove picks the strongest move for a player:
// shed doubles early, dump high pip counts, and slightly prefer tiles
// whose pips are covered elsewhere in the hand. Ties break randomly.
func (g *Game) CPUMove(playerID string) (Move, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := g.validMovesLocked(playerID)
	if len(moves) == 0 {
		return Move{}, false
	}
	p := g.playerLocked(playerID)
	if p == nil {
		return Move{}, false
	}

	// Shuffling first makes the max scan break score ties randomly.
	g.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	best := moves[0]
	bestScore := -1
	for _, m := range moves {
		score := m.Tile.Sum()
		if m.Tile.IsDouble() {
			score += 10
		}
		for _, other := range p.Hand {
			if other.Equals(m.Tile) {
				continue
			}
			if other.HasPip(m.Tile.Left) || other.HasPip(m.Tile.Right) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = m
		}
	}
	return best, true
}

// AutoPlay runs a full turn for a seat: draw until playable in the draw
// variant, then place the CPU-chosen move or pass. Used for CPU turns and
// for humans who overrun the turn timer. The returned move is nil when
// the turn ended in a pass.
func (g *Game) AutoPlay(playerID string, now time.Time) (*Move, []domino.Domino, error) {
	var drawn []domino.Domino
	if g.Variant() == VariantDraw {
		for !g.HasValidMove(playerID) {
			t, err := g.Draw(playerID, now)
			if err != nil {
				break
			}
			drawn = append(drawn, t)
		}
	}

	if m, ok := g.CPUMove(playerID); ok {
		if err := g.Play(playerID, m.Tile, m.Side, now); err != nil {
			return nil, drawn, err
		}
		return &m, drawn, nil
	}

	if err := g.Pass(playerID, now); err != nil {
		return nil, drawn, err
	}
	return nil, drawn, nil
}
