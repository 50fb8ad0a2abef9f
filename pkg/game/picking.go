package game

import (
	"sort"
	"time"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/errors"
)

// ===== Picking Phase =====

// StartPicking shuffles the full set face down onto grid positions 0-27
// and opens the picking phase. Requires at least MinPlayers seated.
func (g *Game) StartPicking(now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusWaiting {
		return errors.New(errors.ErrCodeWrongPhase, "game has already started")
	}
	if len(g.players) < MinPlayers {
		return errors.New(errors.ErrCodeInvalidInput, "need at least %d players to start", MinPlayers)
	}

	tiles := domino.FullSet()
	g.rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	g.picking = make(map[int]domino.Domino, len(tiles))
	for i, t := range tiles {
		g.picking[i] = t
	}

	for _, p := range g.players {
		p.Hand = nil
	}
	g.board = nil
	g.boneyard = nil
	g.ends = Ends{}
	g.winnerID = ""
	g.capicu = false
	g.currentTurn = ""
	g.turnStartedAt = time.Time{}
	g.status = StatusPicking
	g.pickingStartedAt = now
	g.touchLocked()
	return nil
}

// ClaimTile takes the face-down tile at a grid position into the player's
// hand. When every hand reaches HandSize the playing phase starts; the
// returned bool reports that transition.
func (g *Game) ClaimTile(playerID string, position int, now time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.claimTileLocked(playerID, position, now)
}

func (g *Game) claimTileLocked(playerID string, position int, now time.Time) (bool, error) {
	if g.status != StatusPicking {
		return false, errors.New(errors.ErrCodeWrongPhase, "game is not in the picking phase")
	}
	p := g.playerLocked(playerID)
	if p == nil {
		return false, errors.New(errors.ErrCodePlayerNotFound, "player %s not found", playerID)
	}
	if len(p.Hand) >= HandSize {
		return false, errors.New(errors.ErrCodeInvalidMove, "you already have %d tiles", HandSize)
	}
	tile, ok := g.picking[position]
	if !ok {
		return false, errors.New(errors.ErrCodeTileNotFound, "position %d is not available", position)
	}

	delete(g.picking, position)
	p.Hand = append(p.Hand, tile)
	g.touchLocked()

	if g.pickingCompleteLocked() {
		g.startPlayingLocked(now)
		return true, nil
	}
	return false, nil
}

// CPUClaim has a CPU seat claim a random available position.
func (g *Game) CPUClaim(playerID string, now time.Time) (int, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPicking {
		return 0, false, errors.New(errors.ErrCodeWrongPhase, "game is not in the picking phase")
	}
	p := g.playerLocked(playerID)
	if p == nil || !p.CPU {
		return 0, false, errors.New(errors.ErrCodePlayerNotFound, "not a CPU player")
	}
	positions := g.availablePositionsLocked()
	if len(positions) == 0 {
		return 0, false, errors.New(errors.ErrCodeTileNotFound, "no tiles available")
	}

	pos := positions[g.rng.IntN(len(positions))]
	complete, err := g.claimTileLocked(playerID, pos, now)
	return pos, complete, err
}

// AutoAssign fills a player's hand from random available positions, used
// when the picking timer fires. Returns the positions taken and whether
// the playing phase started.
func (g *Game) AutoAssign(playerID string, now time.Time) ([]int, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPicking {
		return nil, false, errors.New(errors.ErrCodeWrongPhase, "game is not in the picking phase")
	}
	p := g.playerLocked(playerID)
	if p == nil {
		return nil, false, errors.New(errors.ErrCodePlayerNotFound, "player %s not found", playerID)
	}

	var taken []int
	for len(p.Hand) < HandSize && len(g.picking) > 0 {
		positions := g.availablePositionsLocked()
		pos := positions[g.rng.IntN(len(positions))]
		p.Hand = append(p.Hand, g.picking[pos])
		delete(g.picking, pos)
		taken = append(taken, pos)
	}
	g.touchLocked()

	if g.pickingCompleteLocked() {
		g.startPlayingLocked(now)
		return taken, true, nil
	}
	return taken, false, nil
}

// AvailablePositions returns the unclaimed grid positions in order.
func (g *Game) AvailablePositions() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.availablePositionsLocked()
}

func (g *Game) availablePositionsLocked() []int {
	positions := make([]int, 0, len(g.picking))
	for pos := range g.picking {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// PickingExpired reports whether the picking phase has overrun its bound.
func (g *Game) PickingExpired(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pickingTimeout <= 0 || g.status != StatusPicking || g.pickingStartedAt.IsZero() {
		return false
	}
	return now.Sub(g.pickingStartedAt) >= g.pickingTimeout
}

// PickingRemaining returns the seconds left in the picking phase, or a
// negative value when no timer is running.
func (g *Game) PickingRemaining(now time.Time) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pickingTimeout <= 0 || g.status != StatusPicking || g.pickingStartedAt.IsZero() {
		return -1
	}
	remaining := g.pickingTimeout - now.Sub(g.pickingStartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining.Seconds()
}

// pickingCompleteLocked reports whether every seat holds a full hand.
func (g *Game) pickingCompleteLocked() bool {
	for _, p := range g.players {
		if len(p.Hand) < HandSize {
			return false
		}
	}
	return true
}

// ===== Transition to Play =====

// startPlayingLocked moves unclaimed tiles to the boneyard and opens
// play with the hinted starter, falling back to the highest double.
func (g *Game) startPlayingLocked(now time.Time) {
	positions := g.availablePositionsLocked()
	g.boneyard = make([]domino.Domino, 0, len(positions))
	for _, pos := range positions {
		g.boneyard = append(g.boneyard, g.picking[pos])
	}
	g.picking = nil
	g.pickingStartedAt = time.Time{}

	if g.startHint != "" && g.playerLocked(g.startHint) != nil {
		g.currentTurn = g.startHint
	} else {
		g.currentTurn = g.findStartingPlayerLocked()
	}
	g.startHint = ""
	g.status = StatusPlaying
	g.turnStartedAt = now
}

// ===== Direct Deal =====

// Deal skips the picking phase entirely: shuffle, six tiles each, rest
// to the boneyard, straight into play. Used by simulations and tests.
func (g *Game) Deal(now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusWaiting {
		return errors.New(errors.ErrCodeWrongPhase, "game has already started")
	}
	if len(g.players) < MinPlayers {
		return errors.New(errors.ErrCodeInvalidInput, "need at least %d players to start", MinPlayers)
	}

	tiles := domino.FullSet()
	g.rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	for _, p := range g.players {
		p.Hand = append([]domino.Domino(nil), tiles[:HandSize]...)
		tiles = tiles[HandSize:]
	}
	g.boneyard = tiles
	g.board = nil
	g.ends = Ends{}
	g.winnerID = ""
	g.capicu = false

	if g.startHint != "" && g.playerLocked(g.startHint) != nil {
		g.currentTurn = g.startHint
	} else {
		g.currentTurn = g.findStartingPlayerLocked()
	}
	g.startHint = ""
	g.status = StatusPlaying
	g.turnStartedAt = now
	g.touchLocked()
	return nil
}
