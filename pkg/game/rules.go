package game

import (
	"time"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/errors"
)

// ===== Starting Player =====

// findStartingPlayerLocked returns the seat holding the highest double,
// falling back to the highest single tile when nobody holds a double.
func (g *Game) findStartingPlayerLocked() string {
	bestID := ""
	bestDouble := -1
	for _, p := range g.players {
		for _, t := range p.Hand {
			if t.IsDouble() && t.Left > bestDouble {
				bestDouble = t.Left
				bestID = p.ID
			}
		}
	}
	if bestID != "" {
		return bestID
	}

	bestTotal := -1
	for _, p := range g.players {
		for _, t := range p.Hand {
			if t.Sum() > bestTotal {
				bestTotal = t.Sum()
				bestID = p.ID
			}
		}
	}
	return bestID
}

// ===== Valid Moves =====

// canPlayOn reports whether a tile fits an open end. A nil end means the
// board is empty and anything fits.
func canPlayOn(t domino.Domino, end *int) bool {
	if end == nil {
		return true
	}
	return t.HasPip(*end)
}

// validMovesLocked lists every legal (tile, side) pair for a player.
// When both ends show the same pip only the left side is offered, so a
// tile never appears twice for what is the same placement.
func (g *Game) validMovesLocked(playerID string) []Move {
	p := g.playerLocked(playerID)
	if p == nil {
		return nil
	}

	if len(g.board) == 0 {
		moves := make([]Move, 0, len(p.Hand))
		for _, t := range p.Hand {
			moves = append(moves, Move{Tile: t, Side: SideLeft})
		}
		return moves
	}

	sameEnds := g.ends.Left != nil && g.ends.Right != nil && *g.ends.Left == *g.ends.Right
	var moves []Move
	for _, t := range p.Hand {
		if canPlayOn(t, g.ends.Left) {
			moves = append(moves, Move{Tile: t, Side: SideLeft})
		}
		if canPlayOn(t, g.ends.Right) && !sameEnds {
			moves = append(moves, Move{Tile: t, Side: SideRight})
		}
	}
	return moves
}

// ValidMoves lists every legal move for a player.
func (g *Game) ValidMoves(playerID string) []Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.validMovesLocked(playerID)
}

// HasValidMove reports whether the player can place any tile.
func (g *Game) HasValidMove(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.validMovesLocked(playerID)) > 0
}

// ===== Playing =====

// Play places a tile from the player's hand on the given side of the
// chain. The tile is flipped automatically so its touching pip matches
// the open end.
func (g *Game) Play(playerID string, tile domino.Domino, side Side, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return errors.New(errors.ErrCodeWrongPhase, "game is not in progress")
	}
	if g.currentTurn != playerID {
		return errors.New(errors.ErrCodeNotYourTurn, "it's not your turn")
	}
	p := g.playerLocked(playerID)
	if p == nil {
		return errors.New(errors.ErrCodePlayerNotFound, "player %s not found", playerID)
	}
	if !p.holds(tile) {
		return errors.New(errors.ErrCodeTileNotFound, "you don't have tile %s", tile)
	}

	// First tile of the round
	if len(g.board) == 0 {
		g.board = append(g.board, PlayedTile{Tile: tile, Position: 0, PlayerID: playerID})
		left, right := tile.Left, tile.Right
		g.ends = Ends{Left: &left, Right: &right}
		g.removeFromHandLocked(p, tile)
		g.afterPlayLocked(p, now)
		return nil
	}

	switch side {
	case SideLeft:
		if !canPlayOn(tile, g.ends.Left) {
			return errors.New(errors.ErrCodeInvalidMove, "tile %s does not match left end (%d)", tile, *g.ends.Left)
		}
		// The pip facing the chain must equal the open end.
		placed := tile
		if placed.Right != *g.ends.Left {
			placed = placed.Reversed()
		}
		g.capicu = g.finishesCapicuLocked(p, tile)
		g.board = append([]PlayedTile{{Tile: placed, PlayerID: playerID}}, g.board...)
		for i := range g.board {
			g.board[i].Position = i
		}
		v := placed.Left
		g.ends.Left = &v

	case SideRight:
		if !canPlayOn(tile, g.ends.Right) {
			return errors.New(errors.ErrCodeInvalidMove, "tile %s does not match right end (%d)", tile, *g.ends.Right)
		}
		placed := tile
		if placed.Left != *g.ends.Right {
			placed = placed.Reversed()
		}
		g.capicu = g.finishesCapicuLocked(p, tile)
		g.board = append(g.board, PlayedTile{Tile: placed, Position: len(g.board), PlayerID: playerID})
		v := placed.Right
		g.ends.Right = &v

	default:
		return errors.New(errors.ErrCodeInvalidMove, "invalid side %q (must be left or right)", side)
	}

	g.removeFromHandLocked(p, tile)
	g.afterPlayLocked(p, now)
	return nil
}

// finishesCapicuLocked reports whether playing tile empties the hand with
// a tile that fit either end. Doubles never count.
func (g *Game) finishesCapicuLocked(p *Player, tile domino.Domino) bool {
	if len(p.Hand) != 1 || tile.IsDouble() {
		return false
	}
	return canPlayOn(tile, g.ends.Left) && canPlayOn(tile, g.ends.Right)
}

// afterPlayLocked applies post-placement bookkeeping shared by all sides:
// allfives scoring, turn advance and round-over detection.
func (g *Game) afterPlayLocked(p *Player, now time.Time) {
	if g.variant == VariantAllFives {
		if pts := g.openEndSumLocked(); pts > 0 && pts%5 == 0 {
			g.variantPoints[p.ID] += pts
		}
	}
	g.advanceTurnLocked(now)
	g.checkRoundOverLocked()
	g.touchLocked()
}

// openEndSumLocked returns the pip sum of the two open ends. A single
// tile board counts both of its own pips.
func (g *Game) openEndSumLocked() int {
	sum := 0
	if g.ends.Left != nil {
		sum += *g.ends.Left
	}
	if g.ends.Right != nil {
		sum += *g.ends.Right
	}
	return sum
}

func (g *Game) removeFromHandLocked(p *Player, tile domino.Domino) {
	for i, h := range p.Hand {
		if h.Equals(tile) {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return
		}
	}
}

// ===== Passing and Drawing =====

// Pass forfeits the turn. Legal only when the player has no valid move,
// and in the draw variant only once the boneyard is empty.
func (g *Game) Pass(playerID string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return errors.New(errors.ErrCodeWrongPhase, "game is not in progress")
	}
	if g.currentTurn != playerID {
		return errors.New(errors.ErrCodeNotYourTurn, "it's not your turn")
	}
	if len(g.validMovesLocked(playerID)) > 0 {
		return errors.New(errors.ErrCodeInvalidMove, "you have valid moves available")
	}
	if g.variant == VariantDraw && len(g.boneyard) > 0 {
		return errors.New(errors.ErrCodeInvalidMove, "you must draw from the boneyard")
	}

	g.advanceTurnLocked(now)
	g.checkRoundOverLocked()
	g.touchLocked()
	return nil
}

// Draw takes a random tile from the boneyard into the player's hand.
// Draw variant only, and only while the player has no valid move.
func (g *Game) Draw(playerID string, now time.Time) (domino.Domino, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.variant != VariantDraw {
		return domino.Domino{}, errors.New(errors.ErrCodeInvalidMove, "drawing is only allowed in the draw variant")
	}
	if g.status != StatusPlaying {
		return domino.Domino{}, errors.New(errors.ErrCodeWrongPhase, "game is not in progress")
	}
	if g.currentTurn != playerID {
		return domino.Domino{}, errors.New(errors.ErrCodeNotYourTurn, "it's not your turn")
	}
	p := g.playerLocked(playerID)
	if p == nil {
		return domino.Domino{}, errors.New(errors.ErrCodePlayerNotFound, "player %s not found", playerID)
	}
	if len(g.validMovesLocked(playerID)) > 0 {
		return domino.Domino{}, errors.New(errors.ErrCodeInvalidMove, "you have valid moves available")
	}
	if len(g.boneyard) == 0 {
		return domino.Domino{}, errors.New(errors.ErrCodeInvalidMove, "the boneyard is empty")
	}

	i := g.rng.IntN(len(g.boneyard))
	tile := g.boneyard[i]
	g.boneyard = append(g.boneyard[:i], g.boneyard[i+1:]...)
	p.Hand = append(p.Hand, tile)

	// Drawing keeps the turn; the timer restarts so slow boneyards
	// don't eat the whole clock.
	g.turnStartedAt = now
	g.touchLocked()
	return tile, nil
}

// ===== Turn and Round Progression =====

// advanceTurnLocked moves play one seat clockwise and restarts the timer.
func (g *Game) advanceTurnLocked(now time.Time) {
	if g.currentTurn == "" || len(g.players) == 0 {
		return
	}
	i := g.playerIndexLocked(g.currentTurn)
	g.currentTurn = g.players[(i+1)%len(g.players)].ID
	g.turnStartedAt = now
}

// checkRoundOverLocked finishes the round when a hand empties or every
// player is stuck. The blocked winner is the lowest remaining pip total,
// earliest seat breaking ties.
func (g *Game) checkRoundOverLocked() bool {
	for _, p := range g.players {
		if len(p.Hand) == 0 {
			g.status = StatusFinished
			g.winnerID = p.ID
			g.currentTurn = ""
			return true
		}
	}

	// In the draw variant a non-empty boneyard means somebody can
	// still draw, so the round is not blocked yet.
	if g.variant == VariantDraw && len(g.boneyard) > 0 {
		return false
	}

	for _, p := range g.players {
		if len(g.validMovesLocked(p.ID)) > 0 {
			return false
		}
	}

	g.status = StatusFinished
	g.capicu = false
	winner := g.players[0]
	for _, p := range g.players[1:] {
		if p.HandTotal() < winner.HandTotal() {
			winner = p
		}
	}
	g.winnerID = winner.ID
	g.currentTurn = ""
	return true
}

// Blocked reports whether the finished round ended with every hand
// still holding tiles.
func (g *Game) Blocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusFinished {
		return false
	}
	for _, p := range g.players {
		if len(p.Hand) == 0 {
			return false
		}
	}
	return true
}

// ===== Timers =====

// TurnExpired reports whether the current player has overrun the turn
// timeout. Disconnected players are exempt so reconnects aren't punished.
func (g *Game) TurnExpired(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.turnTimeout <= 0 || g.status != StatusPlaying || g.currentTurn == "" {
		return false
	}
	p := g.playerLocked(g.currentTurn)
	if p == nil || p.CPU || !p.Connected {
		return false
	}
	if g.turnStartedAt.IsZero() {
		return false
	}
	return now.Sub(g.turnStartedAt) >= g.turnTimeout
}

// TurnAge returns how long the current turn has been open. Zero when no
// turn is running. Used to pace CPU seats.
func (g *Game) TurnAge(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusPlaying || g.turnStartedAt.IsZero() {
		return 0
	}
	return now.Sub(g.turnStartedAt)
}

// TurnRemaining returns the seconds left on the current turn, or a
// negative value when no timer is running.
func (g *Game) TurnRemaining(now time.Time) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.turnTimeout <= 0 || g.status != StatusPlaying || g.turnStartedAt.IsZero() {
		return -1
	}
	remaining := g.turnTimeout - now.Sub(g.turnStartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining.Seconds()
}
