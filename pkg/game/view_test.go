package game

import (
	"testing"
	"time"

	"github.com/capicuhq/capicu/pkg/domino"
)

func TestViewHidesOpponentHands(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4", "2-1"},
		[]string{"5-5", "3-0", "1-1"},
	)

	v := g.View(ids[0], time.Now())
	if v.YourID != ids[0] {
		t.Errorf("YourID = %q, want %q", v.YourID, ids[0])
	}
	if len(v.Hand) != 2 {
		t.Fatalf("len(Hand) = %d, want own 2 tiles", len(v.Hand))
	}
	if !v.Hand[0].Equals(domino.MustParse("6-4")) {
		t.Errorf("Hand[0] = %v, want 6-4", v.Hand[0])
	}

	if len(v.Players) != 2 {
		t.Fatalf("len(Players) = %d, want 2", len(v.Players))
	}
	// Opponents are reduced to a tile count.
	if v.Players[1].TileCount != 3 {
		t.Errorf("Players[1].TileCount = %d, want 3", v.Players[1].TileCount)
	}
	if v.Players[1].Name != "Beto" {
		t.Errorf("Players[1].Name = %q, want Beto", v.Players[1].Name)
	}
	if v.CurrentTurn != ids[0] {
		t.Errorf("CurrentTurn = %q, want %q", v.CurrentTurn, ids[0])
	}
}

func TestViewSpectator(t *testing.T) {
	g, _ := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5"},
	)

	v := g.View("", time.Now())
	if v.Hand != nil {
		t.Errorf("spectator Hand = %v, want nil", v.Hand)
	}
	if len(v.Players) != 2 {
		t.Errorf("len(Players) = %d, want 2", len(v.Players))
	}
}

func TestViewBoardAndEnds(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5"},
	)
	setBoard(g, "6-2", "2-5")

	v := g.View(ids[0], time.Now())
	if len(v.Board) != 2 {
		t.Fatalf("len(Board) = %d, want 2", len(v.Board))
	}
	if v.Ends.Left == nil || *v.Ends.Left != 6 {
		t.Errorf("Ends.Left = %v, want 6", v.Ends.Left)
	}
	if v.Ends.Right == nil || *v.Ends.Right != 5 {
		t.Errorf("Ends.Right = %v, want 5", v.Ends.Right)
	}

	// Mutating the copy must not touch the table.
	v.Board[0].Tile = domino.MustParse("0-0")
	if !g.Board()[0].Tile.Equals(domino.MustParse("6-2")) {
		t.Error("View() board is not a copy")
	}
}

func TestViewPickingPhase(t *testing.T) {
	g, ids := pickingGame(t, 2)
	t0 := time.Now().UTC()
	g.mu.Lock()
	g.pickingTimeout = 60 * time.Second
	g.pickingStartedAt = t0
	g.mu.Unlock()

	v := g.View(ids[0], t0.Add(15*time.Second))
	if v.Status != StatusPicking {
		t.Fatalf("Status = %v, want picking", v.Status)
	}
	if len(v.PickingPositions) != 28 {
		t.Errorf("len(PickingPositions) = %d, want 28", len(v.PickingPositions))
	}
	if v.PickingRemaining == nil || *v.PickingRemaining != 45 {
		t.Errorf("PickingRemaining = %v, want 45", v.PickingRemaining)
	}
	if v.TurnRemaining != nil {
		t.Error("TurnRemaining set during picking")
	}
}

func TestViewTurnTimer(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5"},
	)
	t0 := time.Now().UTC()
	g.mu.Lock()
	g.turnTimeout = 30 * time.Second
	g.turnStartedAt = t0
	g.mu.Unlock()

	v := g.View(ids[0], t0.Add(10*time.Second))
	if v.TurnRemaining == nil || *v.TurnRemaining != 20 {
		t.Errorf("TurnRemaining = %v, want 20", v.TurnRemaining)
	}

	// Past the deadline the countdown clamps to zero.
	v = g.View(ids[0], t0.Add(time.Minute))
	if v.TurnRemaining == nil || *v.TurnRemaining != 0 {
		t.Errorf("TurnRemaining = %v, want 0", v.TurnRemaining)
	}
}

func TestSnapshotDeepCopy(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4", "2-1"},
		[]string{"5-5"},
	)
	setBoard(g, "6-2")

	s := g.Snapshot()
	if s.ID != g.ID() {
		t.Errorf("snapshot ID = %q, want %q", s.ID, g.ID())
	}
	if len(s.Players) != 2 || len(s.Players[0].Hand) != 2 {
		t.Fatalf("snapshot players = %+v", s.Players)
	}

	s.Players[0].Hand[0] = domino.MustParse("0-0")
	s.Board[0].Tile = domino.MustParse("0-0")

	p, _ := g.Player(ids[0])
	if !p.Hand[0].Equals(domino.MustParse("6-4")) {
		t.Error("Snapshot() hand is not a copy")
	}
	if !g.Board()[0].Tile.Equals(domino.MustParse("6-2")) {
		t.Error("Snapshot() board is not a copy")
	}
}
