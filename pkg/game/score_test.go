package game

import (
	"testing"
	"time"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/errors"
)

func TestRemainingPips(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4", "2-1"}, // 13
		[]string{"5-5"},        // 10
	)

	pips := g.RemainingPips()
	if pips[ids[0]] != 13 {
		t.Errorf("pips[0] = %d, want 13", pips[ids[0]])
	}
	if pips[ids[1]] != 10 {
		t.Errorf("pips[1] = %d, want 10", pips[ids[1]])
	}
}

func TestRoundPointsNotFinished(t *testing.T) {
	g, _ := testGame(t, VariantBlock, []string{"6-4"}, []string{"5-5"})

	if _, _, _, err := g.RoundPoints(); !errors.Is(err, errors.ErrCodeWrongPhase) {
		t.Errorf("RoundPoints() error = %v, want WRONG_PHASE", err)
	}
}

func TestRoundPointsDominoed(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5", "1-1"}, // 12 pips left behind
	)
	setBoard(g, "2-6")

	if err := g.Play(ids[0], domino.MustParse("6-4"), SideRight, time.Now()); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	winner, points, pips, err := g.RoundPoints()
	if err != nil {
		t.Fatalf("RoundPoints() error: %v", err)
	}
	if winner != ids[0] {
		t.Errorf("winner = %q, want %q", winner, ids[0])
	}
	if points != 12 {
		t.Errorf("points = %d, want 12", points)
	}
	if pips[ids[0]] != 0 || pips[ids[1]] != 12 {
		t.Errorf("pips = %v, want 0 and 12", pips)
	}
}

func TestRoundPointsBlocked(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"1-2"}, // 3 pips
		[]string{"4-5"}, // 9 pips
	)
	setBoard(g, "6-6")

	if err := g.Pass(ids[0], time.Now()); err != nil {
		t.Fatalf("Pass() error: %v", err)
	}

	winner, points, _, err := g.RoundPoints()
	if err != nil {
		t.Fatalf("RoundPoints() error: %v", err)
	}
	if winner != ids[0] {
		t.Errorf("winner = %q, want %q", winner, ids[0])
	}
	// Blocked scoring is the difference, 9 - 3.
	if points != 6 {
		t.Errorf("points = %d, want 6", points)
	}
}

func TestRoundPointsBlockedFloorsAtZero(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-6"},        // 12 pips
		[]string{"5-4", "2-1"}, // 12 pips
	)
	setBoard(g, "3-0")

	if err := g.Pass(ids[0], time.Now()); err != nil {
		t.Fatalf("Pass() error: %v", err)
	}

	winner, points, _, err := g.RoundPoints()
	if err != nil {
		t.Fatalf("RoundPoints() error: %v", err)
	}
	// Equal pip totals: earliest seat wins, zero points.
	if winner != ids[0] {
		t.Errorf("winner = %q, want %q", winner, ids[0])
	}
	if points != 0 {
		t.Errorf("points = %d, want 0", points)
	}
}

func TestTeamRoundPointsDominoed(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5"}, // 10
		[]string{"1-1"}, // 2
		[]string{"2-3"}, // 5
	)
	setBoard(g, "2-6")
	teamA, teamB := []string{ids[0], ids[2]}, []string{ids[1], ids[3]}

	if err := g.Play(ids[0], domino.MustParse("6-4"), SideRight, time.Now()); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	team, points, pips, err := g.TeamRoundPoints(teamA, teamB)
	if err != nil {
		t.Fatalf("TeamRoundPoints() error: %v", err)
	}
	if team != "team_a" {
		t.Errorf("winning team = %q, want team_a", team)
	}
	// Dominoed: the losing pair's full 10 + 5.
	if points != 15 {
		t.Errorf("points = %d, want 15", points)
	}
	if pips[ids[1]] != 10 || pips[ids[3]] != 5 {
		t.Errorf("pips = %v, want 10 and 5 for the losing pair", pips)
	}
}

func TestTeamRoundPointsBlocked(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"1-2"}, // 3
		[]string{"4-5"}, // 9
		[]string{"0-1"}, // 1, lowest hand wins the block
		[]string{"2-3"}, // 5
	)
	setBoard(g, "6-6")
	teamA, teamB := []string{ids[0], ids[2]}, []string{ids[1], ids[3]}

	if err := g.Pass(ids[0], time.Now()); err != nil {
		t.Fatalf("Pass() error: %v", err)
	}

	team, points, _, err := g.TeamRoundPoints(teamA, teamB)
	if err != nil {
		t.Fatalf("TeamRoundPoints() error: %v", err)
	}
	if team != "team_a" {
		t.Errorf("winning team = %q, want team_a", team)
	}
	// Blocked: team pip difference, (9+5) - (3+1).
	if points != 10 {
		t.Errorf("points = %d, want 10", points)
	}
}

func TestVariantPointsReturnsCopy(t *testing.T) {
	g, ids := testGame(t, VariantAllFives,
		[]string{"5-5", "1-1"},
		[]string{"2-2"},
	)
	if err := g.Play(ids[0], domino.MustParse("5-5"), SideLeft, time.Now()); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	points := g.VariantPoints()
	points[ids[0]] = 999

	if again := g.VariantPoints(); again[ids[0]] != 10 {
		t.Errorf("VariantPoints() = %d after caller mutation, want 10", again[ids[0]])
	}
}
