package game

import (
	"testing"
	"time"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/errors"
)

func TestNewMatchTargetBounds(t *testing.T) {
	g, _ := testGame(t, VariantBlock, []string{"6-4"}, []string{"5-5"})

	tests := []struct {
		name    string
		target  int
		wantErr bool
	}{
		{"minimum", MinTargetScore, false},
		{"maximum", MaxTargetScore, false},
		{"default", DefaultTargetScore, false},
		{"below minimum", MinTargetScore - 1, true},
		{"above maximum", MaxTargetScore + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatch(g, tt.target)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("NewMatch() error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMatch() error: %v", err)
			}
			if m.TargetScore() != tt.target {
				t.Errorf("TargetScore() = %d, want %d", m.TargetScore(), tt.target)
			}
			if len(m.ID()) != 8 {
				t.Errorf("match id %q length = %d, want 8", m.ID(), len(m.ID()))
			}
		})
	}
}

func TestMatchIndividualScoring(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5", "1-1"},
	)
	setBoard(g, "2-6")
	m, err := NewMatch(g, 100, WithMatchSeed(3))
	if err != nil {
		t.Fatalf("NewMatch() error: %v", err)
	}

	if _, err := m.CompleteRound(); !errors.Is(err, errors.ErrCodeWrongPhase) {
		t.Fatalf("CompleteRound() before finish error = %v, want WRONG_PHASE", err)
	}

	if err := g.Play(ids[0], domino.MustParse("6-4"), SideRight, time.Now()); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	result, err := m.CompleteRound()
	if err != nil {
		t.Fatalf("CompleteRound() error: %v", err)
	}
	if result.RoundNumber != 1 {
		t.Errorf("RoundNumber = %d, want 1", result.RoundNumber)
	}
	if result.WinnerID != ids[0] {
		t.Errorf("WinnerID = %q, want %q", result.WinnerID, ids[0])
	}
	if result.PointsAwarded != 12 {
		t.Errorf("PointsAwarded = %d, want 12", result.PointsAwarded)
	}
	if result.WasBlocked {
		t.Error("WasBlocked = true for a dominoed finish")
	}

	scores := m.Scores()
	if scores[ids[0]] != 12 || scores[ids[1]] != 0 {
		t.Errorf("Scores() = %v, want 12 and 0", scores)
	}
	if m.Winner() != "" {
		t.Errorf("Winner() = %q before the target, want empty", m.Winner())
	}

	// The same round cannot be folded in twice.
	if _, err := m.CompleteRound(); !errors.Is(err, errors.ErrCodeWrongPhase) {
		t.Errorf("second CompleteRound() error = %v, want WRONG_PHASE", err)
	}
}

func TestMatchWinnerAtTarget(t *testing.T) {
	g, ids := testGame(t, VariantBlock, []string{"6-4"}, []string{"5-5"})
	m, err := NewMatch(g, MinTargetScore)
	if err != nil {
		t.Fatalf("NewMatch() error: %v", err)
	}

	m.mu.Lock()
	m.individualScores[ids[0]] = MinTargetScore
	m.mu.Unlock()

	if m.Winner() != ids[0] {
		t.Errorf("Winner() = %q, want %q", m.Winner(), ids[0])
	}
	started, err := m.StartNextRound(time.Now())
	if err != nil {
		t.Fatalf("StartNextRound() error: %v", err)
	}
	if started {
		t.Error("StartNextRound() = true after the match is decided")
	}
	if m.State().MatchWinner != ids[0] {
		t.Errorf("State().MatchWinner = %q, want %q", m.State().MatchWinner, ids[0])
	}
}

func TestStartNextRoundWinnerLeads(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5", "1-1"},
	)
	setBoard(g, "2-6")
	m, _ := NewMatch(g, 100)

	if err := g.Play(ids[0], domino.MustParse("6-4"), SideRight, time.Now()); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if _, err := m.CompleteRound(); err != nil {
		t.Fatalf("CompleteRound() error: %v", err)
	}

	started, err := m.StartNextRound(time.Now())
	if err != nil {
		t.Fatalf("StartNextRound() error: %v", err)
	}
	if !started {
		t.Fatal("StartNextRound() = false, want true")
	}
	if g.Status() != StatusPicking {
		t.Errorf("Status() = %v, want picking", g.Status())
	}
	if g.RoundNumber() != 2 {
		t.Errorf("RoundNumber() = %d, want 2", g.RoundNumber())
	}
	g.mu.Lock()
	hint := g.startHint
	g.mu.Unlock()
	if hint != ids[0] {
		t.Errorf("start hint = %q, want previous winner %q", hint, ids[0])
	}
}

func TestFinalizeSeatingTeams(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5"},
		[]string{"1-1"},
		[]string{"2-3"},
	)
	m, _ := NewMatch(g, 100, WithMatchSeed(17))

	m.FinalizeSeating()

	if !m.IsTeamGame() {
		t.Fatal("IsTeamGame() = false with four seats")
	}
	state := m.State()
	if len(state.TeamA) != 2 || state.TeamA[0] != ids[0] || state.TeamA[1] != ids[2] {
		t.Errorf("TeamA = %v, want seats 0 and 2", state.TeamA)
	}
	if len(state.TeamB) != 2 || state.TeamB[0] != ids[1] || state.TeamB[1] != ids[3] {
		t.Errorf("TeamB = %v, want seats 1 and 3", state.TeamB)
	}
	if state.TeamAName == "" || state.TeamAName == state.TeamBName {
		t.Errorf("team names = %q, %q, want two distinct names", state.TeamAName, state.TeamBName)
	}
	if state.Scores != nil {
		t.Error("individual scores should be dropped in a team game")
	}

	// Avatars are dealt once, distinct, and from the pool.
	if len(state.AvatarIDs) != 4 {
		t.Fatalf("len(AvatarIDs) = %d, want 4", len(state.AvatarIDs))
	}
	seen := make(map[int]bool)
	pool := make(map[int]bool)
	for _, id := range AvatarPool {
		pool[id] = true
	}
	for _, id := range state.AvatarIDs {
		if seen[id] {
			t.Errorf("avatar %d dealt twice", id)
		}
		if !pool[id] {
			t.Errorf("avatar %d is not in the pool", id)
		}
		seen[id] = true
	}
	for i, p := range g.Players() {
		if p.AvatarID != state.AvatarIDs[i] {
			t.Errorf("seat %d avatar = %d, want %d", i, p.AvatarID, state.AvatarIDs[i])
		}
	}

	// A second call must not reshuffle.
	m.FinalizeSeating()
	if again := m.State(); again.AvatarIDs[0] != state.AvatarIDs[0] {
		t.Error("FinalizeSeating() reshuffled avatars on the second call")
	}
}

func TestMatchTeamScoring(t *testing.T) {
	g, ids := testGame(t, VariantBlock,
		[]string{"6-4"},
		[]string{"5-5"},
		[]string{"1-1"},
		[]string{"2-3"},
	)
	m, _ := NewMatch(g, 100, WithMatchSeed(17))
	m.FinalizeSeating()
	setBoard(g, "2-6")

	if err := g.Play(ids[0], domino.MustParse("6-4"), SideRight, time.Now()); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	result, err := m.CompleteRound()
	if err != nil {
		t.Fatalf("CompleteRound() error: %v", err)
	}
	if result.WinnerTeam != "team_a" {
		t.Errorf("WinnerTeam = %q, want team_a", result.WinnerTeam)
	}
	// Dominoed team win collects the opposing pair's 10 + 5.
	if result.PointsAwarded != 15 {
		t.Errorf("PointsAwarded = %d, want 15", result.PointsAwarded)
	}

	scores := m.Scores()
	if scores["team_a"] != 15 || scores["team_b"] != 0 {
		t.Errorf("Scores() = %v, want team_a 15 team_b 0", scores)
	}
}

func TestMatchFoldsVariantPoints(t *testing.T) {
	g, ids := testGame(t, VariantAllFives,
		[]string{"5-5"},
		[]string{"2-2", "1-0"},
	)
	m, _ := NewMatch(g, 100)

	// 5-5 opens for ten and empties the hand in one stroke.
	if err := g.Play(ids[0], domino.MustParse("5-5"), SideLeft, time.Now()); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	result, err := m.CompleteRound()
	if err != nil {
		t.Fatalf("CompleteRound() error: %v", err)
	}
	if result.PointsAwarded != 5 {
		t.Errorf("PointsAwarded = %d, want opponents' 5 pips", result.PointsAwarded)
	}
	if result.VariantPoints[ids[0]] != 10 {
		t.Errorf("VariantPoints = %v, want 10 for the opener", result.VariantPoints)
	}

	// Round pips plus the mid-round ten.
	if scores := m.Scores(); scores[ids[0]] != 15 {
		t.Errorf("Scores() = %v, want 15", scores)
	}
}

func TestMatchState(t *testing.T) {
	g, ids := testGame(t, VariantBlock, []string{"6-4"}, []string{"5-5"})
	m, _ := NewMatch(g, 150)

	state := m.State()
	if state.ID != m.ID() {
		t.Errorf("state.ID = %q, want %q", state.ID, m.ID())
	}
	if state.TargetScore != 150 {
		t.Errorf("TargetScore = %d, want 150", state.TargetScore)
	}
	if state.CurrentRound != 1 {
		t.Errorf("CurrentRound = %d, want 1", state.CurrentRound)
	}
	if state.IsTeamGame {
		t.Error("IsTeamGame = true with two seats")
	}
	if state.PlayerNames[ids[0]] != "Ana" || state.PlayerNames[ids[1]] != "Beto" {
		t.Errorf("PlayerNames = %v", state.PlayerNames)
	}
	if len(state.PlayerPositions) != 2 || state.PlayerPositions[0] != ids[0] {
		t.Errorf("PlayerPositions = %v, want seat order", state.PlayerPositions)
	}
	if state.MatchWinner != "" {
		t.Errorf("MatchWinner = %q, want empty", state.MatchWinner)
	}
	if len(state.CompletedRounds) != 0 {
		t.Errorf("CompletedRounds = %v, want empty", state.CompletedRounds)
	}
}
