// Package rooms manages the live tables of a server: creating and
// joining games, creator privileges, CPU seats, and the background
// loops that keep tables moving (CPU pacing, turn and picking timeouts,
// stale-room cleanup).
package rooms

import (
	"time"

	"github.com/capicuhq/capicu/pkg/errors"
	"github.com/capicuhq/capicu/pkg/game"
)

// ===== Room =====

// Room is one table: a game plus the match scores that span its rounds.
// The underlying game and match guard their own state, so a Room carries
// no lock of its own.
type Room struct {
	game  *game.Game
	match *game.Match
}

func newRoom(g *game.Game, m *game.Match) *Room {
	return &Room{game: g, match: m}
}

// ID returns the room id, which is the game id.
func (r *Room) ID() string { return r.game.ID() }

// Game returns the table's game.
func (r *Room) Game() *game.Game { return r.game }

// Match returns the cross-round score keeper.
func (r *Room) Match() *game.Match { return r.match }

// IsCreator reports whether the player holds table privileges. The
// creator is whoever took the first seat.
func (r *Room) IsCreator(playerID string) bool {
	return playerID != "" && playerID == r.game.CreatorID()
}

// Info is the lobby-listing summary of a room.
type Info struct {
	ID          string       `json:"id"`
	Variant     game.Variant `json:"variant"`
	Status      game.Status  `json:"status"`
	Players     []string     `json:"players"`
	PlayerCount int          `json:"player_count"`
	MaxPlayers  int          `json:"max_players"`
	TargetScore int          `json:"target_score"`
	Round       int          `json:"round"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Info builds the lobby summary.
func (r *Room) Info() Info {
	players := r.game.Players()
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return Info{
		ID:          r.game.ID(),
		Variant:     r.game.Variant(),
		Status:      r.game.Status(),
		Players:     names,
		PlayerCount: len(players),
		MaxPlayers:  r.game.MaxPlayers(),
		TargetScore: r.match.TargetScore(),
		Round:       r.game.RoundNumber(),
		CreatedAt:   r.game.CreatedAt(),
	}
}

// ===== Seating =====

// Join seats a new human player. Filling the last seat starts the
// picking phase; the returned bool reports that start.
func (r *Room) Join(name string, now time.Time) (game.Player, bool, error) {
	p, err := r.game.Join(name)
	if err != nil {
		return game.Player{}, false, err
	}
	return p, r.startIfFull(now), nil
}

// AddCPU seats a CPU player named after an unused species. Creator
// only. As with Join, filling the table starts the picking phase.
func (r *Room) AddCPU(playerID string, now time.Time) (game.Player, bool, error) {
	if !r.IsCreator(playerID) {
		return game.Player{}, false, errors.New(errors.ErrCodeNotCreator, "only the table creator can add CPU players")
	}
	players := r.game.Players()
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	p, err := r.game.AddCPU(game.CPUName(names))
	if err != nil {
		return game.Player{}, false, err
	}
	return p, r.startIfFull(now), nil
}

// startIfFull opens the picking phase when every seat is taken. Exactly
// one caller wins the transition; the rest see the phase already open.
func (r *Room) startIfFull(now time.Time) bool {
	if !r.game.Full() {
		return false
	}
	r.match.FinalizeSeating()
	return r.game.StartPicking(now) == nil
}

// ===== Creator Controls =====

// Start opens the picking phase before the table is full. Creator only;
// the game still requires its minimum seat count.
func (r *Room) Start(playerID string, now time.Time) error {
	if !r.IsCreator(playerID) {
		return errors.New(errors.ErrCodeNotCreator, "only the table creator can start the game")
	}
	r.match.FinalizeSeating()
	return r.game.StartPicking(now)
}

// NextRound begins the next round of the match, the previous winner
// leading. Creator only. Returns false when the match is already
// decided.
func (r *Room) NextRound(playerID string, now time.Time) (bool, error) {
	if !r.IsCreator(playerID) {
		return false, errors.New(errors.ErrCodeNotCreator, "only the table creator can start the next round")
	}
	return r.match.StartNextRound(now)
}

// ===== Round Completion =====

// FinishRound folds a finished round into the match if it hasn't been
// recorded yet. The bool reports a fresh record; callers broadcast only
// then. matchWinner is non-empty once the match is decided.
func (r *Room) FinishRound() (result game.RoundResult, matchWinner string, recorded bool) {
	result, err := r.match.CompleteRound()
	if err != nil {
		return game.RoundResult{}, "", false
	}
	return result, r.match.Winner(), true
}
