package rooms

import "github.com/capicuhq/capicu/pkg/game"

// Events receives notifications from the manager's background loops so
// the transport layer can broadcast them. Callbacks run on the ticking
// goroutine and must return quickly.
type Events interface {
	// AutoPlayed fires when a loop finishes a turn for a seat: a CPU on
	// its normal pace, or a human who overran the clock (timedOut). The
	// move is nil when the turn ended in a pass. drawn counts boneyard
	// tiles taken before the move; the tiles themselves stay private.
	AutoPlayed(roomID, playerID string, move *game.Move, drawn int, timedOut bool)

	// CPUClaimed fires for each picking-grid claim made by a CPU seat.
	// started reports that the claim completed the picking phase.
	CPUClaimed(roomID, playerID string, position int, started bool)

	// TilesAutoAssigned fires when the picking timer fills the remaining
	// hands, with the number of tiles dealt per player.
	TilesAutoAssigned(roomID string, counts map[string]int, started bool)

	// RoundFinished fires once per completed round, after the scores are
	// folded into the match. matchWinner is empty while the match is
	// still live.
	RoundFinished(roomID string, result game.RoundResult, matchWinner string)

	// RoomRemoved fires when the cleanup loop drops a room.
	RoomRemoved(roomID, reason string)
}

// NoopEvents discards all notifications.
type NoopEvents struct{}

var _ Events = NoopEvents{}

func (NoopEvents) AutoPlayed(string, string, *game.Move, int, bool) {}
func (NoopEvents) CPUClaimed(string, string, int, bool)             {}
func (NoopEvents) TilesAutoAssigned(string, map[string]int, bool)   {}
func (NoopEvents) RoundFinished(string, game.RoundResult, string)   {}
func (NoopEvents) RoomRemoved(string, string)                       {}
