package server

import (
	"context"
	"strings"
	"time"

	"github.com/capicuhq/capicu/pkg/game"
	"github.com/capicuhq/capicu/pkg/history"
	"github.com/capicuhq/capicu/pkg/rooms"
)

// loopEvents turns manager loop notifications into hub broadcasts. The
// callbacks run on the manager's tick goroutine, so anything slow (the
// match archive) is handed off to its own goroutine.
type loopEvents struct {
	s *Server
}

var _ rooms.Events = (*loopEvents)(nil)

func (e *loopEvents) AutoPlayed(roomID, playerID string, move *game.Move, drawn int, timedOut bool) {
	if move != nil {
		e.s.hub.broadcast(roomID, encode(MsgTilePlayed, TilePlayedPayload{
			PlayerID:   playerID,
			Domino:     move.Tile,
			Side:       move.Side,
			AutoPlayed: timedOut,
			Drawn:      drawn,
		}))
	} else {
		e.s.hub.broadcast(roomID, encode(MsgTurnPassed, TurnPassedPayload{
			PlayerID:   playerID,
			AutoPassed: timedOut,
		}))
	}
	e.s.broadcastRoomState(roomID)
}

func (e *loopEvents) CPUClaimed(roomID, playerID string, position int, started bool) {
	e.s.hub.broadcast(roomID, encode(MsgTileClaimed, TileClaimedPayload{
		PlayerID:  playerID,
		TileIndex: position,
	}))
	e.s.broadcastRoomState(roomID)
	if started {
		e.s.hub.broadcast(roomID, encode(MsgGameStarted, nil))
	}
}

func (e *loopEvents) TilesAutoAssigned(roomID string, counts map[string]int, started bool) {
	e.s.hub.broadcast(roomID, encode(MsgTilesAutoAssigned, TilesAutoAssignedPayload{
		Counts: counts,
		Reason: "timeout",
	}))
	e.s.broadcastRoomState(roomID)
	if started {
		e.s.hub.broadcast(roomID, encode(MsgGameStarted, nil))
	}
}

func (e *loopEvents) RoundFinished(roomID string, result game.RoundResult, matchWinner string) {
	e.s.announceRound(roomID, result, matchWinner)
}

func (e *loopEvents) RoomRemoved(roomID, reason string) {
	e.s.hub.closeGame(roomID)
}

// announceRound broadcasts the round outcome and, when the round
// decided the match, the final standing. Both the socket path and the
// loop path converge here through the manager's RoundFinished event.
func (s *Server) announceRound(roomID string, result game.RoundResult, matchWinner string) {
	room, err := s.manager.Get(roomID)
	if err != nil {
		return
	}
	match := room.Match()
	state := match.State()

	s.hub.broadcast(roomID, encode(MsgRoundOver, RoundOverPayload{
		RoundNumber:   result.RoundNumber,
		WinnerID:      result.WinnerID,
		WinnerName:    state.PlayerNames[result.WinnerID],
		WinnerTeam:    result.WinnerTeam,
		PointsAwarded: result.PointsAwarded,
		RemainingPips: result.RemainingPips,
		WasBlocked:    result.WasBlocked,
		Capicu:        result.Capicu,
		Scores:        match.Scores(),
		MatchWinner:   matchWinner,
		IsTeamGame:    match.IsTeamGame(),
	}))

	if matchWinner == "" {
		return
	}

	rec := history.NewRecord(roomID, string(room.Game().Variant()), room.Game().Players(),
		state, room.Game().CreatedAt(), time.Now().UTC())
	s.hub.broadcast(roomID, encode(MsgMatchOver, MatchOverPayload{
		Winner:      matchWinner,
		WinnerNames: rec.WinnerNames,
		IsTeamGame:  match.IsTeamGame(),
		FinalScores: match.Scores(),
		TotalRounds: len(state.CompletedRounds),
	}))

	go s.recordMatch(rec)
}

// recordMatch archives a finished match and credits the winners.
func (s *Server) recordMatch(rec history.MatchRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.archive.Save(ctx, rec); err != nil {
		s.log.Error("archive match failed", "match", rec.ID, "err", err)
	}
	for _, name := range rec.WinnerNames {
		if err := s.standings.RecordWin(ctx, name); err != nil {
			s.log.Error("record win failed", "player", name, "err", err)
		}
	}
	s.log.Info("match archived", "match", rec.ID, "room", rec.RoomID,
		"winners", strings.Join(rec.WinnerNames, ","))
}

// broadcastRoomState pushes fresh per-player states for a room by ID.
// Rooms already cleaned up are skipped.
func (s *Server) broadcastRoomState(roomID string) {
	room, err := s.manager.Get(roomID)
	if err != nil {
		return
	}
	s.broadcastState(room)
}

// broadcastState pushes each player their own view of the table. Views
// differ per player, so every socket gets its own frame.
func (s *Server) broadcastState(room *rooms.Room) {
	now := time.Now().UTC()
	for _, p := range room.Game().Players() {
		s.hub.sendTo(room.ID(), p.ID, encode(MsgGameState, s.stateFor(room, p.ID, now)))
	}
}

// stateFor builds one player's game_state payload.
func (s *Server) stateFor(room *rooms.Room, playerID string, now time.Time) GameStatePayload {
	return GameStatePayload{
		View:  room.Game().View(playerID, now),
		Match: room.Match().State(),
	}
}
