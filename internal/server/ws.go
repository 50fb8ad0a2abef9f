package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/errors"
	"github.com/capicuhq/capicu/pkg/game"
	"github.com/capicuhq/capicu/pkg/rooms"
)

// handleWS upgrades /ws/{gameID}/{playerID} to a socket. Unknown games
// and players are rejected before the upgrade so clients get a plain
// HTTP status instead of a half-open connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	playerID := chi.URLParam(r, "playerID")

	room, err := s.manager.Get(gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	player, ok := room.Game().Player(playerID)
	if !ok {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	// The listener-wide write timeout would sever long-lived sockets;
	// the pumps manage their own deadlines.
	rc := http.NewResponseController(w)
	rc.SetReadDeadline(time.Time{})
	rc.SetWriteDeadline(time.Time{})

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "game", gameID, "player", playerID, "err", err)
		return
	}

	c := newClient(conn, gameID, playerID)
	if old := s.hub.add(c); old != nil {
		old.conn.Close()
	}
	go c.writePump()

	now := time.Now().UTC()
	room.Game().SetConnected(playerID, true, now)
	s.log.Info("player connected", "game", gameID, "player", player.Name)

	// The connector sees the full table immediately; everyone else just
	// learns they are online.
	c.push(encode(MsgGameState, s.stateFor(room, playerID, now)))
	s.hub.broadcastExcept(gameID, playerID, encode(MsgPlayerConnected, PlayerPresencePayload{
		PlayerID:   playerID,
		PlayerName: player.Name,
	}))

	s.readPump(c, room)
}

// readPump consumes frames until the socket dies, then runs disconnect
// cleanup unless a reconnect has already taken over the seat.
func (s *Server) readPump(c *client, room *rooms.Room) {
	defer func() {
		if s.hub.remove(c) {
			room.Game().SetConnected(c.playerID, false, time.Now().UTC())
			s.hub.broadcast(c.gameID, encode(MsgPlayerDisconnected, PlayerPresencePayload{
				PlayerID: c.playerID,
			}))
			s.log.Info("player disconnected", "game", c.gameID, "player", c.playerID)
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.push(encode(MsgError, ErrorPayload{
				Code:    string(errors.ErrCodeInvalidInput),
				Message: "invalid message frame",
			}))
			continue
		}
		s.dispatch(c, room, env)
	}
}

// dispatch routes one client message to the game it belongs to and
// broadcasts the outcome. Errors go back to the sender only.
func (s *Server) dispatch(c *client, room *rooms.Room, env Envelope) {
	now := time.Now().UTC()
	g := room.Game()

	switch env.Type {
	case MsgPlayTile:
		var p PlayTilePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			s.sendErr(c, errors.New(errors.ErrCodeInvalidInput, "invalid %s payload", env.Type))
			return
		}
		tile, err := domino.New(p.Domino.Left, p.Domino.Right)
		if err != nil {
			s.sendErr(c, err)
			return
		}
		side, err := game.ParseSide(p.Side)
		if err != nil {
			s.sendErr(c, err)
			return
		}
		if err := g.Play(c.playerID, tile, side, now); err != nil {
			s.sendErr(c, err)
			return
		}
		s.log.Debug("tile played", "game", c.gameID, "player", c.playerID, "tile", tile, "side", side)
		s.hub.broadcast(c.gameID, encode(MsgTilePlayed, TilePlayedPayload{
			PlayerID: c.playerID,
			Domino:   tile,
			Side:     side,
		}))
		s.broadcastState(room)
		s.manager.FinishRound(context.Background(), room)

	case MsgPassTurn:
		if err := g.Pass(c.playerID, now); err != nil {
			s.sendErr(c, err)
			return
		}
		s.hub.broadcast(c.gameID, encode(MsgTurnPassed, TurnPassedPayload{PlayerID: c.playerID}))
		s.broadcastState(room)
		s.manager.FinishRound(context.Background(), room)

	case MsgDrawTile:
		if _, err := g.Draw(c.playerID, now); err != nil {
			s.sendErr(c, err)
			return
		}
		// The drawn tile reaches only the drawer, inside their state push.
		s.hub.broadcast(c.gameID, encode(MsgTileDrawn, TileDrawnPayload{
			PlayerID:      c.playerID,
			BoneyardCount: g.BoneyardCount(),
		}))
		s.broadcastState(room)

	case MsgStartGame:
		if err := room.Start(c.playerID, now); err != nil {
			s.sendErr(c, err)
			return
		}
		s.hub.broadcast(c.gameID, encode(MsgGameStarted, nil))
		s.broadcastState(room)

	case MsgAddCPU:
		cpu, started, err := room.AddCPU(c.playerID, now)
		if err != nil {
			s.sendErr(c, err)
			return
		}
		s.hub.broadcast(c.gameID, encode(MsgCPUAdded, CPUAddedPayload{
			PlayerID:    cpu.ID,
			PlayerName:  cpu.Name,
			PlayerCount: g.PlayerCount(),
		}))
		s.broadcastState(room)
		if started {
			s.hub.broadcast(c.gameID, encode(MsgGameStarted, nil))
		}

	case MsgClaimTile:
		var p ClaimTilePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.TileIndex == nil {
			s.sendErr(c, errors.New(errors.ErrCodeInvalidInput, "claim_tile requires a tile_index"))
			return
		}
		started, err := g.ClaimTile(c.playerID, *p.TileIndex, now)
		if err != nil {
			s.sendErr(c, err)
			return
		}
		s.hub.broadcast(c.gameID, encode(MsgTileClaimed, TileClaimedPayload{
			PlayerID:  c.playerID,
			TileIndex: *p.TileIndex,
		}))
		s.broadcastState(room)
		if started {
			s.hub.broadcast(c.gameID, encode(MsgGameStarted, nil))
		}

	case MsgGetValidMoves:
		moves := g.ValidMoves(c.playerID)
		if moves == nil {
			moves = []game.Move{}
		}
		c.push(encode(MsgValidMoves, ValidMovesPayload{Moves: moves}))

	case MsgReaction:
		var p ReactionPayload
		if len(env.Payload) > 0 {
			json.Unmarshal(env.Payload, &p)
		}
		if p.Emoji == "" {
			p.Emoji = "👍"
		}
		player, _ := g.Player(c.playerID)
		s.hub.broadcast(c.gameID, encode(MsgReaction, ReactionBroadcast{
			PlayerID:   c.playerID,
			PlayerName: player.Name,
			Emoji:      p.Emoji,
		}))

	case MsgNextRound:
		if g.Status() != game.StatusFinished {
			s.sendErr(c, errors.New(errors.ErrCodeWrongPhase, "current round is not finished"))
			return
		}
		ok, err := room.NextRound(c.playerID, now)
		if err != nil {
			s.sendErr(c, err)
			return
		}
		if !ok {
			s.sendErr(c, errors.New(errors.ErrCodeWrongPhase, "match is already decided"))
			return
		}
		s.hub.broadcast(c.gameID, encode(MsgRoundStarted, RoundStartedPayload{
			RoundNumber: g.RoundNumber(),
		}))
		s.broadcastState(room)

	default:
		s.sendErr(c, errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", env.Type))
	}
}

// sendErr reports a rejected request back to its sender.
func (s *Server) sendErr(c *client, err error) {
	c.push(encode(MsgError, ErrorPayload{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}))
}
