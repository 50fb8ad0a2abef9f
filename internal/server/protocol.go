package server

import (
	"encoding/json"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/game"
)

// Envelope frames every WebSocket message in both directions. Payload
// stays raw until the type is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client message types.
const (
	MsgPlayTile      = "play_tile"
	MsgPassTurn      = "pass_turn"
	MsgDrawTile      = "draw_tile"
	MsgStartGame     = "start_game"
	MsgAddCPU        = "add_cpu"
	MsgClaimTile     = "claim_tile"
	MsgGetValidMoves = "get_valid_moves"
	MsgReaction      = "reaction"
	MsgNextRound     = "next_round"
)

// Server message types.
const (
	MsgError              = "error"
	MsgGameState          = "game_state"
	MsgTilePlayed         = "tile_played"
	MsgTurnPassed         = "turn_passed"
	MsgTileDrawn          = "tile_drawn"
	MsgGameStarted        = "game_started"
	MsgCPUAdded           = "cpu_added"
	MsgTileClaimed        = "tile_claimed"
	MsgValidMoves         = "valid_moves"
	MsgPlayerJoined       = "player_joined"
	MsgPlayerConnected    = "player_connected"
	MsgPlayerDisconnected = "player_disconnected"
	MsgRoundStarted       = "round_started"
	MsgRoundOver          = "round_over"
	MsgMatchOver          = "match_over"
	MsgTilesAutoAssigned  = "tiles_auto_assigned"
)

// PlayTilePayload asks to place one tile on a chain end.
type PlayTilePayload struct {
	Domino TileRef `json:"domino"`
	Side   string  `json:"side"`
}

// TileRef spells a tile by its pip halves.
type TileRef struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// ClaimTilePayload asks to claim one face-down grid position while
// picking. The pointer distinguishes a missing index from position 0.
type ClaimTilePayload struct {
	TileIndex *int `json:"tile_index"`
}

// ReactionPayload carries an emoji to mirror to the table.
type ReactionPayload struct {
	Emoji string `json:"emoji"`
}

// ErrorPayload reports a rejected request. Also used as the REST error
// body so clients parse one shape everywhere.
type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// GameStatePayload is one player's sanitized view plus the standing of
// the match around it.
type GameStatePayload struct {
	game.View
	Match game.MatchState `json:"match"`
}

// TilePlayedPayload announces a placed tile. Drawn counts the boneyard
// tiles picked up first when the mover had no playable tile.
type TilePlayedPayload struct {
	PlayerID   string        `json:"player_id"`
	Domino     domino.Domino `json:"domino"`
	Side       game.Side     `json:"side"`
	AutoPlayed bool          `json:"auto_played,omitempty"`
	Drawn      int           `json:"drawn,omitempty"`
}

// TurnPassedPayload announces a passed turn.
type TurnPassedPayload struct {
	PlayerID   string `json:"player_id"`
	AutoPassed bool   `json:"auto_passed,omitempty"`
}

// TileDrawnPayload announces a boneyard draw. The tile itself is
// private; the drawer sees it in their next state push.
type TileDrawnPayload struct {
	PlayerID      string `json:"player_id"`
	BoneyardCount int    `json:"boneyard_count"`
}

// CPUAddedPayload announces a CPU filling a seat.
type CPUAddedPayload struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	PlayerCount int    `json:"player_count"`
}

// TileClaimedPayload announces a claimed picking position.
type TileClaimedPayload struct {
	PlayerID  string `json:"player_id"`
	TileIndex int    `json:"tile_index"`
}

// ValidMovesPayload answers a get_valid_moves request. Sent only to the
// requester.
type ValidMovesPayload struct {
	Moves []game.Move `json:"moves"`
}

// PlayerJoinedPayload announces a new seat at the table.
type PlayerJoinedPayload struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	PlayerCount int    `json:"player_count"`
}

// PlayerPresencePayload announces a socket coming or going.
type PlayerPresencePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
}

// ReactionBroadcast mirrors an emoji to the whole table.
type ReactionBroadcast struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Emoji      string `json:"emoji"`
}

// RoundStartedPayload announces a fresh round of the match.
type RoundStartedPayload struct {
	RoundNumber int `json:"round_number"`
}

// RoundOverPayload carries the round outcome and the updated match
// scores. MatchWinner is non-empty when this round decided the match.
type RoundOverPayload struct {
	RoundNumber   int            `json:"round_number"`
	WinnerID      string         `json:"winner_id,omitempty"`
	WinnerName    string         `json:"winner_name,omitempty"`
	WinnerTeam    string         `json:"winner_team,omitempty"`
	PointsAwarded int            `json:"points_awarded"`
	RemainingPips map[string]int `json:"remaining_pips"`
	WasBlocked    bool           `json:"was_blocked"`
	Capicu        bool           `json:"capicu,omitempty"`
	Scores        map[string]int `json:"scores"`
	MatchWinner   string         `json:"match_winner,omitempty"`
	IsTeamGame    bool           `json:"is_team_game"`
}

// MatchOverPayload closes the match.
type MatchOverPayload struct {
	Winner      string         `json:"winner"`
	WinnerNames []string       `json:"winner_names,omitempty"`
	IsTeamGame  bool           `json:"is_team_game"`
	FinalScores map[string]int `json:"final_scores"`
	TotalRounds int            `json:"total_rounds"`
}

// TilesAutoAssignedPayload announces slow pickers being dealt their
// remaining tiles when the picking timer runs out.
type TilesAutoAssignedPayload struct {
	Counts map[string]int `json:"counts"`
	Reason string         `json:"reason"`
}

// encode marshals an envelope for the wire. Payloads are our own
// structs, so marshal errors cannot occur.
func encode(msgType string, payload any) []byte {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, _ := json.Marshal(payload)
		env.Payload = raw
	}
	b, _ := json.Marshal(env)
	return b
}
