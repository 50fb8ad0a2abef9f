package game

import (
	"time"

	"github.com/capicuhq/capicu/pkg/domino"
)

// ===== Per-Player Views =====

// PlayerSummary is the public face of a seat: tile count, never tiles.
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TileCount int    `json:"tile_count"`
	AvatarID  int    `json:"avatar_id"`
	Connected bool   `json:"connected"`
	CPU       bool   `json:"is_cpu"`
}

// View is the game state as one player is allowed to see it: their own
// hand in full, everyone else reduced to counts.
type View struct {
	GameID        string          `json:"game_id"`
	Variant       Variant         `json:"variant"`
	Status        Status          `json:"status"`
	YourID        string          `json:"your_player_id"`
	Hand          []domino.Domino `json:"hand"`
	Players       []PlayerSummary `json:"players"`
	Board         []PlayedTile    `json:"board"`
	Ends          Ends            `json:"ends"`
	BoneyardCount int             `json:"boneyard_count"`
	CurrentTurn   string          `json:"current_turn,omitempty"`
	WinnerID      string          `json:"winner_id,omitempty"`
	Capicu        bool            `json:"capicu,omitempty"`
	RoundNumber   int             `json:"round_number"`

	// PickingPositions lists the unclaimed grid slots while picking.
	PickingPositions []int `json:"picking_positions,omitempty"`

	// Timer fields are only present while the matching timer runs.
	TurnRemaining    *float64 `json:"turn_remaining_seconds,omitempty"`
	PickingRemaining *float64 `json:"picking_remaining_seconds,omitempty"`
}

// View builds the sanitized state for one player.
func (g *Game) View(playerID string, now time.Time) View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		GameID:        g.id,
		Variant:       g.variant,
		Status:        g.status,
		YourID:        playerID,
		Board:         append([]PlayedTile(nil), g.board...),
		Ends:          g.endsCopyLocked(),
		BoneyardCount: len(g.boneyard),
		CurrentTurn:   g.currentTurn,
		WinnerID:      g.winnerID,
		Capicu:        g.capicu,
		RoundNumber:   g.roundNumber,
	}

	if p := g.playerLocked(playerID); p != nil {
		v.Hand = append([]domino.Domino(nil), p.Hand...)
	}

	v.Players = make([]PlayerSummary, len(g.players))
	for i, p := range g.players {
		v.Players[i] = PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			TileCount: len(p.Hand),
			AvatarID:  p.AvatarID,
			Connected: p.Connected,
			CPU:       p.CPU,
		}
	}

	if g.status == StatusPicking {
		v.PickingPositions = g.availablePositionsLocked()
		if g.pickingTimeout > 0 && !g.pickingStartedAt.IsZero() {
			remaining := max(0, (g.pickingTimeout - now.Sub(g.pickingStartedAt)).Seconds())
			v.PickingRemaining = &remaining
		}
	}
	if g.status == StatusPlaying && g.turnTimeout > 0 && !g.turnStartedAt.IsZero() {
		remaining := max(0, (g.turnTimeout - now.Sub(g.turnStartedAt)).Seconds())
		v.TurnRemaining = &remaining
	}
	return v
}

// ===== Full Snapshot =====

// Snapshot is the complete unsanitized game state, used by simulations
// and the match archive. Never send one to a player.
type Snapshot struct {
	ID            string          `json:"id" bson:"id"`
	Variant       Variant         `json:"variant" bson:"variant"`
	Status        Status          `json:"status" bson:"status"`
	Players       []Player        `json:"players" bson:"players"`
	Board         []PlayedTile    `json:"board" bson:"board"`
	Boneyard      []domino.Domino `json:"boneyard,omitempty" bson:"boneyard,omitempty"`
	Ends          Ends            `json:"ends" bson:"ends"`
	CurrentTurn   string          `json:"current_turn,omitempty" bson:"current_turn,omitempty"`
	WinnerID      string          `json:"winner_id,omitempty" bson:"winner_id,omitempty"`
	Capicu        bool            `json:"capicu,omitempty" bson:"capicu,omitempty"`
	RoundNumber   int             `json:"round_number" bson:"round_number"`
	VariantPoints map[string]int  `json:"variant_points,omitempty" bson:"variant_points,omitempty"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	LastActivity  time.Time       `json:"last_activity" bson:"last_activity"`
}

// Snapshot returns a deep copy of the full state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		ID:           g.id,
		Variant:      g.variant,
		Status:       g.status,
		Board:        append([]PlayedTile(nil), g.board...),
		Boneyard:     append([]domino.Domino(nil), g.boneyard...),
		Ends:         g.endsCopyLocked(),
		CurrentTurn:  g.currentTurn,
		WinnerID:     g.winnerID,
		Capicu:       g.capicu,
		RoundNumber:  g.roundNumber,
		CreatedAt:    g.createdAt,
		LastActivity: g.lastActivity,
	}
	s.Players = make([]Player, len(g.players))
	for i, p := range g.players {
		s.Players[i] = *p
		s.Players[i].Hand = append([]domino.Domino(nil), p.Hand...)
	}
	if len(g.variantPoints) > 0 {
		s.VariantPoints = make(map[string]int, len(g.variantPoints))
		for id, v := range g.variantPoints {
			s.VariantPoints[id] = v
		}
	}
	return s
}
