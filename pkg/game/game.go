package game

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth for CLI, Server and Config
// =============================================================================

const (
	// MinPlayers is the minimum seat count to start a round.
	MinPlayers = 2

	// MaxPlayers is the table size; four players play in teams.
	MaxPlayers = 4

	// HandSize is the number of tiles dealt to each player.
	HandSize = 6

	// DefaultTargetScore is the match target when none is requested.
	DefaultTargetScore = 100

	// MinTargetScore and MaxTargetScore bound creator-supplied targets.
	MinTargetScore = 50
	MaxTargetScore = 500
)

// Variant selects the rule set for a game.
type Variant string

// Supported variants.
const (
	VariantBlock    Variant = "block"
	VariantDraw     Variant = "draw"
	VariantAllFives Variant = "allfives"
)

// ValidVariants is the set of recognized variants.
var ValidVariants = map[Variant]bool{
	VariantBlock:    true,
	VariantDraw:     true,
	VariantAllFives: true,
}

// ParseVariant converts a string into a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !ValidVariants[v] {
		return "", errors.New(errors.ErrCodeInvalidVariant, "invalid variant %q (must be one of: block, draw, allfives)", s)
	}
	return v, nil
}

// String returns the variant name.
func (v Variant) String() string { return string(v) }

// Status is the lifecycle phase of a game.
type Status string

// Lifecycle phases in order.
const (
	StatusWaiting  Status = "waiting"
	StatusPicking  Status = "picking"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Side selects which open end of the chain a tile is played on.
type Side string

// Chain ends.
const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseSide converts a string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideLeft:
		return SideLeft, nil
	case SideRight:
		return SideRight, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMove, "invalid side %q (must be left or right)", s)
}

// =============================================================================
// Core Types
// =============================================================================

// Player is a seat at the table, human or CPU.
type Player struct {
	ID        string          `json:"id" bson:"id"`
	Name      string          `json:"name" bson:"name"`
	Hand      []domino.Domino `json:"hand,omitempty" bson:"hand,omitempty"`
	AvatarID  int             `json:"avatar_id" bson:"avatar_id"`
	Connected bool            `json:"connected" bson:"connected"`
	CPU       bool            `json:"is_cpu" bson:"is_cpu"`
}

// HandTotal returns the pip sum of the player's remaining tiles.
func (p *Player) HandTotal() int {
	return domino.PipTotal(p.Hand)
}

// holds reports whether the hand contains the tile in either orientation.
func (p *Player) holds(t domino.Domino) bool {
	for _, h := range p.Hand {
		if h.Equals(t) {
			return true
		}
	}
	return false
}

// PlayedTile is a tile on the board, oriented so that its Left pip faces
// the left end of the chain.
type PlayedTile struct {
	Tile     domino.Domino `json:"tile" bson:"tile"`
	Position int           `json:"position" bson:"position"`
	PlayerID string        `json:"player_id,omitempty" bson:"player_id,omitempty"`
}

// Ends holds the open pip values of the chain. Nil means the board is
// empty and any tile starts the chain.
type Ends struct {
	Left  *int `json:"left" bson:"left"`
	Right *int `json:"right" bson:"right"`
}

// Move pairs a tile with the side it can be played on.
type Move struct {
	Tile domino.Domino `json:"tile"`
	Side Side          `json:"side"`
}

// =============================================================================
// Game
// =============================================================================

// Game is the state of a single table. All exported methods are safe for
// concurrent use.
type Game struct {
	mu sync.Mutex

	id         string
	variant    Variant
	status     Status
	maxPlayers int
	players    []*Player

	board       []PlayedTile
	boneyard    []domino.Domino
	ends        Ends
	currentTurn string
	winnerID    string
	capicu      bool
	roundNumber int

	// startHint names the player who leads the next playing phase,
	// typically the previous round's winner.
	startHint string

	picking          map[int]domino.Domino
	pickingStartedAt time.Time
	turnStartedAt    time.Time
	turnTimeout      time.Duration
	pickingTimeout   time.Duration

	// variantPoints accumulates mid-round scores (allfives).
	variantPoints map[string]int

	createdAt    time.Time
	lastActivity time.Time

	rng *rand.Rand
}

// Option configures a new game.
type Option func(*Game)

// WithSeed makes dealing, boneyard draws and CPU tie-breaks deterministic.
func WithSeed(seed uint64) Option {
	return func(g *Game) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	}
}

// WithID overrides the generated game id.
func WithID(id string) Option {
	return func(g *Game) { g.id = id }
}

// WithTurnTimeout sets the auto-play bound for a connected player's turn.
// Zero disables the turn timer.
func WithTurnTimeout(d time.Duration) Option {
	return func(g *Game) { g.turnTimeout = d }
}

// WithPickingTimeout sets the picking phase bound. Zero disables it.
func WithPickingTimeout(d time.Duration) Option {
	return func(g *Game) { g.pickingTimeout = d }
}

// New creates a game in the waiting phase with no players seated.
func New(variant Variant, maxPlayers int, opts ...Option) (*Game, error) {
	if !ValidVariants[variant] {
		return nil, errors.New(errors.ErrCodeInvalidVariant, "invalid variant %q", variant)
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return nil, errors.New(errors.ErrCodeInvalidInput, "max players must be between %d and %d, got %d", MinPlayers, MaxPlayers, maxPlayers)
	}

	now := time.Now().UTC()
	g := &Game{
		id:            newGameID(),
		variant:       variant,
		status:        StatusWaiting,
		maxPlayers:    maxPlayers,
		roundNumber:   1,
		variantPoints: make(map[string]int),
		createdAt:     now,
		lastActivity:  now,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// newGameID returns a short join-code style id.
func newGameID() string {
	return uuid.NewString()[:8]
}

// =============================================================================
// Seating
// =============================================================================

// Join seats a human player. Only possible while the game is waiting.
func (g *Game) Join(name string) (Player, error) {
	if err := errors.ValidatePlayerName(name); err != nil {
		return Player{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusWaiting {
		return Player{}, errors.New(errors.ErrCodeWrongPhase, "game has already started")
	}
	if len(g.players) >= g.maxPlayers {
		return Player{}, errors.New(errors.ErrCodeGameFull, "game is full")
	}
	for _, p := range g.players {
		if p.Name == name {
			return Player{}, errors.New(errors.ErrCodeSeatTaken, "name %q already taken in this game", name)
		}
	}

	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		Connected: true,
	}
	g.players = append(g.players, p)
	g.touchLocked()
	return *p, nil
}

// AddCPU seats a CPU player with the given name.
func (g *Game) AddCPU(name string) (Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusWaiting {
		return Player{}, errors.New(errors.ErrCodeWrongPhase, "game has already started")
	}
	if len(g.players) >= g.maxPlayers {
		return Player{}, errors.New(errors.ErrCodeGameFull, "game is full")
	}
	for _, p := range g.players {
		if p.Name == name {
			return Player{}, errors.New(errors.ErrCodeSeatTaken, "name %q already taken in this game", name)
		}
	}

	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		Connected: true,
		CPU:       true,
	}
	g.players = append(g.players, p)
	g.touchLocked()
	return *p, nil
}

// SetConnected flips a player's presence flag. Reconnecting on your own
// turn restarts the turn timer so the clock only runs while you can see
// the board.
func (g *Game) SetConnected(playerID string, connected bool, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.playerLocked(playerID)
	if p == nil {
		return errors.New(errors.ErrCodePlayerNotFound, "player %s not found", playerID)
	}
	p.Connected = connected
	if connected && g.status == StatusPlaying && g.currentTurn == playerID {
		g.turnStartedAt = now
	}
	g.touchLocked()
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// ID returns the short game id.
func (g *Game) ID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

// Variant returns the rule set in play.
func (g *Game) Variant() Variant {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.variant
}

// Status returns the current lifecycle phase.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// MaxPlayers returns the seat limit.
func (g *Game) MaxPlayers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxPlayers
}

// PlayerCount returns the number of seated players.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// Full reports whether every seat is taken.
func (g *Game) Full() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players) >= g.maxPlayers
}

// CreatorID returns the first seated player, who holds table privileges.
func (g *Game) CreatorID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return ""
	}
	return g.players[0].ID
}

// Players returns copies of all seats in order.
func (g *Game) Players() []Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Player, len(g.players))
	for i, p := range g.players {
		out[i] = *p
		out[i].Hand = append([]domino.Domino(nil), p.Hand...)
	}
	return out
}

// Player returns a copy of one seat.
func (g *Game) Player(playerID string) (Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.playerLocked(playerID)
	if p == nil {
		return Player{}, false
	}
	out := *p
	out.Hand = append([]domino.Domino(nil), p.Hand...)
	return out, true
}

// HasConnectedHumans reports whether any human seat is online.
func (g *Game) HasConnectedHumans() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.Connected && !p.CPU {
			return true
		}
	}
	return false
}

// CurrentTurn returns the id of the player to move, or "" outside the
// playing phase.
func (g *Game) CurrentTurn() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentTurn
}

// Winner returns the round winner and whether they went out capicú.
// Empty until the round finishes.
func (g *Game) Winner() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winnerID, g.capicu
}

// RoundNumber returns the 1-based round counter within the match.
func (g *Game) RoundNumber() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roundNumber
}

// Board returns a copy of the chain from left end to right end.
func (g *Game) Board() []PlayedTile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]PlayedTile(nil), g.board...)
}

// BoardTiles returns just the tiles of the chain, oriented left to right.
func (g *Game) BoardTiles() []domino.Domino {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domino.Domino, len(g.board))
	for i, pt := range g.board {
		out[i] = pt.Tile
	}
	return out
}

// OpenEnds returns the playable ends of the chain.
func (g *Game) OpenEnds() Ends {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endsCopyLocked()
}

// BoneyardCount returns the number of undrawn tiles.
func (g *Game) BoneyardCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.boneyard)
}

// LastActivity returns the time of the most recent state change.
func (g *Game) LastActivity() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActivity
}

// CreatedAt returns the creation time.
func (g *Game) CreatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createdAt
}

// SetStartHint names the player who should lead the next playing phase.
// Unknown ids fall back to the highest-double rule.
func (g *Game) SetStartHint(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.startHint = playerID
}

// =============================================================================
// Round Reset
// =============================================================================

// ResetRound clears the table for the next round of a match. Seats and
// the round counter are preserved; the caller sets the new round number.
func (g *Game) ResetRound(roundNumber int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.status = StatusWaiting
	g.board = nil
	g.boneyard = nil
	g.ends = Ends{}
	g.currentTurn = ""
	g.winnerID = ""
	g.capicu = false
	g.picking = nil
	g.pickingStartedAt = time.Time{}
	g.turnStartedAt = time.Time{}
	g.variantPoints = make(map[string]int)
	if roundNumber > 0 {
		g.roundNumber = roundNumber
	}
	for _, p := range g.players {
		p.Hand = nil
	}
	g.touchLocked()
}

// =============================================================================
// Internal Helpers
// =============================================================================

// playerLocked returns the seat with the given id. Callers hold g.mu.
func (g *Game) playerLocked(playerID string) *Player {
	for _, p := range g.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// playerIndexLocked returns the seat index, or -1.
func (g *Game) playerIndexLocked(playerID string) int {
	for i, p := range g.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (g *Game) endsCopyLocked() Ends {
	out := Ends{}
	if g.ends.Left != nil {
		v := *g.ends.Left
		out.Left = &v
	}
	if g.ends.Right != nil {
		v := *g.ends.Right
		out.Right = &v
	}
	return out
}

func (g *Game) touchLocked() {
	g.lastActivity = time.Now().UTC()
}
