package rooms

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/capicuhq/capicu/pkg/errors"
	"github.com/capicuhq/capicu/pkg/game"
	"github.com/capicuhq/capicu/pkg/observability"
)

// =============================================================================
// Loop Cadence and Retention
// =============================================================================

const (
	// DefaultTickInterval is how often the game loop checks every room
	// for due CPU moves, turn timeouts and picking timeouts.
	DefaultTickInterval = time.Second

	// DefaultCleanupInterval is how often stale rooms are swept.
	DefaultCleanupInterval = time.Minute

	// DefaultCPUMoveDelay is how long a CPU seat waits before moving,
	// so its plays read as deliberate rather than instant.
	DefaultCPUMoveDelay = 1200 * time.Millisecond

	// DefaultInactiveAfter removes any room with no activity at all.
	DefaultInactiveAfter = 60 * time.Minute

	// DefaultAbandonedAfter removes waiting rooms whose humans all left.
	DefaultAbandonedAfter = 2 * time.Minute

	// DefaultFinishedAfter removes rooms that stayed on the final score
	// screen without starting another round.
	DefaultFinishedAfter = 5 * time.Minute
)

// ===== Manager =====

// Manager is the registry of live rooms. Run drives the background
// loops; everything else is safe to call from request handlers.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room

	log    *log.Logger
	events Events

	turnTimeout    time.Duration
	pickingTimeout time.Duration
	cpuMoveDelay   time.Duration

	tickInterval    time.Duration
	cleanupInterval time.Duration
	inactiveAfter   time.Duration
	abandonedAfter  time.Duration
	finishedAfter   time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithEvents registers the notification sink for the background loops.
func WithEvents(e Events) Option {
	return func(m *Manager) { m.events = e }
}

// WithGameTimeouts sets the per-turn and picking-phase timeouts applied
// to every room the manager creates. Zero disables a timer.
func WithGameTimeouts(turn, picking time.Duration) Option {
	return func(m *Manager) {
		m.turnTimeout = turn
		m.pickingTimeout = picking
	}
}

// WithCPUMoveDelay sets the pause before a CPU seat moves. Zero makes
// CPU seats move on the next tick.
func WithCPUMoveDelay(d time.Duration) Option {
	return func(m *Manager) { m.cpuMoveDelay = d }
}

// WithTickInterval sets the game-loop cadence.
func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) { m.tickInterval = d }
}

// WithCleanupInterval sets the stale-room sweep cadence.
func WithCleanupInterval(d time.Duration) Option {
	return func(m *Manager) { m.cleanupInterval = d }
}

// WithRetention sets how long rooms survive while inactive, abandoned
// in the waiting phase, or sitting finished.
func WithRetention(inactive, abandoned, finished time.Duration) Option {
	return func(m *Manager) {
		m.inactiveAfter = inactive
		m.abandonedAfter = abandoned
		m.finishedAfter = finished
	}
}

// NewManager creates an empty registry with default cadence and
// retention.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rooms:           make(map[string]*Room),
		log:             log.New(io.Discard),
		events:          NoopEvents{},
		cpuMoveDelay:    DefaultCPUMoveDelay,
		tickInterval:    DefaultTickInterval,
		cleanupInterval: DefaultCleanupInterval,
		inactiveAfter:   DefaultInactiveAfter,
		abandonedAfter:  DefaultAbandonedAfter,
		finishedAfter:   DefaultFinishedAfter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ===== Registry =====

// Create opens a room with the creator in the first seat. A zero
// targetScore uses the default.
func (m *Manager) Create(ctx context.Context, variant game.Variant, maxPlayers, targetScore int, creatorName string) (*Room, game.Player, error) {
	if targetScore == 0 {
		targetScore = game.DefaultTargetScore
	}

	g, err := game.New(variant, maxPlayers,
		game.WithTurnTimeout(m.turnTimeout),
		game.WithPickingTimeout(m.pickingTimeout),
	)
	if err != nil {
		return nil, game.Player{}, err
	}
	creator, err := g.Join(creatorName)
	if err != nil {
		return nil, game.Player{}, err
	}
	match, err := game.NewMatch(g, targetScore)
	if err != nil {
		return nil, game.Player{}, err
	}

	r := newRoom(g, match)
	m.mu.Lock()
	m.rooms[r.ID()] = r
	total := len(m.rooms)
	m.mu.Unlock()

	observability.Game().OnRoomCreated(ctx, string(variant), maxPlayers)
	m.log.Info("room created", "room", r.ID(), "variant", variant, "seats", maxPlayers, "target", targetScore, "rooms", total)
	return r, creator, nil
}

// Get returns a live room by id.
func (m *Manager) Get(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeGameNotFound, "game %s not found", id)
	}
	return r, nil
}

// List returns every room's summary, newest first.
func (m *Manager) List() []Info {
	return m.list(func(*Room) bool { return true })
}

// Joinable returns rooms still waiting for players, newest first.
func (m *Manager) Joinable() []Info {
	return m.list(func(r *Room) bool {
		return r.Game().Status() == game.StatusWaiting && !r.Game().Full()
	})
}

func (m *Manager) list(keep func(*Room) bool) []Info {
	var infos []Info
	for _, r := range m.snapshot() {
		if keep(r) {
			infos = append(infos, r.Info())
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

// snapshot copies the room set so loops iterate without holding the
// registry lock.
func (m *Manager) snapshot() []*Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// Stats summarizes the registry for the stats endpoint.
type Stats struct {
	Rooms     int `json:"rooms"`
	Waiting   int `json:"waiting"`
	Picking   int `json:"picking"`
	Playing   int `json:"playing"`
	Finished  int `json:"finished"`
	Players   int `json:"players"`
	Connected int `json:"connected_humans"`
}

// Stats counts rooms by phase and seated players.
func (m *Manager) Stats() Stats {
	var s Stats
	for _, r := range m.snapshot() {
		s.Rooms++
		switch r.Game().Status() {
		case game.StatusWaiting:
			s.Waiting++
		case game.StatusPicking:
			s.Picking++
		case game.StatusPlaying:
			s.Playing++
		case game.StatusFinished:
			s.Finished++
		}
		for _, p := range r.Game().Players() {
			s.Players++
			if p.Connected && !p.CPU {
				s.Connected++
			}
		}
	}
	return s
}

// ===== Background Loops =====

// Run drives the game and cleanup loops until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	gameTick := time.NewTicker(m.tickInterval)
	defer gameTick.Stop()
	sweep := time.NewTicker(m.cleanupInterval)
	defer sweep.Stop()

	m.log.Info("room manager running", "tick", m.tickInterval, "cleanup", m.cleanupInterval)
	for {
		select {
		case <-ctx.Done():
			m.log.Info("room manager stopped")
			return
		case now := <-gameTick.C:
			m.tick(ctx, now)
		case now := <-sweep.C:
			m.cleanup(ctx, now)
		}
	}
}

// tick advances every room one step: CPU claims and picking expiry
// during picking, CPU moves and turn expiry during play.
func (m *Manager) tick(ctx context.Context, now time.Time) {
	for _, r := range m.snapshot() {
		switch r.Game().Status() {
		case game.StatusPicking:
			m.tickPicking(r, now)
		case game.StatusPlaying:
			m.tickTurn(ctx, r, now)
		}
	}
}

// tickPicking claims one tile per CPU seat, one per tick, and fires the
// auto-assign when the picking timer runs out.
func (m *Manager) tickPicking(r *Room, now time.Time) {
	g := r.Game()
	for _, p := range g.Players() {
		if !p.CPU || len(p.Hand) >= game.HandSize {
			continue
		}
		pos, started, err := g.CPUClaim(p.ID, now)
		if err != nil {
			return // phase flipped under us
		}
		m.events.CPUClaimed(r.ID(), p.ID, pos, started)
		if started {
			m.log.Debug("picking complete", "room", r.ID())
			return
		}
	}

	if g.PickingExpired(now) {
		m.autoAssign(r, now)
	}
}

// autoAssign deals the remaining picking-grid tiles into short hands.
func (m *Manager) autoAssign(r *Room, now time.Time) {
	g := r.Game()
	counts := make(map[string]int)
	started := false
	for _, p := range g.Players() {
		taken, s, err := g.AutoAssign(p.ID, now)
		if err != nil {
			break
		}
		if len(taken) > 0 {
			counts[p.ID] = len(taken)
		}
		if s {
			// The last short hand is full; everyone after it already was.
			started = true
			break
		}
	}
	if len(counts) == 0 && !started {
		return
	}
	m.events.TilesAutoAssigned(r.ID(), counts, started)
	m.log.Info("picking timed out, hands auto-assigned", "room", r.ID(), "players", len(counts))
}

// tickTurn moves a due CPU seat, or force-plays a human who overran the
// clock.
func (m *Manager) tickTurn(ctx context.Context, r *Room, now time.Time) {
	g := r.Game()
	playerID := g.CurrentTurn()
	if playerID == "" {
		return
	}

	cpuDue := g.IsCPUTurn() && g.TurnAge(now) >= m.cpuMoveDelay
	timedOut := g.TurnExpired(now)
	if !cpuDue && !timedOut {
		return
	}

	move, drawn, err := g.AutoPlay(playerID, now)
	if err != nil {
		// Losing the race to a human's own move is normal.
		if !errors.Is(err, errors.ErrCodeNotYourTurn) && !errors.Is(err, errors.ErrCodeWrongPhase) {
			m.log.Warn("auto play failed", "room", r.ID(), "player", playerID, "err", err)
		}
		return
	}
	m.events.AutoPlayed(r.ID(), playerID, move, len(drawn), timedOut)
	m.FinishRound(ctx, r)
}

// FinishRound records a just-finished round and announces it. Safe to
// call after any move; it does nothing while the round is still live.
// The transport layer calls this after human moves, the game loop after
// automatic ones.
func (m *Manager) FinishRound(ctx context.Context, r *Room) {
	result, matchWinner, recorded := r.FinishRound()
	if !recorded {
		return
	}

	variant := string(r.Game().Variant())
	observability.Game().OnRoundFinished(ctx, variant, result.WasBlocked, result.Capicu, result.PointsAwarded)
	if matchWinner != "" {
		observability.Game().OnMatchFinished(ctx, variant, result.RoundNumber)
	}

	m.events.RoundFinished(r.ID(), result, matchWinner)
	m.log.Info("round finished",
		"room", r.ID(),
		"round", result.RoundNumber,
		"winner", result.WinnerID,
		"points", result.PointsAwarded,
		"blocked", result.WasBlocked,
		"match_winner", matchWinner,
	)
}

// cleanup removes stale rooms and reports how many were dropped.
func (m *Manager) cleanup(ctx context.Context, now time.Time) int {
	type removal struct{ id, reason string }
	var removals []removal

	m.mu.Lock()
	for id, r := range m.rooms {
		g := r.Game()
		idle := now.Sub(g.LastActivity())

		reason := ""
		switch {
		case g.Status() == game.StatusFinished && idle > m.finishedAfter:
			reason = "finished"
		case g.Status() == game.StatusWaiting && !g.HasConnectedHumans() && idle > m.abandonedAfter:
			reason = "abandoned"
		case idle > m.inactiveAfter:
			reason = "inactive"
		}
		if reason != "" {
			delete(m.rooms, id)
			removals = append(removals, removal{id, reason})
		}
	}
	m.mu.Unlock()

	for _, rm := range removals {
		observability.Game().OnRoomRemoved(ctx, rm.reason)
		m.events.RoomRemoved(rm.id, rm.reason)
		m.log.Info("room removed", "room", rm.id, "reason", rm.reason)
	}
	return len(removals)
}
