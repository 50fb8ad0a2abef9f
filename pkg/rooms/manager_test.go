package rooms

import (
	"context"
	"testing"
	"time"

	"github.com/capicuhq/capicu/pkg/errors"
	"github.com/capicuhq/capicu/pkg/game"
)

// recorder captures loop notifications; tests drive ticks synchronously
// so no locking is needed.
type recorder struct {
	autoPlays []struct {
		playerID string
		pass     bool
		timedOut bool
	}
	claims  int
	assigns []bool
	rounds  []game.RoundResult
	removed map[string]string
}

func newRecorder() *recorder {
	return &recorder{removed: make(map[string]string)}
}

func (r *recorder) AutoPlayed(_, playerID string, move *game.Move, _ int, timedOut bool) {
	r.autoPlays = append(r.autoPlays, struct {
		playerID string
		pass     bool
		timedOut bool
	}{playerID, move == nil, timedOut})
}

func (r *recorder) CPUClaimed(_, _ string, _ int, _ bool) { r.claims++ }

func (r *recorder) TilesAutoAssigned(_ string, _ map[string]int, started bool) {
	r.assigns = append(r.assigns, started)
}

func (r *recorder) RoundFinished(_ string, result game.RoundResult, _ string) {
	r.rounds = append(r.rounds, result)
}

func (r *recorder) RoomRemoved(id, reason string) { r.removed[id] = reason }

func TestManagerCreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	r, creator, err := m.Create(ctx, game.VariantBlock, 2, 0, "Ana")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if creator.Name != "Ana" {
		t.Errorf("creator name = %q, want Ana", creator.Name)
	}
	if !r.IsCreator(creator.ID) {
		t.Error("creator does not hold table privileges")
	}
	if r.Match().TargetScore() != game.DefaultTargetScore {
		t.Errorf("TargetScore() = %d, want default %d", r.Match().TargetScore(), game.DefaultTargetScore)
	}

	got, err := m.Get(r.ID())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != r {
		t.Error("Get() returned a different room")
	}
	if _, err := m.Get("missing"); !errors.Is(err, errors.ErrCodeGameNotFound) {
		t.Errorf("Get(missing) error = %v, want GAME_NOT_FOUND", err)
	}
}

func TestManagerCreateRejections(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	if _, _, err := m.Create(ctx, game.Variant("poker"), 2, 0, "Ana"); !errors.Is(err, errors.ErrCodeInvalidVariant) {
		t.Errorf("bad variant error = %v, want INVALID_VARIANT", err)
	}
	if _, _, err := m.Create(ctx, game.VariantBlock, 9, 0, "Ana"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad seats error = %v, want INVALID_INPUT", err)
	}
	if _, _, err := m.Create(ctx, game.VariantBlock, 2, 10, "Ana"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad target error = %v, want INVALID_INPUT", err)
	}
	if _, _, err := m.Create(ctx, game.VariantBlock, 2, 0, "  "); err == nil {
		t.Error("blank creator name accepted")
	}
}

func TestManagerListAndJoinable(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	open, _, err := m.Create(ctx, game.VariantBlock, 4, 0, "Ana")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	full, _, err := m.Create(ctx, game.VariantDraw, 2, 0, "Beto")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, _, err := full.Join("Caro", time.Now()); err != nil {
		t.Fatalf("Join() error: %v", err)
	}

	if got := len(m.List()); got != 2 {
		t.Errorf("len(List()) = %d, want 2", got)
	}
	joinable := m.Joinable()
	if len(joinable) != 1 {
		t.Fatalf("len(Joinable()) = %d, want 1", len(joinable))
	}
	if joinable[0].ID != open.ID() {
		t.Errorf("Joinable()[0].ID = %q, want the open room %q", joinable[0].ID, open.ID())
	}
}

func TestManagerStats(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	if _, _, err := m.Create(ctx, game.VariantBlock, 4, 0, "Ana"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	full, _, err := m.Create(ctx, game.VariantBlock, 2, 0, "Beto")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, _, err := full.Join("Caro", time.Now()); err != nil {
		t.Fatalf("Join() error: %v", err)
	}

	s := m.Stats()
	if s.Rooms != 2 {
		t.Errorf("Stats().Rooms = %d, want 2", s.Rooms)
	}
	if s.Waiting != 1 || s.Picking != 1 {
		t.Errorf("Stats() waiting/picking = %d/%d, want 1/1", s.Waiting, s.Picking)
	}
	if s.Players != 3 {
		t.Errorf("Stats().Players = %d, want 3", s.Players)
	}
	if s.Connected != 3 {
		t.Errorf("Stats().Connected = %d, want 3", s.Connected)
	}
}

func TestManagerTickDrivesCPUGame(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	m := NewManager(
		WithEvents(rec),
		WithCPUMoveDelay(0),
		WithGameTimeouts(0, time.Hour),
	)

	r, creator, err := m.Create(ctx, game.VariantBlock, 2, 0, "Ana")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	cpu, started, err := r.AddCPU(creator.ID, time.Now())
	if err != nil || !started {
		t.Fatalf("AddCPU() = started %v, err %v", started, err)
	}
	g := r.Game()

	// One claim per tick fills the CPU hand in six ticks.
	now := time.Now()
	for i := 0; i < game.HandSize; i++ {
		m.tick(ctx, now)
	}
	if rec.claims != game.HandSize {
		t.Fatalf("cpu claims = %d, want %d", rec.claims, game.HandSize)
	}
	cpuSeat, _ := g.Player(cpu.ID)
	if len(cpuSeat.Hand) != game.HandSize {
		t.Fatalf("cpu hand = %d tiles, want %d", len(cpuSeat.Hand), game.HandSize)
	}
	if g.Status() != game.StatusPicking {
		t.Fatalf("Status() = %v with the human not picking, want picking", g.Status())
	}

	// The human never picks; the timer deals their hand. Play clocks
	// start from this instant, so later ticks use it too.
	playNow := now.Add(2 * time.Hour)
	m.tick(ctx, playNow)
	if len(rec.assigns) != 1 || !rec.assigns[0] {
		t.Fatalf("auto-assign events = %v, want one that started play", rec.assigns)
	}
	if g.Status() != game.StatusPlaying {
		t.Fatalf("Status() = %v after auto-assign, want playing", g.Status())
	}

	// With no move delay the CPU plays on every tick; the human plays
	// directly. The round must run to completion.
	for i := 0; i < 200 && g.Status() == game.StatusPlaying; i++ {
		if g.CurrentTurn() == creator.ID {
			if _, _, err := g.AutoPlay(creator.ID, playNow); err != nil {
				t.Fatalf("human AutoPlay() error: %v", err)
			}
			m.FinishRound(ctx, r)
			continue
		}
		m.tick(ctx, playNow)
	}

	if g.Status() != game.StatusFinished {
		t.Fatalf("Status() = %v, want finished", g.Status())
	}
	if len(rec.rounds) != 1 {
		t.Fatalf("round events = %d, want 1", len(rec.rounds))
	}
	if rec.rounds[0].RoundNumber != 1 {
		t.Errorf("RoundNumber = %d, want 1", rec.rounds[0].RoundNumber)
	}
	for _, ap := range rec.autoPlays {
		if ap.playerID != cpu.ID {
			t.Errorf("auto play by %q, want only the CPU seat", ap.playerID)
		}
		if ap.timedOut {
			t.Error("CPU pace move reported as a timeout")
		}
	}
}

func TestManagerTurnTimeoutAutoPlays(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	m := NewManager(
		WithEvents(rec),
		WithCPUMoveDelay(time.Hour),
		WithGameTimeouts(30*time.Second, time.Minute),
	)

	r, _, err := m.Create(ctx, game.VariantBlock, 2, 0, "Ana")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, started, err := r.Join("Beto", time.Now()); err != nil || !started {
		t.Fatalf("Join() = started %v, err %v", started, err)
	}
	g := r.Game()

	// Nobody picks; expire the picking timer to reach play.
	dealt := time.Now().Add(2 * time.Minute)
	m.tick(ctx, dealt)
	if g.Status() != game.StatusPlaying {
		t.Fatalf("Status() = %v, want playing", g.Status())
	}
	first := g.CurrentTurn()

	// One second short of the deadline nothing happens.
	m.tick(ctx, dealt.Add(29 * time.Second))
	if len(rec.autoPlays) != 0 {
		t.Fatalf("auto play fired before the deadline")
	}

	m.tick(ctx, dealt.Add(31 * time.Second))
	if len(rec.autoPlays) != 1 {
		t.Fatalf("auto plays = %d, want 1", len(rec.autoPlays))
	}
	if rec.autoPlays[0].playerID != first {
		t.Errorf("auto play for %q, want the stalled player %q", rec.autoPlays[0].playerID, first)
	}
	if !rec.autoPlays[0].timedOut {
		t.Error("timeout move not flagged as timed out")
	}
	if got := g.CurrentTurn(); got == first && g.Status() == game.StatusPlaying {
		t.Error("turn did not advance after the timeout move")
	}
}

func TestManagerCleanup(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	m := NewManager(WithEvents(rec))

	// A waiting room whose only human left.
	abandoned, creator, err := m.Create(ctx, game.VariantBlock, 4, 0, "Ana")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	abandoned.Game().SetConnected(creator.ID, false, time.Now())

	// A waiting room with its human still online.
	alive, _, err := m.Create(ctx, game.VariantBlock, 4, 0, "Beto")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	now := time.Now()
	if removed := m.cleanup(ctx, now); removed != 0 {
		t.Fatalf("cleanup(now) removed %d rooms, want 0", removed)
	}

	// Three minutes on: only the abandoned room goes.
	if removed := m.cleanup(ctx, now.Add(3 * time.Minute)); removed != 1 {
		t.Fatalf("cleanup(+3m) removed %d rooms, want 1", removed)
	}
	if rec.removed[abandoned.ID()] != "abandoned" {
		t.Errorf("removed[%s] = %q, want abandoned", abandoned.ID(), rec.removed[abandoned.ID()])
	}
	if _, err := m.Get(abandoned.ID()); !errors.Is(err, errors.ErrCodeGameNotFound) {
		t.Error("abandoned room still resolvable")
	}
	if _, err := m.Get(alive.ID()); err != nil {
		t.Error("occupied waiting room was swept")
	}

	// Over an hour idle, even occupied rooms go.
	if removed := m.cleanup(ctx, now.Add(2 * time.Hour)); removed != 1 {
		t.Fatalf("cleanup(+2h) removed %d rooms, want 1", removed)
	}
	if rec.removed[alive.ID()] != "inactive" {
		t.Errorf("removed[%s] = %q, want inactive", alive.ID(), rec.removed[alive.ID()])
	}
}

func TestManagerCleanupFinishedRooms(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	m := NewManager(WithEvents(rec))

	r, _, err := m.Create(ctx, game.VariantBlock, 2, 0, "Ana")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, _, err := r.Join("Beto", time.Now()); err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	g := r.Game()
	now := time.Now()
	for _, p := range g.Players() {
		if _, _, err := g.AutoAssign(p.ID, now); err != nil {
			t.Fatalf("AutoAssign() error: %v", err)
		}
	}
	playRoundOut(t, g)
	if g.Status() != game.StatusFinished {
		t.Fatalf("Status() = %v, want finished", g.Status())
	}

	// Finished rooms linger a few minutes for the score screen.
	if removed := m.cleanup(ctx, now.Add(time.Minute)); removed != 0 {
		t.Fatalf("cleanup(+1m) removed %d rooms, want 0", removed)
	}
	if removed := m.cleanup(ctx, now.Add(6 * time.Minute)); removed != 1 {
		t.Fatalf("cleanup(+6m) removed %d rooms, want 1", removed)
	}
	if rec.removed[r.ID()] != "finished" {
		t.Errorf("removed[%s] = %q, want finished", r.ID(), rec.removed[r.ID()])
	}
}
