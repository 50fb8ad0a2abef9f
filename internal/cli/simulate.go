package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/capicuhq/capicu/pkg/game"
)

// simulateCommand creates the simulate command for CPU-vs-CPU matches.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		players   int
		variant   string
		target    int
		seed      uint64
		maxRounds int
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a CPU-vs-CPU match in the terminal",
		Long: `Play a CPU-vs-CPU match in the terminal.

Every seat is taken by a CPU player using the same move selection the server
uses for stalled turns: shed doubles early, dump high pip counts, keep covered
pips. Four seats play as two teams of opposite partners, exactly like a served
game.

With --watch the match runs in a live terminal view showing the chain, hands,
and scores as tiles are played. Without it, rounds are summarized line by line.
A fixed --seed reproduces the same shuffles and moves on every run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := game.ParseVariant(variant)
			if err != nil {
				return err
			}
			cfg := simulationConfig{
				players:   players,
				variant:   v,
				target:    target,
				seed:      seed,
				maxRounds: maxRounds,
			}
			if watch {
				return c.watchSimulation(cmd.Context(), cfg)
			}
			return c.runSimulation(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&players, "players", game.MaxPlayers, "number of CPU seats (2-4)")
	cmd.Flags().StringVar(&variant, "variant", string(game.VariantBlock), "rules variant: block or draw")
	cmd.Flags().IntVar(&target, "target", game.DefaultTargetScore, "points needed to win the match")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "shuffle seed for reproducible matches (0 = random)")
	cmd.Flags().IntVar(&maxRounds, "rounds", 0, "stop after this many rounds (0 = play to the target)")
	cmd.Flags().BoolVar(&watch, "watch", false, "watch the match live in a terminal view")

	return cmd
}

// =============================================================================
// Simulation Core
// =============================================================================

// simulationConfig holds the knobs for a CPU match.
type simulationConfig struct {
	players   int
	variant   game.Variant
	target    int
	seed      uint64
	maxRounds int
}

// simulation drives a CPU-only match one turn at a time. Both the plain
// runner and the watch view advance it through step and nextRound.
type simulation struct {
	match *game.Match
	names map[string]string
	cfg   simulationConfig
}

// stepResult describes what a single turn did.
type stepResult struct {
	playerID  string
	move      *game.Move // nil when the turn ended in a pass
	drew      int
	round     *game.RoundResult // non-nil when the turn ended the round
	matchOver bool
}

// newSimulation seats the CPU players, deals the first round, and returns
// a match ready to step.
func newSimulation(cfg simulationConfig) (*simulation, error) {
	var gameOpts []game.Option
	if cfg.seed != 0 {
		gameOpts = append(gameOpts, game.WithSeed(cfg.seed))
	}
	g, err := game.New(cfg.variant, cfg.players, gameOpts...)
	if err != nil {
		return nil, err
	}

	var names []string
	for i := 0; i < cfg.players; i++ {
		p, err := g.AddCPU(game.CPUName(names))
		if err != nil {
			return nil, err
		}
		names = append(names, p.Name)
	}

	var matchOpts []game.MatchOption
	if cfg.seed != 0 {
		matchOpts = append(matchOpts, game.WithMatchSeed(cfg.seed))
	}
	m, err := game.NewMatch(g, cfg.target, matchOpts...)
	if err != nil {
		return nil, err
	}

	m.FinalizeSeating()
	if err := g.Deal(time.Now()); err != nil {
		return nil, err
	}

	return &simulation{
		match: m,
		names: m.State().PlayerNames,
		cfg:   cfg,
	}, nil
}

// step plays one full turn and folds round scoring in when it ends the
// round.
func (s *simulation) step(now time.Time) (stepResult, error) {
	g := s.match.Game()
	out := stepResult{playerID: g.CurrentTurn()}

	move, drawn, err := g.AutoPlay(out.playerID, now)
	if err != nil {
		return out, fmt.Errorf("turn for %s: %w", s.name(out.playerID), err)
	}
	out.move = move
	out.drew = len(drawn)

	if g.Status() != game.StatusFinished {
		return out, nil
	}

	result, err := s.match.CompleteRound()
	if err != nil {
		return out, fmt.Errorf("score round: %w", err)
	}
	out.round = &result
	out.matchOver = s.match.Winner() != ""
	return out, nil
}

// nextRound opens the following round with the picking phase skipped, the
// same shortcut a picking timeout takes on the server.
func (s *simulation) nextRound(now time.Time) error {
	started, err := s.match.StartNextRound(now)
	if err != nil || !started {
		return err
	}
	g := s.match.Game()
	for _, p := range g.Players() {
		if _, _, err := g.AutoAssign(p.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// name resolves a player ID for display.
func (s *simulation) name(playerID string) string {
	if n, ok := s.names[playerID]; ok {
		return n
	}
	return playerID
}

// roundLabel names whoever took the round: the team in a team game, the
// player otherwise, "nobody" for a blocked wash.
func (s *simulation) roundLabel(r game.RoundResult) string {
	if r.WinnerTeam != "" {
		return r.WinnerTeam
	}
	if r.WinnerID == "" {
		return "nobody"
	}
	return s.name(r.WinnerID)
}

// =============================================================================
// Plain Runner
// =============================================================================

// runSimulation plays the match to completion, one summary line per round.
func (c *CLI) runSimulation(ctx context.Context, cfg simulationConfig) error {
	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	g := sim.match.Game()

	printInfo("Simulating %s dominoes: %d seats, first to %d", g.Variant(), g.PlayerCount(), sim.match.TargetScore())
	if sim.match.IsTeamGame() {
		state := sim.match.State()
		printDetail("%s: %s", state.TeamAName, sim.teamRoster(state.TeamA))
		printDetail("%s: %s", state.TeamBName, sim.teamRoster(state.TeamB))
	}
	printNewline()

	prog := newProgress(c.Logger)
	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		step, err := sim.step(time.Now())
		if err != nil {
			return err
		}
		c.logStep(sim, step)

		if step.round == nil {
			continue
		}
		rounds++
		printRoundLine(sim, *step.round)

		if step.matchOver {
			break
		}
		if cfg.maxRounds > 0 && rounds >= cfg.maxRounds {
			printNewline()
			printMatchOutcome(sim)
			return nil
		}
		if err := sim.nextRound(time.Now()); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Simulated %d rounds", rounds))

	printNewline()
	printMatchOutcome(sim)
	return nil
}

// watchSimulation runs the match inside a live terminal view.
func (c *CLI) watchSimulation(ctx context.Context, cfg simulationConfig) error {
	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newSimulationModel(sim), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	if m, ok := final.(simulationModel); ok {
		if m.err != nil {
			return m.err
		}
		if m.done {
			printMatchOutcome(sim)
		}
	}
	return nil
}

// logStep records each turn at debug level so --verbose shows the full game.
func (c *CLI) logStep(sim *simulation, step stepResult) {
	if step.move != nil {
		c.Logger.Debug("played", "player", sim.name(step.playerID), "tile", step.move.Tile.String(), "side", step.move.Side)
		return
	}
	c.Logger.Debug("passed", "player", sim.name(step.playerID), "drew", step.drew)
}

// printRoundLine prints the one-line round summary.
func printRoundLine(sim *simulation, r game.RoundResult) {
	suffix := ""
	switch {
	case r.WasBlocked:
		suffix = " (blocked)"
	case r.Capicu:
		suffix = " capicú!"
	}
	printDetail("round %d: %s +%d%s", r.RoundNumber, sim.roundLabel(r), r.PointsAwarded, suffix)
}

// teamRoster joins the display names of a team's seats.
func (s *simulation) teamRoster(ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = s.name(id)
	}
	return strings.Join(names, ", ")
}

// printMatchOutcome prints the final banner and the standings.
func printMatchOutcome(sim *simulation) {
	state := sim.match.State()
	if state.MatchWinner == "" {
		printInfo("Round limit reached, nobody at %d yet", sim.match.TargetScore())
	} else {
		winner := state.MatchWinner
		if n, ok := sim.names[winner]; ok {
			winner = n
		}
		printSuccess("%s wins the match after %d rounds", winner, len(state.CompletedRounds))
	}
	printScores(sim)
}

// printScores prints the standings, best first.
func printScores(sim *simulation) {
	type entry struct {
		label string
		score int
	}
	var entries []entry
	for k, v := range sim.match.Scores() {
		label := k
		if n, ok := sim.names[k]; ok {
			label = n
		}
		entries = append(entries, entry{label, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].label < entries[j].label
	})
	for _, e := range entries {
		printKeyValue(e.label, fmt.Sprintf("%d", e.score))
	}
}
