package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/game"
	"github.com/capicuhq/capicu/pkg/rooms"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// roomListModel - Interactive room browser
// =============================================================================

// roomsLoadedMsg carries a fetched room list into the model.
type roomsLoadedMsg struct {
	infos []rooms.Info
	err   error
}

// roomListModel is the bubbletea model for browsing live rooms.
type roomListModel struct {
	serverURL string
	all       bool
	rooms     []rooms.Info
	cursor    int
	offset    int
	height    int
	loading   bool
	err       error
	selected  *rooms.Info
}

// newRoomListModel creates a room browser pointed at serverURL.
func newRoomListModel(serverURL string, all bool) roomListModel {
	return roomListModel{
		serverURL: serverURL,
		all:       all,
		height:    15,
		loading:   true,
	}
}

// fetch loads the room list off the Update loop.
func (m roomListModel) fetch() tea.Cmd {
	serverURL, all := m.serverURL, m.all
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		infos, err := fetchRooms(ctx, serverURL, all)
		return roomsLoadedMsg{infos: infos, err: err}
	}
}

func (m roomListModel) Init() tea.Cmd {
	return m.fetch()
}

func (m roomListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rooms)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "r":
			m.loading = true
			return m, m.fetch()
		case "enter":
			if len(m.rooms) == 0 {
				return m, nil
			}
			room := m.rooms[m.cursor]
			m.selected = &room
			return m, tea.Quit
		}
	case roomsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.rooms = msg.infos
			if m.cursor >= len(m.rooms) {
				m.cursor = max(len(m.rooms)-1, 0)
			}
			if m.offset > m.cursor {
				m.offset = m.cursor
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m roomListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Live Rooms"))
	b.WriteString(listDimStyle.Render("  " + m.serverURL))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  r refresh  ⏎ details  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(listDimStyle.Render("  Loading..."))
		return b.String()
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
		return b.String()
	case len(m.rooms) == 0:
		b.WriteString(listDimStyle.Render("  No rooms. Start a server with 'capicu serve' and create a game."))
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.rooms) {
		end = len(m.rooms)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rooms[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		seats := fmt.Sprintf("%d/%d", r.PlayerCount, r.MaxPlayers)
		players := strings.Join(r.Players, ", ")
		if players == "" {
			players = "—"
		}

		rows = append(rows, []string{
			cursor, r.ID, string(r.Variant), string(r.Status),
			seats, fmt.Sprintf("%d", r.Round), formatAge(r.CreatedAt), players,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Game", "Variant", "Phase", "Seats", "Round", "Age", "Players").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.offset + row
			if actualIdx >= len(m.rooms) {
				return lipgloss.NewStyle()
			}
			r := m.rooms[actualIdx]
			isCurrent := actualIdx == m.cursor

			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(phaseColor(r.Status))
			} else if col == 6 {
				base = base.Foreground(colorDim)
			}
			if isCurrent {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rooms))))

	return b.String()
}

// phaseColor maps a game phase to a list color.
func phaseColor(s game.Status) lipgloss.Color {
	switch s {
	case game.StatusWaiting:
		return colorYellow
	case game.StatusPicking:
		return colorCyan
	case game.StatusPlaying:
		return colorGreen
	default:
		return colorDim
	}
}

// =============================================================================
// simulationModel - Live CPU match view
// =============================================================================

// simTickInterval paces the match at one turn per tick.
const simTickInterval = 400 * time.Millisecond

// simTickMsg advances the simulation one turn.
type simTickMsg time.Time

// simulationModel is the bubbletea model for watching a CPU match.
type simulationModel struct {
	sim      *simulation
	lastLine string
	rounds   []game.RoundResult
	paused   bool
	done     bool
	err      error
	width    int
}

// newSimulationModel wraps a fresh simulation for the watch view.
func newSimulationModel(sim *simulation) simulationModel {
	return simulationModel{sim: sim, width: 80}
}

func simTick() tea.Cmd {
	return tea.Tick(simTickInterval, func(t time.Time) tea.Msg { return simTickMsg(t) })
}

func (m simulationModel) Init() tea.Cmd {
	return simTick()
}

func (m simulationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case simTickMsg:
		if m.done || m.err != nil {
			return m, nil
		}
		if m.paused {
			return m, simTick()
		}
		m = m.advance()
		if m.done || m.err != nil {
			return m, nil
		}
		return m, simTick()
	}
	return m, nil
}

// advance plays one turn and rolls the round over when it ends.
func (m simulationModel) advance() simulationModel {
	now := time.Now()
	step, err := m.sim.step(now)
	if err != nil {
		m.err = err
		return m
	}
	m.lastLine = m.describeStep(step)

	if step.round == nil {
		return m
	}
	m.rounds = append(m.rounds, *step.round)

	if step.matchOver {
		m.done = true
		return m
	}
	if m.sim.cfg.maxRounds > 0 && len(m.rounds) >= m.sim.cfg.maxRounds {
		m.done = true
		return m
	}
	if err := m.sim.nextRound(now); err != nil {
		m.err = err
	}
	return m
}

// describeStep narrates one turn.
func (m simulationModel) describeStep(step stepResult) string {
	name := m.sim.name(step.playerID)
	if step.move == nil {
		if step.drew > 0 {
			return fmt.Sprintf("%s drew %d and passes", name, step.drew)
		}
		return fmt.Sprintf("%s passes", name)
	}
	line := fmt.Sprintf("%s plays %s on the %s", name, renderTile(step.move.Tile.Left, step.move.Tile.Right), step.move.Side)
	if step.drew > 0 {
		line += fmt.Sprintf(" after drawing %d", step.drew)
	}
	return line
}

func (m simulationModel) View() string {
	var b strings.Builder
	g := m.sim.match.Game()

	b.WriteString(StyleTitle.Render("Capicú Simulation"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · first to %d", g.Variant(), m.sim.match.TargetScore())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("space pause  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
		return b.String()
	}

	b.WriteString(m.renderChain(g))
	b.WriteString("\n")
	b.WriteString(m.renderSeats(g))

	if m.lastLine != "" {
		b.WriteString("\n")
		b.WriteString("  " + StyleValue.Render(m.lastLine))
		b.WriteString("\n")
	}

	if tail := m.renderRoundTail(); tail != "" {
		b.WriteString("\n")
		b.WriteString(tail)
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(m.renderOutcome())
	} else if m.paused {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("  paused"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderChain draws the board tiles left to right, wrapped to the width.
func (m simulationModel) renderChain(g *game.Game) string {
	tiles := g.BoardTiles()
	if len(tiles) == 0 {
		return listDimStyle.Render("  (empty table)") + "\n"
	}

	perLine := (m.width - 4) / 6
	if perLine < 4 {
		perLine = 4
	}

	var b strings.Builder
	for i, t := range tiles {
		if i%perLine == 0 {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  ")
		}
		b.WriteString(renderTile(t.Left, t.Right))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	ends := g.OpenEnds()
	if ends.Left != nil && ends.Right != nil {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  open ends: %d · %d", *ends.Left, *ends.Right)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderSeats lists every seat with hand size, the current turn marked.
func (m simulationModel) renderSeats(g *game.Game) string {
	var b strings.Builder
	current := g.CurrentTurn()
	for _, p := range g.Players() {
		marker := "  "
		style := listDimStyle
		if p.ID == current && !m.done {
			marker = "▸ "
			style = listSelectedStyle
		}
		hand := strings.Repeat(string(domino.GlyphBack(false)), len(p.Hand))
		b.WriteString(style.Render(fmt.Sprintf("%s%-14s %2d  %s", marker, p.Name, len(p.Hand), hand)))
		b.WriteString("\n")
	}

	scores := m.sim.match.Scores()
	if len(scores) > 0 {
		var parts []string
		for _, id := range m.scoreOrder(scores) {
			label := id
			if n, ok := m.sim.names[id]; ok {
				label = n
			}
			parts = append(parts, fmt.Sprintf("%s %d", label, scores[id]))
		}
		b.WriteString(listDimStyle.Render("  score: " + strings.Join(parts, " · ")))
		b.WriteString("\n")
	}
	return b.String()
}

// scoreOrder returns score keys sorted best first for stable display.
func (m simulationModel) scoreOrder(scores map[string]int) []string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// renderRoundTail shows the last few finished rounds.
func (m simulationModel) renderRoundTail() string {
	if len(m.rounds) == 0 {
		return ""
	}
	start := len(m.rounds) - 3
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, r := range m.rounds[start:] {
		suffix := ""
		switch {
		case r.WasBlocked:
			suffix = " (blocked)"
		case r.Capicu:
			suffix = " capicú!"
		}
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  round %d: %s +%d%s", r.RoundNumber, m.sim.roundLabel(r), r.PointsAwarded, suffix)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderOutcome shows the final banner inside the view.
func (m simulationModel) renderOutcome() string {
	state := m.sim.match.State()
	if state.MatchWinner == "" {
		return StyleWarning.Render("  round limit reached") + listDimStyle.Render("  press q to exit") + "\n"
	}
	winner := state.MatchWinner
	if n, ok := m.sim.names[winner]; ok {
		winner = n
	}
	return StyleSuccess.Render(fmt.Sprintf("  %s wins the match!", winner)) + listDimStyle.Render("  press q to exit") + "\n"
}

// =============================================================================
// Helpers
// =============================================================================

// formatAge renders how long ago t was, compactly.
func formatAge(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2")
	}
}
