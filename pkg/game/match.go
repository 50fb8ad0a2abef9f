package game

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/capicuhq/capicu/pkg/errors"
)

// ===== Match Types =====

// Team keys used in winner fields and score maps.
const (
	TeamAKey = "team_a"
	TeamBKey = "team_b"
)

// TeamScores holds the running totals of a four-player team game.
// Team A is seats 0 and 2, team B seats 1 and 3.
type TeamScores struct {
	TeamA int `json:"team_a" bson:"team_a"`
	TeamB int `json:"team_b" bson:"team_b"`
}

// RoundResult records one completed round of a match.
type RoundResult struct {
	RoundNumber   int            `json:"round_number" bson:"round_number"`
	WinnerID      string         `json:"winner_id,omitempty" bson:"winner_id,omitempty"`
	WinnerTeam    string         `json:"winner_team,omitempty" bson:"winner_team,omitempty"`
	PointsAwarded int            `json:"points_awarded" bson:"points_awarded"`
	RemainingPips map[string]int `json:"remaining_pips" bson:"remaining_pips"`
	WasBlocked    bool           `json:"was_blocked" bson:"was_blocked"`
	Capicu        bool           `json:"capicu,omitempty" bson:"capicu,omitempty"`
	VariantPoints map[string]int `json:"variant_points,omitempty" bson:"variant_points,omitempty"`
}

// MatchState is the serializable face of a match, sent to clients and
// archived with finished matches.
type MatchState struct {
	ID              string            `json:"id" bson:"id"`
	IsTeamGame      bool              `json:"is_team_game" bson:"is_team_game"`
	TargetScore     int               `json:"target_score" bson:"target_score"`
	CurrentRound    int               `json:"current_round" bson:"current_round"`
	TeamScores      *TeamScores       `json:"team_scores,omitempty" bson:"team_scores,omitempty"`
	Scores          map[string]int    `json:"scores,omitempty" bson:"scores,omitempty"`
	TeamA           []string          `json:"team_a,omitempty" bson:"team_a,omitempty"`
	TeamB           []string          `json:"team_b,omitempty" bson:"team_b,omitempty"`
	TeamAName       string            `json:"team_a_name,omitempty" bson:"team_a_name,omitempty"`
	TeamBName       string            `json:"team_b_name,omitempty" bson:"team_b_name,omitempty"`
	PlayerNames     map[string]string `json:"player_names" bson:"player_names"`
	PlayerPositions []string          `json:"player_positions" bson:"player_positions"`
	AvatarIDs       []int             `json:"avatar_ids,omitempty" bson:"avatar_ids,omitempty"`
	CompletedRounds []RoundResult     `json:"completed_rounds" bson:"completed_rounds"`
	MatchWinner     string            `json:"match_winner,omitempty" bson:"match_winner,omitempty"`
}

// Match runs a game across rounds until one side reaches the target
// score. Safe for concurrent use.
type Match struct {
	mu sync.Mutex

	id   string
	game *Game

	completedRounds []RoundResult

	isTeamGame bool
	teamA      []string
	teamB      []string
	teamAName  string
	teamBName  string

	teamScores       TeamScores
	individualScores map[string]int
	targetScore      int

	playerNames     map[string]string
	playerPositions []string
	avatarIDs       []int

	createdAt    time.Time
	lastActivity time.Time

	rng *rand.Rand
}

// MatchOption configures a new match.
type MatchOption func(*Match)

// WithMatchSeed makes avatar and team name selection deterministic.
func WithMatchSeed(seed uint64) MatchOption {
	return func(m *Match) {
		m.rng = rand.New(rand.NewPCG(seed, seed^0xcafef00d))
	}
}

// NewMatch wraps a game for multi-round play to the target score.
func NewMatch(g *Game, targetScore int, opts ...MatchOption) (*Match, error) {
	if targetScore < MinTargetScore || targetScore > MaxTargetScore {
		return nil, errors.New(errors.ErrCodeInvalidInput, "target score must be between %d and %d, got %d", MinTargetScore, MaxTargetScore, targetScore)
	}

	now := time.Now().UTC()
	m := &Match{
		id:               uuid.NewString()[:8],
		game:             g,
		individualScores: make(map[string]int),
		targetScore:      targetScore,
		playerNames:      make(map[string]string),
		createdAt:        now,
		lastActivity:     now,
		rng:              rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, p := range g.Players() {
		m.playerNames[p.ID] = p.Name
		m.playerPositions = append(m.playerPositions, p.ID)
		m.individualScores[p.ID] = 0
	}
	return m, nil
}

// ID returns the match id.
func (m *Match) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Game returns the underlying table.
func (m *Match) Game() *Game { return m.game }

// TargetScore returns the score that ends the match.
func (m *Match) TargetScore() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.targetScore
}

// IsTeamGame reports whether seats are paired into teams.
func (m *Match) IsTeamGame() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isTeamGame
}

// LastActivity returns the most recent match-level state change.
func (m *Match) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// ===== Round Setup =====

// FinalizeSeating is called when a round begins: it syncs the roster
// with late joiners, deals avatars once, and with four seats pairs
// opposite players into named teams.
func (m *Match) FinalizeSeating() {
	players := m.game.Players()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range players {
		if _, ok := m.playerNames[p.ID]; !ok {
			m.playerNames[p.ID] = p.Name
			m.playerPositions = append(m.playerPositions, p.ID)
			m.individualScores[p.ID] = 0
		}
	}

	if len(m.avatarIDs) == 0 {
		pool := append([]int(nil), AvatarPool...)
		m.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		n := min(len(players), len(pool))
		m.avatarIDs = pool[:n]
		m.game.assignAvatars(m.avatarIDs)
	}

	if len(players) == MaxPlayers && !m.isTeamGame {
		m.isTeamGame = true
		m.teamA = []string{players[0].ID, players[2].ID}
		m.teamB = []string{players[1].ID, players[3].ID}
		m.teamAName, m.teamBName = m.pickTeamNamesLocked(players)
		m.individualScores = make(map[string]int)
	}
	m.lastActivity = time.Now().UTC()
}

// pickTeamNamesLocked draws two species names not used by CPU seats.
func (m *Match) pickTeamNamesLocked(players []Player) (string, string) {
	taken := make(map[string]bool)
	for _, p := range players {
		if p.CPU {
			taken[p.Name] = true
		}
	}
	var available []string
	for _, name := range Species {
		if !taken[name] {
			available = append(available, name)
		}
	}
	if len(available) < 2 {
		return "Team A", "Team B"
	}
	m.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	return available[0], available[1]
}

// assignAvatars stamps avatar ids onto seats in order.
func (g *Game) assignAvatars(ids []int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, p := range g.players {
		if i < len(ids) {
			p.AvatarID = ids[i]
		}
	}
}

// ===== Round Completion =====

// CompleteRound folds a finished round into the match scores and records
// the result. Calling it twice for the same round is an error.
func (m *Match) CompleteRound() (RoundResult, error) {
	if m.game.Status() != StatusFinished {
		return RoundResult{}, errors.New(errors.ErrCodeWrongPhase, "round is not finished")
	}

	winnerID, capicu := m.game.Winner()
	blocked := m.game.Blocked()
	variantPoints := m.game.VariantPoints()
	roundNumber := m.game.RoundNumber()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.completedRounds) >= roundNumber {
		return RoundResult{}, errors.New(errors.ErrCodeWrongPhase, "round %d already recorded", roundNumber)
	}

	var result RoundResult
	if m.isTeamGame {
		team, points, pips, err := m.game.TeamRoundPoints(m.teamA, m.teamB)
		if err != nil {
			return RoundResult{}, err
		}
		switch team {
		case TeamAKey:
			m.teamScores.TeamA += points
		case TeamBKey:
			m.teamScores.TeamB += points
		}
		for id, pts := range variantPoints {
			if m.onTeamALocked(id) {
				m.teamScores.TeamA += pts
			} else {
				m.teamScores.TeamB += pts
			}
		}
		result = RoundResult{
			RoundNumber:   roundNumber,
			WinnerID:      winnerID,
			WinnerTeam:    team,
			PointsAwarded: points,
			RemainingPips: pips,
			WasBlocked:    blocked,
			Capicu:        capicu,
			VariantPoints: variantPoints,
		}
	} else {
		winner, points, pips, err := m.game.RoundPoints()
		if err != nil {
			return RoundResult{}, err
		}
		if winner != "" {
			m.individualScores[winner] += points
		}
		for id, pts := range variantPoints {
			m.individualScores[id] += pts
		}
		result = RoundResult{
			RoundNumber:   roundNumber,
			WinnerID:      winner,
			PointsAwarded: points,
			RemainingPips: pips,
			WasBlocked:    blocked,
			Capicu:        capicu,
			VariantPoints: variantPoints,
		}
	}

	m.completedRounds = append(m.completedRounds, result)
	m.lastActivity = time.Now().UTC()
	return result, nil
}

func (m *Match) onTeamALocked(playerID string) bool {
	for _, id := range m.teamA {
		if id == playerID {
			return true
		}
	}
	return false
}

// ===== Match Progression =====

// Winner returns "team_a"/"team_b" or a player id once the target score
// is reached, or "" while the match is still live.
func (m *Match) Winner() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winnerLocked()
}

func (m *Match) winnerLocked() string {
	if m.isTeamGame {
		if m.teamScores.TeamA >= m.targetScore {
			return TeamAKey
		}
		if m.teamScores.TeamB >= m.targetScore {
			return TeamBKey
		}
		return ""
	}
	for id, score := range m.individualScores {
		if score >= m.targetScore {
			return id
		}
	}
	return ""
}

// StartNextRound resets the table for another round, the previous
// winner leading. Returns false without starting when the match is over.
func (m *Match) StartNextRound(now time.Time) (bool, error) {
	m.mu.Lock()
	if m.winnerLocked() != "" {
		m.mu.Unlock()
		return false, nil
	}
	next := len(m.completedRounds) + 1
	var hint string
	if n := len(m.completedRounds); n > 0 {
		hint = m.completedRounds[n-1].WinnerID
	}
	m.lastActivity = time.Now().UTC()
	m.mu.Unlock()

	m.game.ResetRound(next)
	m.game.SetStartHint(hint)
	if err := m.game.StartPicking(now); err != nil {
		return false, err
	}
	return true, nil
}

// ===== State =====

// Scores returns the current totals: team totals in a team game,
// per-player totals otherwise.
func (m *Match) Scores() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isTeamGame {
		return map[string]int{
			TeamAKey: m.teamScores.TeamA,
			TeamBKey: m.teamScores.TeamB,
		}
	}
	out := make(map[string]int, len(m.individualScores))
	for id, score := range m.individualScores {
		out[id] = score
	}
	return out
}

// State builds the serializable match summary.
func (m *Match) State() MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := MatchState{
		ID:              m.id,
		IsTeamGame:      m.isTeamGame,
		TargetScore:     m.targetScore,
		CurrentRound:    len(m.completedRounds) + 1,
		PlayerNames:     make(map[string]string, len(m.playerNames)),
		PlayerPositions: append([]string(nil), m.playerPositions...),
		AvatarIDs:       append([]int(nil), m.avatarIDs...),
		CompletedRounds: append([]RoundResult(nil), m.completedRounds...),
		MatchWinner:     m.winnerLocked(),
	}
	for id, name := range m.playerNames {
		state.PlayerNames[id] = name
	}

	if m.isTeamGame {
		scores := m.teamScores
		state.TeamScores = &scores
		state.TeamA = append([]string(nil), m.teamA...)
		state.TeamB = append([]string(nil), m.teamB...)
		state.TeamAName = m.teamAName
		state.TeamBName = m.teamBName
	} else {
		state.Scores = make(map[string]int, len(m.individualScores))
		for id, score := range m.individualScores {
			state.Scores[id] = score
		}
	}
	return state
}
