package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/capicuhq/capicu/pkg/errors"
	"github.com/capicuhq/capicu/pkg/game"
	"github.com/capicuhq/capicu/pkg/history"
	"github.com/capicuhq/capicu/pkg/rooms"
	"github.com/capicuhq/capicu/pkg/session"
)

type createGameRequest struct {
	PlayerName  string `json:"player_name"`
	Variant     string `json:"variant"`
	MaxPlayers  int    `json:"max_players"`
	CPUPlayers  int    `json:"cpu_players"`
	TargetScore int    `json:"target_score"`
}

type createGameResponse struct {
	GameID       string `json:"game_id"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	MatchID      string `json:"match_id"`
	SessionToken string `json:"session_token"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	variantStr := req.Variant
	if variantStr == "" {
		variantStr = s.cfg.Game.Variant
	}
	variant, err := game.ParseVariant(variantStr)
	if err != nil {
		writeError(w, err)
		return
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = s.cfg.Game.MaxPlayers
	}
	targetScore := req.TargetScore
	if targetScore == 0 {
		targetScore = s.cfg.Game.TargetScore
	}

	room, creator, err := s.manager.Create(r.Context(), variant, maxPlayers, targetScore, req.PlayerName)
	if err != nil {
		writeError(w, err)
		return
	}

	// Requested CPU seats are filled immediately. Filling the last one
	// starts the picking phase before anyone has even connected.
	now := time.Now().UTC()
	for i := 0; i < req.CPUPlayers && !room.Game().Full(); i++ {
		if _, _, err := room.AddCPU(creator.ID, now); err != nil {
			break
		}
	}

	writeJSON(w, http.StatusCreated, createGameResponse{
		GameID:       room.ID(),
		PlayerID:     creator.ID,
		PlayerName:   creator.Name,
		MatchID:      room.Match().ID(),
		SessionToken: s.mintSession(r, room, creator),
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	var infos []rooms.Info
	if r.URL.Query().Get("all") != "" {
		infos = s.manager.List()
	} else {
		infos = s.manager.Joinable()
	}
	if infos == nil {
		infos = []rooms.Info{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": infos})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	room, err := s.manager.Get(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.Info())
}

type joinGameRequest struct {
	PlayerName string `json:"player_name"`
}

type joinGameResponse struct {
	GameID       string `json:"game_id"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	SessionToken string `json:"session_token"`
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	room, err := s.manager.Get(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	player, started, err := room.Join(req.PlayerName, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("player joined", "game", room.ID(), "player", player.Name)

	s.hub.broadcast(room.ID(), encode(MsgPlayerJoined, PlayerJoinedPayload{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		PlayerCount: room.Game().PlayerCount(),
	}))
	s.broadcastState(room)
	if started {
		s.hub.broadcast(room.ID(), encode(MsgGameStarted, nil))
	}

	writeJSON(w, http.StatusOK, joinGameResponse{
		GameID:       room.ID(),
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		SessionToken: s.mintSession(r, room, player),
	})
}

// statsResponse extends the room counters with backend figures.
type statsResponse struct {
	rooms.Stats
	Sessions        int   `json:"sessions"`
	ArchivedMatches int64 `json:"archived_matches"`
	UptimeSeconds   int64 `json:"uptime_seconds"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := statsResponse{
		Stats:         s.manager.Stats(),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if n, err := s.sessions.Count(r.Context()); err == nil {
		st.Sessions = n
	}
	if n, err := s.archive.Count(r.Context()); err == nil {
		st.ArchivedMatches = n
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.standings.Top(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load leaderboard"))
		return
	}
	if entries == nil {
		entries = []session.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

type sessionResponse struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
}

// handleResolveSession turns a stored token back into a seat so a
// returning browser can rejoin its game. Using the token renews it.
func (s *Server) handleResolveSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load session"))
		return
	}
	if sess == nil {
		writeError(w, errors.New(errors.ErrCodeSessionNotFound, "unknown or expired session"))
		return
	}

	sess.Refresh(session.DefaultTTL)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.log.Warn("refresh session failed", "err", err)
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		GameID:   sess.RoomID,
		PlayerID: sess.PlayerID,
		Name:     sess.Name,
		Seat:     sess.Seat,
	})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	var (
		recs []history.MatchRecord
		err  error
	)
	if player := r.URL.Query().Get("player"); player != "" {
		recs, err = s.archive.ByPlayer(r.Context(), player, limit)
	} else {
		recs, err = s.archive.Recent(r.Context(), limit)
	}
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load match archive"))
		return
	}
	if recs == nil {
		recs = []history.MatchRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": recs})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matchID")
	rec, err := s.archive.Match(r.Context(), id)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load match"))
		return
	}
	if rec == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "match %s not archived", id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// mintSession stores a reconnect token for a freshly seated player.
// Failures cost only the token, never the seat.
func (s *Server) mintSession(r *http.Request, room *rooms.Room, p game.Player) string {
	seat := 0
	for i, q := range room.Game().Players() {
		if q.ID == p.ID {
			seat = i
			break
		}
	}
	sess, err := session.New(p.ID, room.ID(), p.Name, seat, session.DefaultTTL)
	if err != nil {
		s.log.Warn("mint session failed", "player", p.ID, "err", err)
		return ""
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.log.Warn("store session failed", "player", p.ID, "err", err)
		return ""
	}
	return sess.ID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), ErrorPayload{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
