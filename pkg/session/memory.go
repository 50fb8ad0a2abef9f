package session

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps sessions in process memory. Sessions vanish on
// restart, which is fine for tests and single-instance development where
// the rooms they point at vanish too.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if sess.IsExpired() {
		delete(s.sessions, sessionID)
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sess := range s.sessions {
		if !sess.IsExpired() {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)

// =============================================================================
// In-memory standings
// =============================================================================

// MemoryLeaderboard keeps the standings in process memory.
type MemoryLeaderboard struct {
	mu   sync.Mutex
	wins map[string]int
}

// NewMemoryLeaderboard creates an empty in-memory standings board.
func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{wins: make(map[string]int)}
}

func (l *MemoryLeaderboard) RecordWin(ctx context.Context, player string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.wins[player]++
	return nil
}

func (l *MemoryLeaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.wins))
	for player, wins := range l.wins {
		entries = append(entries, Entry{Player: player, Wins: wins})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Player < entries[j].Player
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

var _ Leaderboard = (*MemoryLeaderboard)(nil)
