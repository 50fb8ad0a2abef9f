// Package session tracks which client holds which seat, so a page reload
// or dropped socket does not cost a player their place at the table.
//
// A Session is minted when a player joins a room. Its ID is the reconnect
// token handed back to the client; presenting the token later resolves to
// the room and player it belongs to. The Store interface has three
// backends:
//   - MemoryStore: process-local, for tests and single-instance development
//   - FileStore: JSON files on disk, survives restarts without extra services
//   - RedisStore: shared across instances, expiry rides on key TTLs
//
// The package also carries the standings board. Leaderboard ranks players
// by matches won; MemoryLeaderboard keeps it in process, RedisLeaderboard
// keeps a sorted set so standings survive restarts and aggregate across
// instances.
//
// # Usage
//
// Create a store:
//
//	// Development
//	store := session.NewMemoryStore()
//
//	// Durable single instance
//	store, err := session.NewFileStore("")  // Uses ~/.config/capicu/sessions/
//
//	// Multi-instance
//	store, err := session.NewRedisStore(ctx, session.Config{
//	    Addr: "localhost:6379",
//	})
//
// Manage sessions:
//
//	sess, err := session.New(playerID, roomID, name, seat, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	// Later, on reconnect
//	sess, err := store.Get(ctx, token)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Unknown or expired token
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session links a client to its seat at a table. The ID doubles as the
// reconnect token, so it is generated with crypto/rand and never derived
// from the player or room.
type Session struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	Seat      int       `json:"seat"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Refresh pushes the expiry ttl past now. Called when a token is used so
// an active player does not lapse mid-match.
func (s *Session) Refresh(ttl time.Duration) {
	s.ExpiresAt = time.Now().Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session does not exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Count reports the number of live sessions.
	Count(ctx context.Context) (int, error)

	// Cleanup removes expired sessions (no-op for Redis, which expires
	// keys itself).
	Cleanup(ctx context.Context) error
}

// Entry is one row of the standings.
type Entry struct {
	Player string `json:"player"`
	Wins   int    `json:"wins"`
}

// Leaderboard ranks players by matches won. Players are keyed by display
// name, the only identity a casual table has.
type Leaderboard interface {
	// RecordWin credits a match win to the named player.
	RecordWin(ctx context.Context, player string) error

	// Top returns at most n entries, best first.
	Top(ctx context.Context, n int) ([]Entry, error)
}

// Default durations.
const (
	// DefaultTTL is the default session duration. Long enough to span any
	// match plus an overnight pause; rooms themselves are reaped much
	// sooner, so a stale token just resolves to a missing room.
	DefaultTTL = 24 * time.Hour
)

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session binding a player to their seat in a room.
func New(playerID, roomID, name string, seat int, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		PlayerID:  playerID,
		RoomID:    roomID,
		Name:      name,
		Seat:      seat,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
