// Package history archives finished matches.
//
// The live server keeps rooms in memory only; once a match ends its
// record is the single durable artifact. MongoStore persists records to a
// MongoDB collection, NullStore swallows them for deployments that run
// without mongo. Either way the server code path is the same.
package history

import (
	"context"
	"time"

	"github.com/capicuhq/capicu/pkg/game"
)

// MatchRecord is the archive document for one finished match.
// Winner holds whatever the match reported (a player ID or a team key);
// WinnerNames carries the resolved display names so queries and the
// standings never need the ID mapping back.
type MatchRecord struct {
	ID          string          `bson:"_id" json:"id"`
	RoomID      string          `bson:"room_id" json:"room_id"`
	Variant     string          `bson:"variant" json:"variant"`
	Players     []game.Player   `bson:"players" json:"players"`
	Match       game.MatchState `bson:"match" json:"match"`
	Rounds      int             `bson:"rounds" json:"rounds"`
	Winner      string          `bson:"winner" json:"winner"`
	WinnerNames []string        `bson:"winner_names" json:"winner_names"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	FinishedAt  time.Time       `bson:"finished_at" json:"finished_at"`
}

// Store is the interface for match archive backends.
type Store interface {
	// Save archives a finished match, replacing any previous document
	// with the same match ID.
	Save(ctx context.Context, rec MatchRecord) error

	// Match retrieves one archived match.
	// Returns nil, nil if no match with that ID was archived.
	Match(ctx context.Context, id string) (*MatchRecord, error)

	// Recent returns the latest archived matches, newest first.
	Recent(ctx context.Context, limit int) ([]MatchRecord, error)

	// ByPlayer returns archived matches a named player sat in, newest
	// first.
	ByPlayer(ctx context.Context, name string, limit int) ([]MatchRecord, error)

	// Count reports how many matches are archived.
	Count(ctx context.Context) (int64, error)
}

// NewRecord builds the archive document for a finished match.
// Hands are stripped from the roster; the per-round pip counts in the
// match state already capture what each player was left holding.
func NewRecord(roomID, variant string, players []game.Player, state game.MatchState, createdAt, finishedAt time.Time) MatchRecord {
	roster := make([]game.Player, len(players))
	for i, p := range players {
		p.Hand = nil
		roster[i] = p
	}

	return MatchRecord{
		ID:          state.ID,
		RoomID:      roomID,
		Variant:     variant,
		Players:     roster,
		Match:       state,
		Rounds:      len(state.CompletedRounds),
		Winner:      state.MatchWinner,
		WinnerNames: winnerNames(state),
		CreatedAt:   createdAt.UTC(),
		FinishedAt:  finishedAt.UTC(),
	}
}

// winnerNames resolves the match winner to display names. A team win
// credits every player on the team.
func winnerNames(state game.MatchState) []string {
	switch state.MatchWinner {
	case "":
		return nil
	case game.TeamAKey:
		return teamNames(state, state.TeamA)
	case game.TeamBKey:
		return teamNames(state, state.TeamB)
	default:
		if name, ok := state.PlayerNames[state.MatchWinner]; ok {
			return []string{name}
		}
		return nil
	}
}

func teamNames(state game.MatchState, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := state.PlayerNames[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// NullStore is a no-op archive that never stores anything.
// Used when the server runs without mongo.
type NullStore struct{}

// NewNullStore creates a null archive.
func NewNullStore() Store {
	return &NullStore{}
}

// Save does nothing.
func (s *NullStore) Save(ctx context.Context, rec MatchRecord) error {
	return nil
}

// Match always reports no archived match.
func (s *NullStore) Match(ctx context.Context, id string) (*MatchRecord, error) {
	return nil, nil
}

// Recent always returns an empty archive.
func (s *NullStore) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	return nil, nil
}

// ByPlayer always returns an empty archive.
func (s *NullStore) ByPlayer(ctx context.Context, name string, limit int) ([]MatchRecord, error) {
	return nil, nil
}

// Count always reports zero.
func (s *NullStore) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

// Close does nothing.
func (s *NullStore) Close(ctx context.Context) error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
