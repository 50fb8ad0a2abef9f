// Package domino provides the core tile model shared by the game engine,
// the chain layout engine, and the serialization formats.
//
// A tile is an unordered pair of pip values. The same physical tile can be
// written "6-4" or "4-6"; [Domino.Key] collapses both spellings to one
// identity, which is what the layout cache and the rules engine key on.
package domino

import (
	"fmt"

	"github.com/capicuhq/capicu/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

const (
	// MaxPip is the highest pip value in a double-six set.
	MaxPip = 6

	// SetSize is the number of tiles in a double-six set: C(7,2) + 7 doubles.
	SetSize = 28
)

// =============================================================================
// Domino - Tile Value Type
// =============================================================================

// Domino is a single tile with two pip halves.
// The zero value is the blank tile 0-0.
type Domino struct {
	Left  int `json:"left" bson:"left"`
	Right int `json:"right" bson:"right"`
}

// New creates a tile from two pip values.
// Returns an error if either value is outside [0, MaxPip].
func New(left, right int) (Domino, error) {
	if left < 0 || left > MaxPip || right < 0 || right > MaxPip {
		return Domino{}, errors.New(errors.ErrCodeInvalidTile, "pips out of range: %d-%d", left, right)
	}
	return Domino{Left: left, Right: right}, nil
}

// IsDouble reports whether both halves carry the same pip value.
func (d Domino) IsDouble() bool { return d.Left == d.Right }

// Sum returns the total pip count of the tile.
func (d Domino) Sum() int { return d.Left + d.Right }

// Reversed returns the tile with its halves swapped.
// The physical tile is the same; only the spelling changes.
func (d Domino) Reversed() Domino { return Domino{Left: d.Right, Right: d.Left} }

// HasPip reports whether either half carries the given pip value.
func (d Domino) HasPip(pip int) bool { return d.Left == pip || d.Right == pip }

// Equals reports whether o is the same physical tile, either spelling.
func (d Domino) Equals(o Domino) bool {
	return (d.Left == o.Left && d.Right == o.Right) ||
		(d.Left == o.Right && d.Right == o.Left)
}

// Key returns the unordered identity of the tile, high pip first.
// Both "6-4" and "4-6" map to "6-4". Use this for map keys whenever the
// orientation of the tile must not matter.
func (d Domino) Key() string {
	hi, lo := d.Left, d.Right
	if lo > hi {
		hi, lo = lo, hi
	}
	return fmt.Sprintf("%d-%d", hi, lo)
}

// String returns the tile in "left-right" notation, e.g. "6-4".
// Unlike Key, String preserves orientation.
func (d Domino) String() string {
	return fmt.Sprintf("%d-%d", d.Left, d.Right)
}

// Parse converts "left-right" notation into a tile.
// Accepts exactly two pip digits separated by a dash, each in [0, MaxPip].
func Parse(s string) (Domino, error) {
	if err := errors.ValidateTileString(s); err != nil {
		return Domino{}, err
	}
	var left, right int
	if _, err := fmt.Sscanf(s, "%d-%d", &left, &right); err != nil {
		return Domino{}, errors.Wrap(errors.ErrCodeInvalidTile, err, "parse tile %q", s)
	}
	return New(left, right)
}

// MustParse is like Parse but panics on invalid input.
// Intended for tests and compile-time-constant tile literals.
func MustParse(s string) Domino {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// Set Generation
// =============================================================================

// FullSet returns all 28 tiles of a double-six set in canonical order:
// 0-0, 1-0, 1-1, 2-0, ... 6-6 (higher pip first within each tile).
func FullSet() []Domino {
	set := make([]Domino, 0, SetSize)
	for hi := 0; hi <= MaxPip; hi++ {
		for lo := 0; lo <= hi; lo++ {
			set = append(set, Domino{Left: hi, Right: lo})
		}
	}
	return set
}

// PipTotal sums the pips of all tiles in hand.
func PipTotal(hand []Domino) int {
	total := 0
	for _, d := range hand {
		total += d.Sum()
	}
	return total
}
