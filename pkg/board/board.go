// Package board provides the serialization format for played-tile
// sequences.
//
// A board is the ordered chain of tiles as it currently lies on the table:
// index 0 is the leftmost tile, the last index the rightmost. Tiles keep
// the orientation the rules engine played them in, so adjacent tiles always
// touch on matching pips and the leftmost tile's Left face is the open left
// end.
//
// The format is used for API responses, match archival, caching, and the
// layout/render commands. It round-trips: parse → layout → export →
// re-parse produces identical results.
package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/errors"
)

// Board is the canonical serialization of a played-tile chain.
type Board struct {
	Tiles []domino.Domino `json:"tiles" bson:"tiles"`
}

// New creates a board from tiles in chain order.
func New(tiles ...domino.Domino) Board {
	return Board{Tiles: tiles}
}

// Len returns the number of tiles on the board.
func (b Board) Len() int { return len(b.Tiles) }

// String returns the chain in shorthand notation, e.g. "6-4 4-2".
func (b Board) String() string {
	parts := make([]string, len(b.Tiles))
	for i, t := range b.Tiles {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Parse reads shorthand notation: tiles in "L-R" form separated by spaces
// or commas, e.g. "6-4 4-2" or "6-4,4-2". The result is validated.
func Parse(s string) (Board, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return Board{}, errors.New(errors.ErrCodeInvalidBoard, "board is empty")
	}

	tiles := make([]domino.Domino, len(fields))
	for i, f := range fields {
		t, err := domino.Parse(f)
		if err != nil {
			return Board{}, errors.Wrap(errors.ErrCodeInvalidBoard, err, "tile %d", i)
		}
		tiles[i] = t
	}

	b := Board{Tiles: tiles}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Validate checks chain consistency: adjacent tiles must touch on matching
// pips in the orientation written, and no physical tile may appear twice.
func (b Board) Validate() error {
	seen := make(map[string]int, len(b.Tiles))
	for i, t := range b.Tiles {
		if t.Left < 0 || t.Left > domino.MaxPip || t.Right < 0 || t.Right > domino.MaxPip {
			return errors.New(errors.ErrCodeInvalidBoard, "tile %d pips out of range: %s", i, t)
		}
		if prev, ok := seen[t.Key()]; ok {
			return errors.New(errors.ErrCodeInvalidBoard, "tile %s appears at both %d and %d", t.Key(), prev, i)
		}
		seen[t.Key()] = i
	}

	for i := 0; i+1 < len(b.Tiles); i++ {
		if b.Tiles[i].Right != b.Tiles[i+1].Left {
			return errors.New(errors.ErrCodeInvalidBoard,
				"tiles %d and %d do not chain: %s then %s", i, i+1, b.Tiles[i], b.Tiles[i+1])
		}
	}

	return nil
}

// =============================================================================
// Board Serialization API
// =============================================================================

// Marshal converts a board to pretty-printed JSON bytes.
func Marshal(b Board) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(b, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes and validates JSON bytes.
func Unmarshal(data []byte) (Board, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a board to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(b Board, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(b, f)
}

// ReadFile reads and validates a board from a JSON file.
func ReadFile(path string) (Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return Board{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Write writes a board as JSON to an io.Writer.
func Write(b Board, w io.Writer) error {
	return writeTo(b, w)
}

// Read decodes and validates a JSON board from an io.Reader.
func Read(r io.Reader) (Board, error) {
	return readFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(b Board, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (Board, error) {
	var b Board
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Board{}, fmt.Errorf("decode: %w", err)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}
