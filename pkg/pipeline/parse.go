package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/capicuhq/capicu/pkg/board"
)

// Source format labels reported to observability hooks.
const (
	sourceShorthand = "shorthand"
	sourceFile      = "file"
)

// boardSource returns the raw source text and its format label.
// Shorthand takes priority when both inputs are set.
func (o *Options) boardSource() (string, string, error) {
	if o.Board != "" {
		return o.Board, sourceShorthand, nil
	}
	data, err := os.ReadFile(o.BoardFile)
	if err != nil {
		return "", sourceFile, fmt.Errorf("read board file: %w", err)
	}
	return string(data), sourceFile, nil
}

// ParseBoard reads and validates a board from the configured source.
// File sources may contain either the JSON board format or shorthand
// notation; the content decides.
func ParseBoard(opts Options) (board.Board, error) {
	source, _, err := opts.boardSource()
	if err != nil {
		return board.Board{}, err
	}
	return parseSource(source)
}

// parseSource dispatches on content: JSON documents start with a brace,
// everything else parses as shorthand.
func parseSource(source string) (board.Board, error) {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(trimmed, "{") {
		return board.Unmarshal([]byte(trimmed))
	}
	return board.Parse(trimmed)
}
