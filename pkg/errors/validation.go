package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePlayerName validates a display name for safety and correctness.
// It rejects names that could be used for injection or log spoofing.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No null bytes
//   - Maximum length of 32 characters
func ValidatePlayerName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "player name cannot be empty")
	}

	if len(name) > 32 {
		return New(ErrCodeInvalidInput, "player name too long (max 32 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "player name contains invalid control characters")
		}
	}

	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "player name cannot be only whitespace")
	}

	return nil
}

// ValidatePath validates an output file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// tileStringRegex matches the "left-right" tile shorthand, e.g. "6-4".
var tileStringRegex = regexp.MustCompile(`^[0-6]-[0-6]$`)

// ValidateTileString validates the compact "L-R" tile notation.
// Pip values must each be in [0,6].
func ValidateTileString(s string) error {
	if s == "" {
		return New(ErrCodeInvalidTile, "tile cannot be empty")
	}

	if !tileStringRegex.MatchString(s) {
		return New(ErrCodeInvalidTile, "invalid tile notation: %q (want e.g. \"6-4\")", s)
	}

	return nil
}

// gameIDRegex matches UUID-shaped game identifiers.
var gameIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidateGameID validates a game identifier received from a client.
func ValidateGameID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "game id cannot be empty")
	}

	if !gameIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid game id: %q", id)
	}

	return nil
}
