package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hash returns the SHA-256 of data as a 64-character hex string. The
// pipeline uses it to content-address boards and layouts.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a stage-prefixed key: "prefix:sha256(parts)". Parts are
// JSON-encoded so struct options hash by field values, not addresses.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// keyType returns the stage prefix of a hashKey-format key for use as a
// low-cardinality observability label.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "raw"
}
