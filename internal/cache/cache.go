// Package cache holds short-lived inference responses in memory.
// Nothing is written to disk; descriptions never outlive the process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Store keeps encoded responses under keys built with Key
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
	Invalidate(key string)
}

// Key hashes parts into a fixed-length key, so raw descriptions are never stored as keys
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "symptriage:v1:" + hex.EncodeToString(hash[:])
}
