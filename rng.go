package skeptic

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// ──────────────────────────────────────────────
// Seeded randomness — deterministic per (session, turn)
// ──────────────────────────────────────────────

// DrawSource produces pseudo-random generators, so objection and
// purchase draws replay identically for the same (sessionID, turn).
// Injectable for tests.
type DrawSource interface {
	// Turn returns a generator seeded from (sessionID, turn).
	Turn(sessionID string, turn int) *rand.Rand
}

// HashDrawSource derives seeds by hashing sessionID (+ turn) with an
// optional salt, so two deployments can diverge deliberately.
type HashDrawSource struct {
	Salt string
}

// NewHashDrawSource creates the default draw source.
func NewHashDrawSource(salt string) *HashDrawSource {
	return &HashDrawSource{Salt: salt}
}

func (h *HashDrawSource) Turn(sessionID string, turn int) *rand.Rand {
	return rand.New(rand.NewSource(hashSeed(fmt.Sprintf("%s:%s:%d", h.Salt, sessionID, turn))))
}

func hashSeed(key string) int64 {
	sum := sha256.Sum256([]byte(key))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
