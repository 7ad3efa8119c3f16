package textutil

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint derives the stable cache key for a query: the hex-encoded
// BLAKE3 digest of its normalized form. The same query always produces the
// same key across process restarts.
func Fingerprint(query string) string {
	sum := blake3.Sum256([]byte(Normalize(query)))
	return hex.EncodeToString(sum[:])
}
