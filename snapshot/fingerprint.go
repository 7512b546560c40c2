package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the content cache key for a crop: the hex SHA-256 of
// its bytes. Identical content yields identical fingerprints regardless of
// when or where it was captured, which is what lets the fusion cache skip
// repeat vision calls.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
