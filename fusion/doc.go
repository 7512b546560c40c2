// Package fusion merges DOM-extracted text with OCR/vision text into one
// attributed result and caches every decision under the snapshot's content
// fingerprint. A cache hit returns the prior decision byte-for-byte and
// skips vision processing entirely; the cache is bounded with
// oldest-eviction since fingerprints are unbounded over a long session.
package fusion
