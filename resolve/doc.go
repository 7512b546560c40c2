// Package resolve orchestrates the content resolution pipeline for one
// attention point: locate the region for the document's renderer family,
// assemble the bounded text around it, fall back to a snapshot crop and
// OCR when the DOM text is thin, and fuse the two sources through the
// fingerprint cache. Every stage degrades rather than fails; the resolver
// always returns a result.
package resolve
