// Package document models the page under the tracked point: a flattened
// node tree with geometry as serialized by the capture client, renderer
// family detection, and best-effort ingestion of raw HTML for requests that
// carry markup instead of a structured snapshot.
package document
