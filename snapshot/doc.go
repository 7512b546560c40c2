// Package snapshot produces the raster crop used by the OCR fallback: a
// fixed-size square centered on the attention point, cut from a
// full-viewport capture with a scale factor derived from the actual image
// dimensions so high-DPI and zoomed displays stay aligned. Crops live for
// one request; only their content fingerprint outlives them, as the fusion
// cache key.
package snapshot
