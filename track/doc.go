// Package track implements dwell detection over raw position samples.
//
// A Smoother turns noisy pointer or gaze samples into an exponentially
// averaged position with a decaying velocity estimate. A Machine watches the
// smoothed signal for sustained rest inside a fixed radius and fires at most
// one attention event per dwell episode. A Tracker owns both per tracking
// session, runs the fixed-interval evaluation poll, and honors the side
// signals that invalidate a dwell hypothesis: scrolling, hovering the result
// overlay, and focusing a text input. Manager keys Trackers by session ID
// and evicts idle ones.
//
// Sampling and evaluation are decoupled: samples arrive event-driven and
// never block, while dwell evaluation runs on its own poll tick.
package track
