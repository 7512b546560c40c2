// Package extract assembles the bounded text blob around a located region:
// visible text first, a neighbor window for canvas and PDF renderers where
// no contiguous text node exists, bracketed structured annotations, and
// page metadata as a last resort. Assembly is a pure function of snapshot
// and region.
package extract
