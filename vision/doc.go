// Package vision extracts text from snapshot crops. The Client interface
// keeps the pipeline testable without a network; the HTTP implementation
// talks to a vision endpoint with a hard timeout and a rate limiter, and
// writes the endpoint off for the session after too many consecutive
// failures. A failed vision pass is never a hard error upstream; the
// pipeline continues with whatever DOM text exists.
package vision
