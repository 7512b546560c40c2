// Package server manages the HTTP/HTTPS server lifecycle: non-blocking
// start, graceful shutdown with request draining, and SIGINT/SIGTERM
// handling via WaitForShutdown. Asynchronous serve errors surface on the
// Errors channel.
package server
