// Package process runs the external tools the pipeline depends on: the
// program compiler and the remote copy tool. Every invocation blocks until
// the tool exits, captures its output, and is bound to a context whose
// cancellation kills the tool together with any children it spawned.
package process
