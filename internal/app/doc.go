// Package app contains the core application logic. It turns a validated
// Config into a loaded project configuration and a pipeline run, decoupled
// from any specific entrypoint like a CLI.
package app
