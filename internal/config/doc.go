// Package config defines the format-agnostic project configuration for a
// federate build, its defaults, and the environment overlays applied on top
// of a configuration file.
//
// The `config.Model` is the single source of truth for the `pipeline`
// package. Concrete file formats, such as HCL, are provided in separate
// packages that implement the Loader interface.
package config
