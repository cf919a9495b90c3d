// Package locate finds the compiled binary inside a federate directory.
//
// The depth at which a build backend leaves its binary is not fixed, so the
// Locator tries an ordered list of Probes and takes the first hit. A fixed
// conventional path is probed first; glob and recursive name searches follow.
// Supporting a new backend layout means appending one more Probe.
package locate
