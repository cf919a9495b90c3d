// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the binaries resolved for each role and their staged copies.
package model

// ResolvedBinary is the compiled file found for one assigned federate.
type ResolvedBinary struct {
	Role      Role
	Candidate FederateCandidate
	// Path is a regular file at the time it was resolved.
	Path string
	// Probe names the locate strategy that found Path.
	Probe string
}

// StagedArtifact is a ResolvedBinary copied under its canonical name.
type StagedArtifact struct {
	Role Role
	// Source is the binary the artifact was copied from. It is empty when the
	// artifact was picked up from an earlier run's staging directory.
	Source string
	// Path is the staged file.
	Path string
}

// StagedPaths returns the staged file paths in order.
func StagedPaths(artifacts []StagedArtifact) []string {
	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = a.Path
	}
	return paths
}
