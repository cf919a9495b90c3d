// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the generated tree and the federate candidates found in it.
//
// Why keep candidates in listing order?
//
// Several later decisions are positional: the classifier falls back to
// listing order when names carry no role markers. Candidates are therefore
// always held sorted by name, so the same tree yields the same assignment on
// every filesystem.
package model

// FederateCandidate is one per-federate directory the compiler produced.
type FederateCandidate struct {
	// Name is the directory's base name.
	Name string
	// Dir is the absolute path of the directory.
	Dir string
}

// GeneratedTree is the compiler output for one SourceUnit.
type GeneratedTree struct {
	// Root is the generated-output directory for the unit.
	Root string
	// Candidates are the immediate subdirectories of Root, sorted by name.
	Candidates []FederateCandidate
}

// Names returns the candidate names in listing order.
func (t GeneratedTree) Names() []string {
	names := make([]string, len(t.Candidates))
	for i, c := range t.Candidates {
		names[i] = c.Name
	}
	return names
}
