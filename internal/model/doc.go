// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the value types that flow through a federate build:
// the program being built, the tree the compiler generated for it, the
// federate directories found in that tree, the roles they were assigned, and
// the binaries resolved and staged for each role.
//
// # Core Concepts
//
//   - SourceUnit: the .lf program, identified by its logical name (the file
//     stem). The name drives every derived directory and artifact name.
//
//   - GeneratedTree: the compiler's output root for one SourceUnit and the
//     federate directories discovered directly beneath it.
//
//   - FederateCandidate: one of those directories. Its name is free text and
//     is only used for heuristic matching.
//
//   - RoleAssignment: a complete mapping from every Role to exactly one
//     candidate. It is either complete or it does not exist.
//
//   - ResolvedBinary / StagedArtifact: the compiled file found for a role and
//     its copy under a canonical, role-qualified name.
//
// Values in this package are created once by the stage that owns them and are
// treated as read-only afterwards.
package model
