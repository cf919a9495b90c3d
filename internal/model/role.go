// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines roles and the assignment of federates to roles.
package model

import (
	"fmt"
	"strings"
)

// Role is the physical part a federate binary plays in the deployment.
type Role string

const (
	RoleClient Role = "client"
	RoleServer Role = "server"
)

// DefaultRoles lists the roles in priority order.
var DefaultRoles = []Role{RoleClient, RoleServer}

func (r Role) String() string {
	return string(r)
}

// RoleAssignment maps each role to exactly one candidate. The zero value is
// empty; complete assignments are built with NewRoleAssignment.
type RoleAssignment struct {
	roles      []Role
	candidates map[Role]FederateCandidate
}

// NewRoleAssignment builds an assignment for roles from the given mapping.
// It fails unless every role is mapped and no candidate is used twice.
func NewRoleAssignment(roles []Role, mapping map[Role]FederateCandidate) (RoleAssignment, error) {
	if len(mapping) != len(roles) {
		return RoleAssignment{}, fmt.Errorf("expected %d roles to be assigned, got %d", len(roles), len(mapping))
	}
	seen := make(map[string]Role, len(roles))
	out := make(map[Role]FederateCandidate, len(roles))
	for _, role := range roles {
		c, ok := mapping[role]
		if !ok {
			return RoleAssignment{}, fmt.Errorf("role %q is not assigned", role)
		}
		if prev, dup := seen[c.Dir]; dup {
			return RoleAssignment{}, fmt.Errorf("federate %q assigned to both %q and %q", c.Name, prev, role)
		}
		seen[c.Dir] = role
		out[role] = c
	}
	return RoleAssignment{
		roles:      append([]Role(nil), roles...),
		candidates: out,
	}, nil
}

// Roles returns the assigned roles in priority order.
func (a RoleAssignment) Roles() []Role {
	return append([]Role(nil), a.roles...)
}

// Get returns the candidate assigned to role.
func (a RoleAssignment) Get(role Role) (FederateCandidate, bool) {
	c, ok := a.candidates[role]
	return c, ok
}

// String renders the assignment as "client=EchoClient server=EchoServer".
func (a RoleAssignment) String() string {
	parts := make([]string, 0, len(a.roles))
	for _, role := range a.roles {
		parts = append(parts, fmt.Sprintf("%s=%s", role, a.candidates[role].Name))
	}
	return strings.Join(parts, " ")
}
