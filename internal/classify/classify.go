// Package classify assigns discovered federate directories to roles.
//
// Directory names are not guaranteed to say which federate is which, so the
// Classifier is best effort: an ordered list of name rules is tried first and
// any candidates left over fill the open roles by listing position.
package classify

import (
	"context"
	"strings"

	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/model"
	"go.uber.org/zap"
)

var (
	// DefaultClientTokens mark a sender/client federate.
	DefaultClientTokens = []string{"client", "src", "send"}
	// DefaultServerTokens mark a receiver/server federate.
	DefaultServerTokens = []string{"server", "snk", "recv"}
)

// Rule assigns Role to candidates whose name satisfies Match.
type Rule struct {
	Role  model.Role
	Match func(name string) bool
}

// TokenRule matches names containing any of tokens, ignoring case.
func TokenRule(role model.Role, tokens ...string) Rule {
	lowered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	return Rule{
		Role: role,
		Match: func(name string) bool {
			name = strings.ToLower(name)
			for _, t := range lowered {
				if strings.Contains(name, t) {
					return true
				}
			}
			return false
		},
	}
}

// Classifier maps candidates onto a fixed set of roles.
type Classifier struct {
	roles []model.Role
	rules []Rule
}

// New creates a Classifier for roles (in priority order) using rules (in
// evaluation order).
func New(roles []model.Role, rules ...Rule) *Classifier {
	return &Classifier{roles: roles, rules: rules}
}

// Default creates the client/server Classifier with the standard tokens.
func Default() *Classifier {
	return WithTokens(DefaultClientTokens, DefaultServerTokens)
}

// WithTokens creates the client/server Classifier with custom tokens.
func WithTokens(clientTokens, serverTokens []string) *Classifier {
	return New(model.DefaultRoles,
		TokenRule(model.RoleClient, clientTokens...),
		TokenRule(model.RoleServer, serverTokens...),
	)
}

// Classify assigns every role to exactly one candidate. dir is the listed
// directory and only appears in error messages. Candidates must be in listing
// order; positional fallback follows that order.
func (c *Classifier) Classify(ctx context.Context, candidates []model.FederateCandidate, dir string) (model.RoleAssignment, error) {
	logger := ctxlog.FromContext(ctx)

	if len(candidates) != len(c.roles) {
		return model.RoleAssignment{}, fault.New(fault.ErrUnexpectedFederateCount,
			"expected %d federates, found %d in %s", len(c.roles), len(candidates), dir)
	}

	mapping := make(map[model.Role]model.FederateCandidate, len(c.roles))
	used := make([]bool, len(candidates))

	for i, cand := range candidates {
		for _, rule := range c.rules {
			if _, taken := mapping[rule.Role]; taken {
				continue
			}
			if rule.Match(cand.Name) {
				mapping[rule.Role] = cand
				used[i] = true
				logger.Debug("Federate matched by name.", zap.String("federate", cand.Name), zap.String("role", rule.Role.String()))
				break
			}
		}
	}

	for i, cand := range candidates {
		if used[i] {
			continue
		}
		for _, role := range c.roles {
			if _, taken := mapping[role]; taken {
				continue
			}
			mapping[role] = cand
			used[i] = true
			logger.Debug("Federate assigned by position.", zap.String("federate", cand.Name), zap.String("role", role.String()))
			break
		}
	}

	assignment, err := model.NewRoleAssignment(c.roles, mapping)
	if err != nil {
		return model.RoleAssignment{}, fault.Wrap(fault.ErrClassification, err, "cannot classify federates in %s", dir)
	}
	return assignment, nil
}
