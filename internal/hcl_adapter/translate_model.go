// This file applies the decoded HCL schema on top of a format-agnostic
// configuration model.

package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/lfdeploy/internal/config"
	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/model"
)

// translate merges root into m. Empty strings and omitted blocks keep the
// values already in m.
func translate(ctx context.Context, root *fileRoot, ectx *hcl.EvalContext, home string, m *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	if root.Compiler != "" {
		m.Compiler = config.ExpandHome(root.Compiler, home)
	}
	if root.Remote != "" {
		m.Remote = root.Remote
	}
	if root.GeneratedDir != "" {
		m.GeneratedDir = root.GeneratedDir
	}
	if root.StagingDir != "" {
		m.StagingDir = root.StagingDir
	}
	if root.ToolTimeout != "" {
		d, err := time.ParseDuration(root.ToolTimeout)
		if err != nil {
			return fmt.Errorf("tool_timeout: %w", err)
		}
		m.ToolTimeout = d
	}

	if isExprDefined(ctx, root.ArtifactName, "artifact_name") {
		namer := &exprNamer{expr: root.ArtifactName, base: ectx}
		// Evaluate once up front so a broken expression fails at load time.
		seen := make(map[string]model.Role, len(model.DefaultRoles))
		for _, role := range model.DefaultRoles {
			name, err := namer.ArtifactName("program", role)
			if err != nil {
				return fmt.Errorf("artifact_name: %w", err)
			}
			if other, taken := seen[name]; taken {
				return fmt.Errorf("artifact_name: %q is the same for roles %s and %s", name, other, role)
			}
			seen[name] = role
		}
		m.ArtifactName = namer
	}

	if b := root.Locate; b != nil {
		if b.Binary != "" {
			m.Locate.Binary = b.Binary
		}
		if b.Paths != nil {
			m.Locate.Paths = *b.Paths
		}
		if b.Globs != nil {
			m.Locate.Globs = *b.Globs
		}
	}

	if b := root.Classify; b != nil {
		if b.ClientTokens != nil {
			m.Classify.ClientTokens = *b.ClientTokens
		}
		if b.ServerTokens != nil {
			m.Classify.ServerTokens = *b.ServerTokens
		}
	}

	if b := root.Transfer; b != nil {
		if b.Tool != "" {
			m.Transfer.Tool = b.Tool
		}
		if b.Args != nil {
			m.Transfer.Args = *b.Args
		}
		if b.Batch != nil {
			m.Transfer.Batch = *b.Batch
		}
	}

	if b := root.Notify; b != nil {
		n := &config.Notify{
			URL:       b.URL,
			Namespace: b.Namespace,
			Event:     b.Event,
		}
		if n.Namespace == "" {
			n.Namespace = "/"
		}
		if n.Event == "" {
			n.Event = config.DefaultNotifyEvent
		}
		if b.ConnectTimeout != "" {
			d, err := time.ParseDuration(b.ConnectTimeout)
			if err != nil {
				return fmt.Errorf("notify.connect_timeout: %w", err)
			}
			n.ConnectTimeout = d
		}
		m.Notify = n
		logger.Debug("Notify block configured.")
	}

	return nil
}
