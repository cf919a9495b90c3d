package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/lfdeploy/internal/config"
	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"go.uber.org/zap"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	home string
	root string
	env  map[string]string
}

// NewLoader creates an HCL loader. home, root and env are exposed to
// expressions in the file as the variables of the same names.
func NewLoader(home, root string, env map[string]string) *Loader {
	return &Loader{home: home, root: root, env: env}
}

var _ config.Loader = (*Loader)(nil)

// Load parses and decodes the file at path and merges it on top of a copy of
// base.
func (l *Loader) Load(ctx context.Context, path string, base *config.Model) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", zap.String("path", path))

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fault.Wrap(fault.ErrConfig, diags, "failed to parse %s", path)
	}

	ectx := newEvalContext(l.home, l.root, l.env)

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, ectx, &root)
	if diags.HasErrors() {
		return nil, fault.Wrap(fault.ErrConfig, diags, "failed to decode %s", path)
	}

	m := base.Clone()
	if err := translate(ctx, &root, ectx, l.home, m); err != nil {
		return nil, fault.Wrap(fault.ErrConfig, err, "in %s", path)
	}
	m.Source = path

	logger.Debug("HCL loading complete.",
		zap.String("compiler", m.Compiler),
		zap.String("staging_dir", m.StagingDir),
		zap.Bool("notify", m.Notify != nil),
	)
	return m, nil
}
