package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/vk/lfdeploy/internal/config"
	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/fsutil"
	"github.com/vk/lfdeploy/internal/hcl_adapter"
	"go.uber.org/zap"
)

// loadModel layers the configuration: defaults, the HCL file, the .env file,
// the process environment and finally the flags.
func (a *App) loadModel(ctx context.Context) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := a.cfg

	dotenv, err := config.ReadDotEnv(filepath.Join(cfg.Root, config.DotEnvFileName))
	if err != nil {
		return nil, err
	}
	env := environMap(cfg.Environ)
	lookup := config.Layered(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}, dotenv)

	m := config.Default(cfg.Home)

	path := cfg.ConfigPath
	if path == "" {
		path = filepath.Join(cfg.Root, config.FileName)
	}
	switch {
	case fsutil.IsRegularFile(path):
		if a.loader == nil {
			a.loader = hcl_adapter.NewLoader(cfg.Home, cfg.Root, mergeEnv(dotenv, env))
		}
		if m, err = a.loader.Load(ctx, path, m); err != nil {
			return nil, err
		}
	case cfg.ConfigPath != "":
		return nil, fault.New(fault.ErrConfig, "configuration file %s does not exist", cfg.ConfigPath)
	default:
		logger.Debug("No configuration file, using defaults.", zap.String("path", path))
	}

	if err := config.ApplyEnv(m, lookup, cfg.Home); err != nil {
		return nil, err
	}

	if cfg.Compiler != "" {
		m.Compiler = config.ExpandHome(cfg.Compiler, cfg.Home)
	}
	if cfg.Remote != "" {
		m.Remote = cfg.Remote
	}
	if cfg.Timeout != nil {
		m.ToolTimeout = *cfg.Timeout
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// mergeEnv returns the variables visible to configuration expressions: the
// .env file overridden by the process environment.
func mergeEnv(dotenv, env map[string]string) map[string]string {
	out := make(map[string]string, len(dotenv)+len(env))
	for k, v := range dotenv {
		out[k] = v
	}
	for k, v := range env {
		out[k] = v
	}
	return out
}
