package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vk/lfdeploy/internal/fault"
)

// Environment variables overriding the configuration file.
const (
	EnvCompiler     = "LFDEPLOY_COMPILER"
	EnvRemote       = "LFDEPLOY_REMOTE"
	EnvGeneratedDir = "LFDEPLOY_GENERATED_DIR"
	EnvStagingDir   = "LFDEPLOY_STAGING_DIR"
	EnvTimeout      = "LFDEPLOY_TIMEOUT"
	EnvNotifyURL    = "LFDEPLOY_NOTIFY_URL"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// ReadDotEnv reads a .env file without touching the process environment. A
// missing file yields an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fault.Wrap(fault.ErrConfig, err, "reading %s", path)
	}
	return vars, nil
}

// Layered returns a lookup consulting the process environment first and
// falling back to the given variables, usually the project's .env file.
func Layered(env LookupFunc, fallback map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

// ApplyEnv overlays environment overrides on m. Empty values are ignored.
func ApplyEnv(m *Model, lookup LookupFunc, home string) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvCompiler); ok {
		m.Compiler = ExpandHome(v, home)
	}
	if v, ok := get(EnvRemote); ok {
		m.Remote = v
	}
	if v, ok := get(EnvGeneratedDir); ok {
		m.GeneratedDir = v
	}
	if v, ok := get(EnvStagingDir); ok {
		m.StagingDir = v
	}
	if v, ok := get(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fault.Wrap(fault.ErrConfig, err, "%s", EnvTimeout)
		}
		m.ToolTimeout = d
	}
	if v, ok := get(EnvNotifyURL); ok {
		if m.Notify == nil {
			m.Notify = &Notify{Namespace: "/", Event: DefaultNotifyEvent}
		}
		m.Notify.URL = v
	}
	return nil
}
