package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/vk/lfdeploy/internal/pipeline"
	"github.com/vk/lfdeploy/internal/process"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Source is the .lf file to build.
	Source string
	Mode   pipeline.Mode
	// Root is the project root. Empty means the working directory.
	Root string
	// ConfigPath overrides <root>/lfdeploy.hcl. An explicit path must exist.
	ConfigPath string

	// Overrides from flags. Empty or nil values keep the configured ones.
	Compiler   string
	Remote     string
	Timeout    *time.Duration
	NoTransfer bool

	LogFormat string
	LogLevel  string

	// Home and Environ default to the user's home directory and os.Environ.
	Home    string
	Environ []string
	// Runner replaces the process runner, mainly in tests.
	Runner process.Runner
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// NewConfig validates cfg and fills in defaults. Every problem is a
// fault.ErrUsage; nothing on disk is changed.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Source == "" {
		return nil, fault.New(fault.ErrUsage, "a source file is required")
	}
	if filepath.Ext(cfg.Source) != model.SourceExtension {
		return nil, fault.New(fault.ErrUsage, "source %s must have the %s extension", cfg.Source, model.SourceExtension)
	}
	info, err := os.Stat(cfg.Source)
	if err != nil {
		return nil, fault.Wrap(fault.ErrUsage, err, "source %s", cfg.Source)
	}
	if !info.Mode().IsRegular() {
		return nil, fault.New(fault.ErrUsage, "source %s is not a regular file", cfg.Source)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !contains(logLevels, cfg.LogLevel) {
		return nil, fault.New(fault.ErrUsage, "invalid log-level: must be one of %s", strings.Join(logLevels, ", "))
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !contains(logFormats, cfg.LogFormat) {
		return nil, fault.New(fault.ErrUsage, "invalid log-format: must be one of %s", strings.Join(logFormats, ", "))
	}
	if cfg.Timeout != nil && *cfg.Timeout < 0 {
		return nil, fault.New(fault.ErrUsage, "timeout must not be negative")
	}

	if cfg.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fault.Wrap(fault.ErrUsage, err, "determining the working directory")
		}
		cfg.Root = wd
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fault.Wrap(fault.ErrUsage, err, "root %s", cfg.Root)
	}
	info, err = os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fault.New(fault.ErrUsage, "root %s is not a directory", cfg.Root)
	}
	cfg.Root = root

	if cfg.Home == "" {
		cfg.Home, _ = os.UserHomeDir()
	}
	if cfg.Environ == nil {
		cfg.Environ = os.Environ()
	}
	return &cfg, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
