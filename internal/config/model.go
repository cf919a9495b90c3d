package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/lfdeploy/internal/classify"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/locate"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/vk/lfdeploy/internal/transfer"
)

const (
	// FileName is the project configuration file looked up in the project root.
	FileName = "lfdeploy.hcl"
	// DotEnvFileName holds environment overrides in the project root.
	DotEnvFileName = ".env"

	DefaultCompiler     = "~/reactor-uc/lfc/bin/lfc-dev"
	DefaultRemote       = "hailo@hailo-desktop:~/lf"
	DefaultGeneratedDir = "src-gen"
	DefaultStagingDir   = "build/programs"
	DefaultNotifyEvent  = "lfdeploy"
)

// Model is the complete project configuration.
type Model struct {
	// Compiler is the program compiler executable.
	Compiler string
	// Remote is the default user@host:path copy destination.
	Remote string
	// GeneratedDir holds the compiler's output, relative to the project root
	// unless absolute. Each program gets GeneratedDir/<name>.
	GeneratedDir string
	// StagingDir receives the staged artifacts, relative to the project root
	// unless absolute.
	StagingDir string
	// ToolTimeout bounds each external tool invocation; zero means no limit.
	ToolTimeout time.Duration
	// ArtifactName derives staged file names.
	ArtifactName ArtifactNamer

	Locate   Locate
	Classify Classify
	Transfer Transfer
	// Notify is nil when no notification endpoint is configured.
	Notify *Notify

	// Source is the configuration file the model was loaded from, if any.
	Source string
}

// Locate configures artifact discovery inside a federate directory.
type Locate struct {
	// Binary is the file name searched for recursively.
	Binary string
	// Paths are fixed relative paths probed first, in order.
	Paths []string
	// Globs are doublestar patterns probed after Paths, in order.
	Globs []string
}

// Classify configures the role name tokens.
type Classify struct {
	ClientTokens []string
	ServerTokens []string
}

// Transfer configures the copy tool.
type Transfer struct {
	Tool  string
	Args  []string
	Batch bool
}

// Notify configures the socket.io endpoint receiving state transitions.
type Notify struct {
	URL       string
	Namespace string
	Event     string
	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration
}

// DefaultArtifactNamer names artifacts "<lower(program)>_<role>.elf".
type DefaultArtifactNamer struct{}

func (DefaultArtifactNamer) ArtifactName(program string, role model.Role) (string, error) {
	return fmt.Sprintf("%s_%s.elf", strings.ToLower(program), role), nil
}

// Default returns the built-in configuration. home is used to expand the
// default compiler location.
func Default(home string) *Model {
	return &Model{
		Compiler:     ExpandHome(DefaultCompiler, home),
		Remote:       DefaultRemote,
		GeneratedDir: DefaultGeneratedDir,
		StagingDir:   DefaultStagingDir,
		ArtifactName: DefaultArtifactNamer{},
		Locate: Locate{
			Binary: locate.DefaultBinaryName,
			Paths:  []string{locate.DefaultBinaryPath},
		},
		Classify: Classify{
			ClientTokens: append([]string(nil), classify.DefaultClientTokens...),
			ServerTokens: append([]string(nil), classify.DefaultServerTokens...),
		},
		Transfer: Transfer{Tool: transfer.DefaultTool},
	}
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	c := *m
	c.Locate.Paths = append([]string(nil), m.Locate.Paths...)
	c.Locate.Globs = append([]string(nil), m.Locate.Globs...)
	c.Classify.ClientTokens = append([]string(nil), m.Classify.ClientTokens...)
	c.Classify.ServerTokens = append([]string(nil), m.Classify.ServerTokens...)
	c.Transfer.Args = append([]string(nil), m.Transfer.Args...)
	if m.Notify != nil {
		n := *m.Notify
		c.Notify = &n
	}
	return &c
}

// Validate checks the model for values no pipeline run could use.
func (m *Model) Validate() error {
	var problems []string
	if strings.TrimSpace(m.Compiler) == "" {
		problems = append(problems, "compiler must not be empty")
	}
	if strings.TrimSpace(m.GeneratedDir) == "" {
		problems = append(problems, "generated_dir must not be empty")
	}
	if strings.TrimSpace(m.StagingDir) == "" {
		problems = append(problems, "staging_dir must not be empty")
	}
	if m.ToolTimeout < 0 {
		problems = append(problems, "tool_timeout must not be negative")
	}
	if m.Locate.Binary == "" && len(m.Locate.Paths) == 0 && len(m.Locate.Globs) == 0 {
		problems = append(problems, "locate needs a binary name, a path or a glob")
	}
	if strings.ContainsAny(m.Locate.Binary, `/\`) {
		problems = append(problems, "locate.binary must be a file name, not a path")
	}
	if len(m.Classify.ClientTokens) == 0 || len(m.Classify.ServerTokens) == 0 {
		problems = append(problems, "classify needs at least one client and one server token")
	}
	if strings.TrimSpace(m.Transfer.Tool) == "" {
		problems = append(problems, "transfer.tool must not be empty")
	}
	if m.Notify != nil && strings.TrimSpace(m.Notify.URL) == "" {
		problems = append(problems, "notify.url must not be empty")
	}
	if m.ArtifactName == nil {
		problems = append(problems, "artifact_name is not set")
	} else if _, err := m.ArtifactFileNames("program"); err != nil {
		problems = append(problems, strings.TrimPrefix(err.Error(), fault.ErrConfig.Error()+": "))
	}
	if len(problems) > 0 {
		return fault.New(fault.ErrConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// Probes builds the locate probes in evaluation order: fixed paths, globs,
// then the recursive name search.
func (m *Model) Probes() []locate.Probe {
	var probes []locate.Probe
	for _, p := range m.Locate.Paths {
		probes = append(probes, locate.FixedPath{Rel: p})
	}
	for _, g := range m.Locate.Globs {
		probes = append(probes, locate.Glob{Pattern: g})
	}
	if m.Locate.Binary != "" {
		probes = append(probes, locate.Search{File: m.Locate.Binary})
	}
	return probes
}

// ArtifactFileName derives and checks the staged file name for role.
func (m *Model) ArtifactFileName(program string, role model.Role) (string, error) {
	name, err := m.ArtifactName.ArtifactName(program, role)
	if err != nil {
		return "", fault.Wrap(fault.ErrConfig, err, "artifact_name for role %s", role)
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fault.New(fault.ErrConfig, "artifact_name for role %s must be a plain file name, got %q", role, name)
	}
	return name, nil
}

// ArtifactFileNames derives the staged file name of every role. Two roles
// sharing a name would overwrite each other in the staging directory, so that
// is a configuration error.
func (m *Model) ArtifactFileNames(program string) (map[model.Role]string, error) {
	names := make(map[model.Role]string, len(model.DefaultRoles))
	owner := make(map[string]model.Role, len(model.DefaultRoles))
	for _, role := range model.DefaultRoles {
		name, err := m.ArtifactFileName(program, role)
		if err != nil {
			return nil, err
		}
		if other, taken := owner[name]; taken {
			return nil, fault.New(fault.ErrConfig, "artifact_name gives %q for both %s and %s", name, other, role)
		}
		owner[name] = role
		names[role] = name
	}
	return names, nil
}

// GeneratedRoot is the generated-output directory of program.
func (m *Model) GeneratedRoot(root, program string) string {
	return filepath.Join(Abs(root, m.GeneratedDir), program)
}

// StagingPath is the staging directory.
func (m *Model) StagingPath(root string) string {
	return Abs(root, m.StagingDir)
}

// Abs resolves p against root unless it is already absolute.
func Abs(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// ExpandHome replaces a leading "~/" with home. Paths are returned unchanged
// when home is empty.
func ExpandHome(p, home string) string {
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(os.PathSeparator)) {
		return filepath.Join(home, p[2:])
	}
	return p
}
