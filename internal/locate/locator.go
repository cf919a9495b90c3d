package locate

import (
	"context"
	"strings"

	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/model"
	"go.uber.org/zap"
)

const (
	// DefaultBinaryName is the file a Zephyr build leaves behind.
	DefaultBinaryName = "zephyr.elf"
	// DefaultBinaryPath is where the Zephyr backend usually puts it.
	DefaultBinaryPath = "build/zephyr/zephyr.elf"
)

// Locator resolves the binary for a federate directory.
type Locator struct {
	probes []Probe
}

// New creates a Locator trying probes in the given order.
func New(probes ...Probe) *Locator {
	return &Locator{probes: probes}
}

// Default creates the Locator for the Zephyr layout: the fixed path first,
// then a recursive search for the binary name.
func Default() *Locator {
	return New(FixedPath{Rel: DefaultBinaryPath}, Search{File: DefaultBinaryName})
}

// Probes returns the configured probes in order.
func (l *Locator) Probes() []Probe {
	return append([]Probe(nil), l.probes...)
}

// Resolve returns the first binary any probe finds under the candidate's
// directory. It fails with fault.ErrArtifactNotFound when none does.
func (l *Locator) Resolve(ctx context.Context, role model.Role, c model.FederateCandidate) (model.ResolvedBinary, error) {
	logger := ctxlog.FromContext(ctx).With(zap.String("federate", c.Name), zap.String("role", role.String()))

	names := make([]string, 0, len(l.probes))
	for _, p := range l.probes {
		if err := ctx.Err(); err != nil {
			return model.ResolvedBinary{}, err
		}
		names = append(names, p.Name())

		path, ok, err := p.Probe(ctx, c.Dir)
		if err != nil {
			return model.ResolvedBinary{}, fault.Wrap(fault.ErrArtifactNotFound, err, "probe %s failed under %s", p.Name(), c.Dir)
		}
		if !ok {
			logger.Debug("Probe missed.", zap.String("probe", p.Name()), zap.String("dir", c.Dir))
			continue
		}

		logger.Debug("Probe hit.", zap.String("probe", p.Name()), zap.String("path", path))
		return model.ResolvedBinary{
			Role:      role,
			Candidate: c,
			Path:      path,
			Probe:     p.Name(),
		}, nil
	}

	return model.ResolvedBinary{}, fault.New(fault.ErrArtifactNotFound,
		"no binary found under %s (tried %s)", c.Dir, strings.Join(names, ", "))
}
