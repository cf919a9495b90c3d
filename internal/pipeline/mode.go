package pipeline

import (
	"strings"

	"github.com/vk/lfdeploy/internal/fault"
)

// Mode selects which steps a run performs.
type Mode int

const (
	// ModeClean removes previous outputs only.
	ModeClean Mode = iota
	// ModeBuild compiles and stages without cleaning or transferring.
	ModeBuild
	// ModeAll cleans, builds, stages and transfers.
	ModeAll
	// ModeTransfer sends artifacts staged by an earlier run.
	ModeTransfer
)

var modeNames = map[string]Mode{
	"clean":    ModeClean,
	"build":    ModeBuild,
	"all":      ModeAll,
	"deploy":   ModeAll,
	"transfer": ModeTransfer,
	"ssh":      ModeTransfer,
}

// ParseMode accepts the mode names and their aliases.
func ParseMode(s string) (Mode, error) {
	m, ok := modeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fault.New(fault.ErrUsage, "unknown mode %q", s)
	}
	return m, nil
}

func (m Mode) String() string {
	switch m {
	case ModeClean:
		return "clean"
	case ModeBuild:
		return "build"
	case ModeAll:
		return "all"
	case ModeTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Plan returns the states a successful run of m passes through.
func (m Mode) Plan(noTransfer bool) []State {
	switch m {
	case ModeClean:
		return []State{Pending, Cleaned}
	case ModeBuild:
		return []State{Pending, Compiled, Discovered, Classified, Resolved, Staged}
	case ModeTransfer:
		return []State{Pending, Staged, Transferred}
	default:
		plan := []State{Pending, Cleaned, Compiled, Discovered, Classified, Resolved, Staged, Transferred}
		if noTransfer {
			plan = plan[:len(plan)-1]
		}
		return plan
	}
}
