package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vk/lfdeploy/internal/classify"
	"github.com/vk/lfdeploy/internal/config"
	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/locate"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/vk/lfdeploy/internal/process"
	"github.com/vk/lfdeploy/internal/transfer"
	"go.uber.org/zap"
)

// Options configures a Pipeline.
type Options struct {
	// Root is the project root; the compiler runs there and relative
	// directories are resolved against it.
	Root   string
	Config *config.Model
	Runner process.Runner
	// Observer receives every transition. Nil means none.
	Observer Observer
	// NoTransfer stops ModeAll after staging.
	NoTransfer bool
	// NewRunID overrides the run id generator.
	NewRunID func() string
}

// Pipeline runs source units through the build plan.
type Pipeline struct {
	root       string
	cfg        *config.Model
	runner     process.Runner
	locator    *locate.Locator
	classifier *classify.Classifier
	transfer   *transfer.Adapter
	observer   Observer
	noTransfer bool
	newRunID   func() string
}

// New validates opts and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Root == "" {
		return nil, fault.New(fault.ErrConfig, "project root is not set")
	}
	if opts.Config == nil {
		return nil, fault.New(fault.ErrConfig, "configuration is not set")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Runner == nil {
		opts.Runner = process.NewExec(opts.Config.ToolTimeout)
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}

	cfg := opts.Config
	return &Pipeline{
		root:       opts.Root,
		cfg:        cfg,
		runner:     opts.Runner,
		locator:    locate.New(cfg.Probes()...),
		classifier: classify.WithTokens(cfg.Classify.ClientTokens, cfg.Classify.ServerTokens),
		transfer: transfer.New(opts.Runner, transfer.Options{
			Tool:  cfg.Transfer.Tool,
			Args:  cfg.Transfer.Args,
			Batch: cfg.Transfer.Batch,
		}),
		observer:   opts.Observer,
		noTransfer: opts.NoTransfer,
		newRunID:   opts.NewRunID,
	}, nil
}

// Report is the outcome of one run. Fields are filled as far as the run got.
type Report struct {
	RunID      string
	Unit       model.SourceUnit
	Mode       Mode
	State      State
	Tree       model.GeneratedTree
	Assignment model.RoleAssignment
	Binaries   []model.ResolvedBinary
	Staged     []model.StagedArtifact
	Remote     string
	Duration   time.Duration
	Err        error
}

// step performs the work that leads into its target state and returns the
// fields reported with the transition.
type step func(ctx context.Context, r *Report) (map[string]any, error)

// Run executes mode's plan for unit. The returned error is also stored in the
// report; the report is never nil.
func (p *Pipeline) Run(ctx context.Context, unit model.SourceUnit, mode Mode) (*Report, error) {
	start := time.Now()
	r := &Report{
		RunID: p.newRunID(),
		Unit:  unit,
		Mode:  mode,
		State: Pending,
	}
	ctx = ctxlog.With(ctx, zap.String("run_id", r.RunID), zap.String("program", unit.Name))
	logger := ctxlog.FromContext(ctx)
	logger.Info("Pipeline started.", zap.Stringer("mode", mode), zap.String("source", unit.Path), zap.String("root", p.root))

	plan := mode.Plan(p.noTransfer)
	m := newMachine(plan)
	steps := p.steps(mode)

	// A bad destination must not cost a compile.
	if slices.Contains(plan, Transferred) {
		if _, err := transfer.ParseAddress(p.cfg.Remote); err != nil {
			return p.finish(ctx, m, r, start, err)
		}
	}

	for {
		next, ok := m.Next()
		if !ok {
			break
		}

		if err := ctx.Err(); err != nil {
			return p.finish(ctx, m, r, start, fault.Wrap(fault.ErrInterrupted, err, "interrupted before %s", next))
		}

		fields, err := steps[next](ctx, r)
		if err != nil {
			return p.finish(ctx, m, r, start, err)
		}
		if err := p.transition(ctx, m, r, next, fields, nil); err != nil {
			return p.finish(ctx, m, r, start, err)
		}
	}

	r.Duration = time.Since(start)
	logger.Info("Pipeline finished.", zap.Stringer("state", r.State), zap.Duration("duration", r.Duration))
	return r, nil
}

func (p *Pipeline) steps(mode Mode) map[State]step {
	s := map[State]step{
		Cleaned:     p.clean,
		Compiled:    p.compile,
		Discovered:  p.discover,
		Classified:  p.classify,
		Resolved:    p.resolve,
		Staged:      p.stage,
		Transferred: p.send,
	}
	if mode == ModeTransfer {
		s[Staged] = p.collectStaged
	}
	return s
}

func (p *Pipeline) transition(ctx context.Context, m *machine, r *Report, to State, fields map[string]any, cause error) error {
	from := m.State()
	if err := m.Transition(from, to); err != nil {
		return err
	}
	r.State = to

	logFields := []zap.Field{zap.Stringer("from", from), zap.Stringer("to", to)}
	for k, v := range fields {
		logFields = append(logFields, zap.Any(k, v))
	}
	logger := ctxlog.FromContext(ctx)
	if cause != nil {
		logger.Error("Pipeline state changed.", append(logFields, zap.Error(cause))...)
	} else {
		logger.Info("Pipeline state changed.", logFields...)
	}

	p.observer.OnTransition(ctx, Event{
		RunID:   r.RunID,
		Program: r.Unit.Name,
		Mode:    r.Mode,
		From:    from,
		To:      to,
		At:      time.Now(),
		Err:     cause,
		Fields:  fields,
	})
	return nil
}

// finish moves the run to Failed or Interrupted depending on err.
func (p *Pipeline) finish(ctx context.Context, m *machine, r *Report, start time.Time, err error) (*Report, error) {
	to := Failed
	if errors.Is(err, fault.ErrInterrupted) || errors.Is(err, context.Canceled) {
		to = Interrupted
		if !errors.Is(err, fault.ErrInterrupted) {
			err = fault.Wrap(fault.ErrInterrupted, err, "run interrupted")
		}
	}
	if terr := p.transition(ctx, m, r, to, nil, err); terr != nil {
		err = fmt.Errorf("%w (and %v)", err, terr)
	}
	r.Err = err
	r.Duration = time.Since(start)
	return r, err
}
