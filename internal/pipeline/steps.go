package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/fsutil"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/vk/lfdeploy/internal/process"
	"go.uber.org/zap"
)

// clean removes the unit's generated tree and its staged artifacts. The
// staging directory goes too when nothing else is left in it.
func (p *Pipeline) clean(ctx context.Context, r *Report) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)
	var removed []string

	genRoot := p.cfg.GeneratedRoot(p.root, r.Unit.Name)
	if fsutil.Exists(genRoot) {
		if err := os.RemoveAll(genRoot); err != nil {
			return nil, fmt.Errorf("removing %s: %w", genRoot, err)
		}
		removed = append(removed, genRoot)
	}

	stagingDir := p.cfg.StagingPath(p.root)
	names, err := p.cfg.ArtifactFileNames(r.Unit.Name)
	if err != nil {
		return nil, err
	}
	for _, role := range model.DefaultRoles {
		path := filepath.Join(stagingDir, names[role])
		if err := os.Remove(path); err == nil {
			removed = append(removed, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("removing %s: %w", path, err)
		}
	}

	if entries, err := os.ReadDir(stagingDir); err == nil && len(entries) == 0 {
		if err := os.Remove(stagingDir); err != nil {
			return nil, fmt.Errorf("removing %s: %w", stagingDir, err)
		}
		removed = append(removed, stagingDir)
	}

	if len(removed) == 0 {
		logger.Debug("Nothing to clean.")
	}
	return map[string]any{"removed": removed}, nil
}

// compile runs the compiler on the source with the project root as its
// working directory.
func (p *Pipeline) compile(ctx context.Context, r *Report) (map[string]any, error) {
	cmd := process.Command{
		Name: p.cfg.Compiler,
		Args: []string{r.Unit.Path},
		Dir:  p.root,
	}
	res, err := p.runner.Run(ctx, cmd)
	switch {
	case errors.Is(err, fault.ErrToolNotFound), errors.Is(err, fault.ErrInterrupted):
		return nil, err
	case err != nil:
		return nil, fault.Wrap(fault.ErrCompileFailed, err, "%s", cmd).WithOutput(res.Combined())
	case res.ExitCode != 0:
		return nil, fault.New(fault.ErrCompileFailed, "%s exited with code %d", cmd, res.ExitCode).WithOutput(res.Combined())
	}

	ctxlog.FromContext(ctx).Debug("Compiler output.", zap.ByteString("stdout", res.Stdout))
	return map[string]any{"compiler": p.cfg.Compiler, "duration": res.Duration.String()}, nil
}

// discover lists the per-federate directories of the generated tree.
func (p *Pipeline) discover(ctx context.Context, r *Report) (map[string]any, error) {
	genRoot := p.cfg.GeneratedRoot(p.root, r.Unit.Name)
	if !fsutil.IsDir(genRoot) {
		return nil, fault.New(fault.ErrNoGeneratedOutput, "generated directory %s does not exist", genRoot)
	}
	names, err := fsutil.ListSubdirs(genRoot)
	if err != nil {
		return nil, fault.Wrap(fault.ErrNoGeneratedOutput, err, "listing %s", genRoot)
	}

	tree := model.GeneratedTree{Root: genRoot}
	for _, name := range names {
		tree.Candidates = append(tree.Candidates, model.FederateCandidate{Name: name, Dir: filepath.Join(genRoot, name)})
	}
	r.Tree = tree
	return map[string]any{"generated_root": genRoot, "count": len(names), "federates": tree.Names()}, nil
}

func (p *Pipeline) classify(ctx context.Context, r *Report) (map[string]any, error) {
	a, err := p.classifier.Classify(ctx, r.Tree.Candidates, r.Tree.Root)
	if err != nil {
		return nil, err
	}
	r.Assignment = a
	return map[string]any{"assignment": a.String()}, nil
}

func (p *Pipeline) resolve(ctx context.Context, r *Report) (map[string]any, error) {
	paths := make(map[string]string)
	for _, role := range r.Assignment.Roles() {
		c, _ := r.Assignment.Get(role)
		bin, err := p.locator.Resolve(ctx, role, c)
		if err != nil {
			return nil, err
		}
		r.Binaries = append(r.Binaries, bin)
		paths[role.String()] = bin.Path
	}
	return map[string]any{"binaries": paths}, nil
}

// stage copies every resolved binary into the staging directory under its
// canonical name.
func (p *Pipeline) stage(ctx context.Context, r *Report) (map[string]any, error) {
	names, err := p.cfg.ArtifactFileNames(r.Unit.Name)
	if err != nil {
		return nil, err
	}
	dir := p.cfg.StagingPath(p.root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	for _, bin := range r.Binaries {
		dst := filepath.Join(dir, names[bin.Role])
		if err := copyFileAtomic(bin.Path, dst); err != nil {
			return nil, fmt.Errorf("staging %s: %w", bin.Role, err)
		}
		ctxlog.FromContext(ctx).Debug("Artifact staged.", zap.Stringer("role", bin.Role), zap.String("from", bin.Path), zap.String("to", dst))
		r.Staged = append(r.Staged, model.StagedArtifact{Role: bin.Role, Source: bin.Path, Path: dst})
	}
	return map[string]any{"staging_dir": dir, "artifacts": model.StagedPaths(r.Staged)}, nil
}

// collectStaged picks up the artifacts an earlier build left in the staging
// directory.
func (p *Pipeline) collectStaged(ctx context.Context, r *Report) (map[string]any, error) {
	dir := p.cfg.StagingPath(p.root)
	names, err := p.cfg.ArtifactFileNames(r.Unit.Name)
	if err != nil {
		return nil, err
	}
	for _, role := range model.DefaultRoles {
		path := filepath.Join(dir, names[role])
		if !fsutil.IsRegularFile(path) {
			return nil, fault.New(fault.ErrArtifactNotFound, "staged artifact %s is missing; build first", path)
		}
		r.Staged = append(r.Staged, model.StagedArtifact{Role: role, Path: path})
	}
	return map[string]any{"staging_dir": dir, "artifacts": model.StagedPaths(r.Staged)}, nil
}

func (p *Pipeline) send(ctx context.Context, r *Report) (map[string]any, error) {
	r.Remote = p.cfg.Remote
	if err := p.transfer.Transfer(ctx, r.Staged, p.cfg.Remote); err != nil {
		return nil, err
	}
	return map[string]any{"remote": p.cfg.Remote, "count": len(r.Staged)}, nil
}
