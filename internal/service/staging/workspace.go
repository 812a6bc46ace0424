package staging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
	"github.com/oshokin/lmod-packager/internal/logger"
)

// TempPrefix names scratch directories created by Acquire.
const TempPrefix = "lmod-packager-"

// dependencyDir is left out of every copied dependency; nested packages are
// staged through their own nodes.
const dependencyDir = "node_modules"

var errReleased = errors.New("workspace already released")

// Workspace is a scratch directory holding the package tree being assembled.
type Workspace struct {
	// projectRoot is the directory dependency paths are relative to.
	projectRoot string
	// root is the scratch directory.
	root string
	// visited holds dependency paths already copied into root.
	visited map[string]struct{}
	// released is set once the scratch directory is gone.
	released bool
}

// Acquire creates a fresh scratch directory for the project at projectRoot.
// Callers must defer Release.
func Acquire(ctx context.Context, projectRoot string) (*Workspace, error) {
	root, err := os.MkdirTemp("", TempPrefix)
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	logger.DebugKV(ctx, "Staging directory created", "path", root)

	return &Workspace{
		projectRoot: filepath.Clean(projectRoot),
		root:        root,
		visited:     make(map[string]struct{}),
	}, nil
}

// Root returns the staging root.
func (w *Workspace) Root() string {
	return w.root
}

// Visited reports whether path has been copied already.
func (w *Workspace) Visited(path string) bool {
	_, ok := w.visited[filepath.Clean(path)]
	return ok
}

// CopiedCount returns the number of distinct dependency paths copied.
func (w *Workspace) CopiedCount() int {
	return len(w.visited)
}

// StageDependencies copies every distinct dependency path of the forest into
// the staging root at the same relative location.
func (w *Workspace) StageDependencies(ctx context.Context, forest []*mod.Dependency) error {
	if w.released {
		return errReleased
	}

	for _, dep := range forest {
		if err := w.stageDependency(ctx, dep); err != nil {
			return err
		}
	}

	return nil
}

func (w *Workspace) stageDependency(ctx context.Context, dep *mod.Dependency) error {
	path := filepath.Clean(dep.Path)

	if _, seen := w.visited[path]; !seen {
		w.visited[path] = struct{}{}

		logger.DebugKV(ctx, "Copying dependency", "name", dep.Name, "path", path)

		src := filepath.Join(w.projectRoot, path)
		dst := filepath.Join(w.root, path)

		err := copyTree(ctx, src, dst, func(name string) bool {
			return name == dependencyDir
		})
		if err != nil {
			return fmt.Errorf("stage dependency %s: %w", dep.Name, err)
		}
	}

	// Children may still hold paths no other branch has reached.
	for _, child := range dep.Dependencies {
		if err := w.stageDependency(ctx, child); err != nil {
			return err
		}
	}

	return nil
}

// StageProject copies the top-level project entries not matched by ignore.
func (w *Workspace) StageProject(ctx context.Context, ignore *IgnoreSet) error {
	if w.released {
		return errReleased
	}

	if ignore == nil {
		ignore = NewIgnoreSet()
	}

	err := copyTree(ctx, w.projectRoot, w.root, func(name string) bool {
		if ignore.Match(name) {
			logger.DebugKV(ctx, "Ignoring project entry", "name", name)
			return true
		}

		return false
	})
	if err != nil {
		return fmt.Errorf("stage project files: %w", err)
	}

	return nil
}

// Release removes the scratch directory. It is safe to call more than once.
func (w *Workspace) Release(ctx context.Context) error {
	if w == nil || w.released {
		return nil
	}

	w.released = true

	if err := os.RemoveAll(w.root); err != nil {
		logger.WarnKV(ctx, "Failed to remove staging directory", "path", w.root, "error", err)
		return fmt.Errorf("remove staging directory: %w", err)
	}

	logger.DebugKV(ctx, "Staging directory removed", "path", w.root)

	return nil
}
