package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
	"github.com/oshokin/lmod-packager/internal/logger"
	"github.com/oshokin/lmod-packager/internal/repository/project"
)

// DependencyDir is the directory dependencies are installed into.
const DependencyDir = "node_modules"

// Cycle records a dependency that was not expanded because its directory is
// already being resolved further up the same branch.
type Cycle struct {
	// Chain lists the paths from the top-level dependency down to the revisit.
	Chain []string
}

// String renders the chain as "a -> b -> a".
func (c Cycle) String() string {
	return strings.Join(c.Chain, " -> ")
}

// Result is the outcome of a resolution.
type Result struct {
	// Dependencies are the project's direct dependencies with their subtrees.
	Dependencies []*mod.Dependency
	// Cycles lists branches cut by the cycle guard.
	Cycles []Cycle
}

// Flat returns every resolved occurrence, depth-first, parents first.
func (r *Result) Flat() []*mod.Dependency {
	return mod.Flatten(r.Dependencies)
}

// Resolver walks manifests starting at a project root.
type Resolver struct {
	manifests project.ManifestReader
	root      string
}

// New creates a resolver for the project rooted at root.
func New(root string, manifests project.ManifestReader) *Resolver {
	if manifests == nil {
		manifests = project.NewFileRepository()
	}

	return &Resolver{
		manifests: manifests,
		root:      filepath.Clean(root),
	}
}

// Resolve builds the dependency forest of the project root.
func Resolve(ctx context.Context, root string) (*Result, error) {
	return New(root, nil).Resolve(ctx)
}

// Resolve builds the dependency forest of the resolver's root.
func (r *Resolver) Resolve(ctx context.Context) (*Result, error) {
	ctx = logger.WithName(ctx, "resolver")

	var (
		result     = new(Result)
		inProgress = map[string]bool{".": true}
		chain      []string
	)

	var walk func(dir string, parent *mod.Dependency) error
	walk = func(dir string, parent *mod.Dependency) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		manifest, err := r.manifests.ReadManifest(filepath.Join(r.root, dir))
		if err != nil {
			if errors.Is(err, project.ErrNotFound) {
				logger.DebugKV(ctx, "No manifest, branch ends here", "path", dir)
				return nil
			}

			return err
		}

		if manifest.DependencyCount() == 0 {
			return nil
		}

		for pair := manifest.Dependencies.Oldest(); pair != nil; pair = pair.Next() {
			name, constraint := pair.Key, pair.Value

			depPath, found := r.locate(name, dir)
			if !found {
				logger.DebugKV(ctx, "Dependency not installed, skipping", "name", name, "parent", dir)
				continue
			}

			dep := mod.NewDependency(name, constraint, depPath)
			if parent != nil {
				parent.Dependencies = append(parent.Dependencies, dep)
			} else {
				result.Dependencies = append(result.Dependencies, dep)
			}

			if inProgress[depPath] {
				cycle := Cycle{Chain: append(append([]string(nil), chain...), depPath)}
				result.Cycles = append(result.Cycles, cycle)
				logger.WarnKV(ctx, "Cycle detected, dependency not expanded further", "cycle", cycle.String())

				continue
			}

			inProgress[depPath] = true
			chain = append(chain, depPath)

			err = walk(depPath, dep)

			chain = chain[:len(chain)-1]
			delete(inProgress, depPath)

			if err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(".", nil); err != nil {
		return nil, fmt.Errorf("resolve dependencies: %w", err)
	}

	logger.DebugKV(ctx, "Resolved dependency tree",
		"direct", len(result.Dependencies),
		"occurrences", len(result.Flat()),
		"cycles", len(result.Cycles))

	return result, nil
}

// locate returns the first existing candidate among <parent>/node_modules/<name>
// and <root>/node_modules/<name>, relative to the root.
func (r *Resolver) locate(name, parent string) (string, bool) {
	candidates := []string{
		filepath.Join(parent, DependencyDir, name),
		filepath.Join(DependencyDir, name),
	}

	for _, candidate := range candidates {
		info, err := os.Stat(filepath.Join(r.root, candidate))
		if err == nil && info.IsDir() {
			return candidate, true
		}
	}

	return "", false
}
