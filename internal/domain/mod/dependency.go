package mod

// Dependency is one resolved occurrence of a declared dependency.
// The same Path may appear under several parents, each with its own Version.
type Dependency struct {
	// Name is the key the parent manifest declared.
	Name string
	// Version is the constraint string as declared, never interpreted.
	Version string
	// Path is the package directory relative to the project root.
	Path string
	// Dependencies are the resolved children in declared order.
	Dependencies []*Dependency
}

// NewDependency returns a node with no children.
func NewDependency(name, version, path string) *Dependency {
	return &Dependency{
		Name:    name,
		Version: version,
		Path:    path,
	}
}

// Walk visits every node of the forest depth-first, parents before children.
// Returning false from fn stops the walk.
func Walk(forest []*Dependency, fn func(dep *Dependency) bool) bool {
	for _, dep := range forest {
		if !fn(dep) {
			return false
		}

		if !Walk(dep.Dependencies, fn) {
			return false
		}
	}

	return true
}

// Flatten returns every occurrence of the forest in Walk order.
func Flatten(forest []*Dependency) []*Dependency {
	var result []*Dependency

	Walk(forest, func(dep *Dependency) bool {
		result = append(result, dep)
		return true
	})

	return result
}

// DistinctPaths returns the set of paths the forest references.
func DistinctPaths(forest []*Dependency) map[string]struct{} {
	paths := make(map[string]struct{})

	Walk(forest, func(dep *Dependency) bool {
		paths[dep.Path] = struct{}{}
		return true
	})

	return paths
}
