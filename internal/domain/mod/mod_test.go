package mod

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleForest() []*Dependency {
	shared := NewDependency("c", "^1.0.0", "node_modules/c")
	sharedAgain := NewDependency("c", "~1.2.0", "node_modules/c")

	a := NewDependency("a", "1.0.0", "node_modules/a")
	a.Dependencies = []*Dependency{shared}

	b := NewDependency("b", "2.0.0", "node_modules/b")
	b.Dependencies = []*Dependency{sharedAgain}

	return []*Dependency{a, b}
}

// TestFlattenOrder verifies depth-first, parent-before-children traversal.
func TestFlattenOrder(t *testing.T) {
	t.Parallel()

	flat := Flatten(sampleForest())

	names := make([]string, 0, len(flat))
	for _, dep := range flat {
		names = append(names, dep.Name+"@"+dep.Version)
	}

	require.Equal(t, []string{"a@1.0.0", "c@^1.0.0", "b@2.0.0", "c@~1.2.0"}, names)
}

// TestWalkStops ensures returning false from the visitor ends the walk.
func TestWalkStops(t *testing.T) {
	t.Parallel()

	visited := 0
	completed := Walk(sampleForest(), func(*Dependency) bool {
		visited++
		return visited < 2
	})

	require.False(t, completed)
	require.Equal(t, 2, visited)
}

// TestDistinctPaths checks that shared paths collapse into one entry.
func TestDistinctPaths(t *testing.T) {
	t.Parallel()

	paths := DistinctPaths(sampleForest())
	require.Len(t, paths, 3)
	require.Contains(t, paths, "node_modules/c")
}

// TestMergeConfigPrecedence verifies user fields override defaults shallowly.
func TestMergeConfigPrecedence(t *testing.T) {
	t.Parallel()

	defaultDeps := NewDependencyMap()
	defaultDeps.Set("x", "1.0")

	defaults := &Config{Name: "a", Version: "1.0", Entry: DefaultEntry, Dependencies: defaultDeps}
	merged := MergeConfig(defaults, &Config{Version: "2.0"})

	require.Equal(t, "a", merged.Name)
	require.Equal(t, "2.0", merged.Version)
	require.Equal(t, DefaultEntry, merged.Entry)
	require.Same(t, defaultDeps, merged.Dependencies)

	userDeps := NewDependencyMap()
	userDeps.Set("y", "3.0")

	merged = MergeConfig(defaults, &Config{Dependencies: userDeps, Ignore: []string{"*.log"}})
	require.Same(t, userDeps, merged.Dependencies)
	require.Equal(t, []string{"*.log"}, merged.Ignore)

	// Defaults are not modified by merging.
	require.Equal(t, "1.0", defaults.Version)
}

// TestMergeConfigNil covers missing inputs on either side.
func TestMergeConfigNil(t *testing.T) {
	t.Parallel()

	require.Equal(t, &Config{Name: "a"}, MergeConfig(&Config{Name: "a"}, nil))
	require.Equal(t, &Config{Name: "b"}, MergeConfig(nil, &Config{Name: "b"}))
}

// TestDescriptorFieldOrder verifies the serialized key order the host expects.
func TestDescriptorFieldOrder(t *testing.T) {
	t.Parallel()

	deps := NewDependencyMap()
	deps.Set("z", "1")
	deps.Set("a", "2")

	data, err := json.Marshal(&Descriptor{
		Name:         "demo",
		Version:      "1.0.0",
		Entry:        DefaultEntry,
		SDKVersion:   "sdk",
		Integrity:    Digests{"lib.bin": "00"},
		Dependencies: deps,
	})
	require.NoError(t, err)
	require.JSONEq(t,
		`{"name":"demo","version":"1.0.0","description":"","entry":"./index.js","sdkVersion":"sdk","integrity":{"lib.bin":"00"},"dependencies":{"z":"1","a":"2"}}`,
		string(data))
	require.Regexp(t, `"z":"1","a":"2"`, string(data))
}

// TestProgressPercent covers the zero-total guard.
func TestProgressPercent(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 50.0, Progress{Processed: 1, Total: 2}.Percent(), 0.001)
	require.InDelta(t, 100.0, Progress{}.Percent(), 0.001)
}
