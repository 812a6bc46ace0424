package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
)

func writeManifest(t *testing.T, dir, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(contents), 0o600))
}

func describe(deps []*mod.Dependency) []string {
	var out []string
	for _, dep := range deps {
		out = append(out, dep.Name+"@"+dep.Version+"="+filepath.ToSlash(dep.Path))
	}

	return out
}

// TestResolve_NestedAndHoisted verifies nested-first lookup with hoisted fallback.
func TestResolve_NestedAndHoisted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"a": "^1.0.0", "b": "2.0.0"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "a"), `{"dependencies": {"c": "1.x", "d": "3"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "a", "node_modules", "c"), `{}`)
	writeManifest(t, filepath.Join(root, "node_modules", "b"), `{"dependencies": {"d": "4"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "d"), `{"name": "d"}`)

	result, err := Resolve(context.Background(), root)
	require.NoError(t, err)
	require.Empty(t, result.Cycles)

	require.Equal(t, []string{
		"a@^1.0.0=node_modules/a",
		"c@1.x=node_modules/a/node_modules/c",
		"d@3=node_modules/d",
		"b@2.0.0=node_modules/b",
		"d@4=node_modules/d",
	}, describe(result.Flat()))

	require.Len(t, result.Dependencies, 2)
	require.Len(t, result.Dependencies[0].Dependencies, 2)
}

// TestResolve_SkipsMissing ensures undeclared-on-disk dependencies are dropped without error.
func TestResolve_SkipsMissing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"ghost": "1.0", "real": "1.0"}}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "real"), 0o755))

	result, err := Resolve(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, []string{"real@1.0=node_modules/real"}, describe(result.Flat()))
}

// TestResolve_NoManifest returns an empty forest when the root has no package.json.
func TestResolve_NoManifest(t *testing.T) {
	t.Parallel()

	result, err := Resolve(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Empty(t, result.Dependencies)
}

// TestResolve_MalformedManifest ensures a broken dependency manifest aborts resolution.
func TestResolve_MalformedManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"bad": "1.0"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "bad"), `{"dependencies": [`)

	result, err := Resolve(context.Background(), root)
	require.Error(t, err)
	require.Nil(t, result)
	require.Contains(t, err.Error(), "bad")
}

// TestResolve_CycleIsCut verifies a dependency cycle terminates and is reported.
func TestResolve_CycleIsCut(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"a": "1"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "a"), `{"dependencies": {"b": "1"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "b"), `{"dependencies": {"a": "1"}}`)

	result, err := Resolve(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, []string{
		"a@1=node_modules/a",
		"b@1=node_modules/b",
		"a@1=node_modules/a",
	}, describe(result.Flat()))

	require.Len(t, result.Cycles, 1)
	require.Len(t, result.Cycles[0].Chain, 3)
	require.Equal(t, filepath.Join("node_modules", "a"), result.Cycles[0].Chain[2])
}

// TestResolve_SharedNotACycle ensures a diamond (two parents, one child) is not flagged.
func TestResolve_SharedNotACycle(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"a": "1", "b": "1"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "a"), `{"dependencies": {"shared": "1"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "b"), `{"dependencies": {"shared": "2"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "shared"), `{}`)

	result, err := Resolve(context.Background(), root)
	require.NoError(t, err)
	require.Empty(t, result.Cycles)
	require.Len(t, result.Flat(), 4)
}

// TestResolve_Canceled ensures a canceled context stops the walk.
func TestResolve_Canceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}
