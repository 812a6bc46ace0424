package descriptor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
	"github.com/oshokin/lmod-packager/internal/repository/project"
	"github.com/oshokin/lmod-packager/internal/version"
)

// TestBuild_Precedence verifies merged fields, the SDK tag and verbatim digests.
func TestBuild_Precedence(t *testing.T) {
	t.Parallel()

	cfg := mod.MergeConfig(&mod.Config{Name: "a", Version: "1.0"}, &mod.Config{Version: "2.0"})
	digests := mod.Digests{"lib.bin": "abc"}

	desc := Build(cfg, digests)
	require.Equal(t, "a", desc.Name)
	require.Equal(t, "2.0", desc.Version)
	require.Equal(t, version.SDKVersion, desc.SDKVersion)
	require.Equal(t, digests, desc.Integrity)
	require.NotNil(t, desc.Dependencies)
	require.Zero(t, desc.Dependencies.Len())
}

// TestWrite checks the written file parses back and serializes empty maps as objects.
func TestWrite(t *testing.T) {
	t.Parallel()

	deps := mod.NewDependencyMap()
	deps.Set("x", "1.0")

	root := t.TempDir()

	path, err := Write(root, Build(&mod.Config{Name: "demo", Dependencies: deps}, nil))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, mod.DescriptorFilename), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "demo", decoded["name"])
	require.Equal(t, map[string]any{}, decoded["integrity"])
	require.Equal(t, map[string]any{"x": "1.0"}, decoded["dependencies"])
	require.Equal(t, version.SDKVersion, decoded["sdkVersion"])
	require.Contains(t, string(data), "\n    \"name\": \"demo\"")
}

// TestWrite_BadRoot reports an unwritable destination.
func TestWrite_BadRoot(t *testing.T) {
	t.Parallel()

	_, err := Write(filepath.Join(t.TempDir(), "missing"), Build(nil, nil))
	require.Error(t, err)
}

// TestBuild_ConfigWithoutDependencies lists no dependencies when the project config declares none.
func TestBuild_ConfigWithoutDependencies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"dependencies": {"x": "1.0"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, mod.DescriptorFilename), []byte(`{"name": "a", "version": "2.0"}`), 0o600))

	cfg, _, err := project.NewFileRepository().LoadConfig(dir)
	require.NoError(t, err)

	desc := Build(cfg, nil)
	require.Zero(t, desc.Dependencies.Len())

	data, err := project.MarshalIndent(desc)
	require.NoError(t, err)
	require.Contains(t, string(data), `"dependencies": {}`)
}
