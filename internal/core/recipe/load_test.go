package recipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitd/slipway/internal/core/domain"
)

func TestLoadWithoutRecipeFile(t *testing.T) {
	dir := t.TempDir()

	r, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "3.11", r.PythonVersion)
	assert.Equal(t, "requirements.txt", r.Manifest)
	assert.Equal(t, "src", r.SourceDir)
	assert.Equal(t, domain.StrategyPackage, r.Strategy)
	assert.Equal(t, "pyproject.toml", r.Packaging)
	assert.Equal(t, "src.main:app", r.App)
	assert.Equal(t, 8080, r.Port)
	assert.Equal(t, "app", r.User)
	assert.Equal(t, 1000, r.UID)
	assert.Empty(t, r.Name, "naming a tree is the caller's call")
}

func TestLoadRecipeFile(t *testing.T) {
	dir := t.TempDir()
	data := `
name: doc-analyzer
python: "3.12"
source_dir: src
app: src.main:app
strategy: pythonpath
port: 9000
assets:
  - fonts
system_packages:
  - poppler-utils
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(data), 0o644))

	r, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "doc-analyzer", r.Name)
	assert.Equal(t, "3.12", r.PythonVersion)
	assert.Equal(t, domain.StrategyPythonPath, r.Strategy)
	assert.Equal(t, 9000, r.Port)
	assert.Equal(t, []string{"fonts"}, r.Assets)
	assert.Equal(t, []string{"poppler-utils"}, r.SystemPackages)
	// defaults still fill the rest
	assert.Equal(t, "requirements.txt", r.Manifest)
	assert.Equal(t, "app", r.User)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("{not yaml"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestApplyDefaultsFlattenApp(t *testing.T) {
	r := &domain.Recipe{Name: "demo", Strategy: domain.StrategyFlatten}
	ApplyDefaults(r)

	assert.Equal(t, "main:app", r.App)
	assert.Empty(t, r.Packaging, "packaging descriptor is a package-strategy concern")
}

func TestApplyDefaultsRootSourceDir(t *testing.T) {
	r := &domain.Recipe{Name: "demo", SourceDir: ".", Strategy: domain.StrategyPythonPath}
	ApplyDefaults(r)

	assert.Equal(t, "main:app", r.App)
}
