package builder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitd/slipway/internal/core/domain"
	"github.com/yigitd/slipway/internal/core/ports"
)

func testAdapter() *Adapter {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Adapter{log: log}
}

func TestStageCopiesLocalTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "requirements.txt"), []byte("fastapi\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "src", "main.py"), []byte("app = object()\n"), 0o644))

	a := testAdapter()
	stage, err := a.stage(context.Background(), ports.BuildRequest{ContextDir: src})
	require.NoError(t, err)
	defer os.RemoveAll(stage)

	assert.FileExists(t, filepath.Join(stage, "requirements.txt"))
	assert.FileExists(t, filepath.Join(stage, "src", "main.py"))
}

func TestStageRequiresSource(t *testing.T) {
	_, err := testAdapter().stage(context.Background(), ports.BuildRequest{})
	assert.Error(t, err)
}

func TestLoadRecipeInlineWins(t *testing.T) {
	stage := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stage, "slipway.yaml"),
		[]byte("name: from-tree\nport: 9999\n"), 0o644))

	inline := &domain.Recipe{Name: "inline", Port: 9000}
	rcp, err := testAdapter().loadRecipe(stage, ports.BuildRequest{ContextDir: stage, Recipe: inline})
	require.NoError(t, err)

	assert.Equal(t, "inline", rcp.Name)
	assert.Equal(t, 9000, rcp.Port)
	assert.Equal(t, domain.StrategyPackage, rcp.Strategy, "defaults still applied")
	assert.Equal(t, 9000, inline.Port, "request recipe is not mutated")
}

func TestLoadRecipeFromTree(t *testing.T) {
	stage := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stage, "slipway.yaml"),
		[]byte("name: from-tree\nstrategy: flatten\napp: main:app\n"), 0o644))

	rcp, err := testAdapter().loadRecipe(stage, ports.BuildRequest{ContextDir: stage})
	require.NoError(t, err)

	assert.Equal(t, "from-tree", rcp.Name)
	assert.Equal(t, domain.StrategyFlatten, rcp.Strategy)
}

func TestLoadRecipeNameFallsBackToRequest(t *testing.T) {
	rcp, err := testAdapter().loadRecipe(t.TempDir(), ports.BuildRequest{
		RepoURL: "https://example.com/Doc-Analyzer.git",
	})
	require.NoError(t, err)

	assert.Equal(t, "doc-analyzer", rcp.Name)
}

func TestDefaultName(t *testing.T) {
	tests := []struct {
		req  ports.BuildRequest
		want string
	}{
		{ports.BuildRequest{RepoURL: "https://example.com/demo.git"}, "demo"},
		{ports.BuildRequest{RepoURL: "git@example.com:org/Svc"}, "svc"},
		{ports.BuildRequest{ContextDir: "/tmp/builds/analyzer"}, "analyzer"},
		{ports.BuildRequest{}, "app"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultName(tt.req))
	}
}
