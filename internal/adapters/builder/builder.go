package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"

	"github.com/yigitd/slipway/internal/core/dockerfile"
	"github.com/yigitd/slipway/internal/core/domain"
	"github.com/yigitd/slipway/internal/core/ports"
	"github.com/yigitd/slipway/internal/core/recipe"
)

// Adapter implements ports.BuilderService against the Docker Engine API.
type Adapter struct {
	cli *client.Client
	log *logrus.Logger
}

func NewAdapter(log *logrus.Logger) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, log: log}, nil
}

// BuildImage stages the source tree, renders the recipe into a Dockerfile
// and builds the image. Every step is all-or-nothing: the first failure
// aborts the build and no image is produced.
func (a *Adapter) BuildImage(ctx context.Context, req ports.BuildRequest) (string, error) {
	stage, err := a.stage(ctx, req)
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(stage)

	rcp, err := a.loadRecipe(stage, req)
	if err != nil {
		return "", err
	}
	if err := recipe.Validate(rcp); err != nil {
		return "", fmt.Errorf("invalid recipe: %w", err)
	}

	reqs, err := recipe.LoadManifest(filepath.Join(stage, rcp.Manifest))
	if err != nil {
		return "", err
	}

	// A Dockerfile checked into the tree wins over the rendered one.
	dfPath := filepath.Join(stage, "Dockerfile")
	if _, err := os.Stat(dfPath); errors.Is(err, fs.ErrNotExist) {
		df, err := dockerfile.Generate(rcp, recipe.SystemPackages(rcp, reqs))
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(dfPath, []byte(df), 0o644); err != nil {
			return "", fmt.Errorf("failed to write Dockerfile: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat Dockerfile: %w", err)
	}

	tag := req.Tag
	if tag == "" {
		if tag, err = imageTag(rcp, reqs); err != nil {
			return "", err
		}
	}

	buildCtx, err := archive.TarWithOptions(stage, &archive.TarOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create build context: %w", err)
	}

	a.log.WithFields(logrus.Fields{"image": tag, "app": rcp.App, "strategy": rcp.Strategy}).
		Info("building image")
	resp, err := a.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// Decoding the message stream is what surfaces daemon-side failures
	// (unresolvable dependency, missing toolchain) as build errors.
	out := a.log.WriterLevel(logrus.DebugLevel)
	defer out.Close()
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, out, 0, false, nil); err != nil {
		return "", fmt.Errorf("build failed: %w", err)
	}

	return tag, nil
}

// stage materializes the source tree in a temporary directory the build
// owns, either by shallow-cloning a repository or by copying a local tree.
func (a *Adapter) stage(ctx context.Context, req ports.BuildRequest) (string, error) {
	tmpDir, err := os.MkdirTemp("", "slipway-build-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	switch {
	case req.RepoURL != "":
		a.log.WithField("repo", req.RepoURL).Info("cloning repository")
		if _, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
			URL:   req.RepoURL,
			Depth: 1, // shallow clone for speed
		}); err != nil {
			os.RemoveAll(tmpDir)
			return "", fmt.Errorf("failed to clone repo: %w", err)
		}
	case req.ContextDir != "":
		if err := archive.NewDefaultArchiver().CopyWithTar(req.ContextDir, tmpDir); err != nil {
			os.RemoveAll(tmpDir)
			return "", fmt.Errorf("failed to copy context dir: %w", err)
		}
	default:
		os.RemoveAll(tmpDir)
		return "", errors.New("repo URL or context dir is required")
	}
	return tmpDir, nil
}

// loadRecipe resolves the effective recipe: an inline recipe from the
// request wins over the tree's recipe file; defaults fill the rest, and a
// nameless recipe is named after where the tree came from.
func (a *Adapter) loadRecipe(stage string, req ports.BuildRequest) (*domain.Recipe, error) {
	var rcp *domain.Recipe
	if req.Recipe != nil {
		cp := *req.Recipe
		recipe.ApplyDefaults(&cp)
		rcp = &cp
	} else {
		loaded, err := recipe.Load(stage)
		if err != nil {
			return nil, err
		}
		rcp = loaded
	}
	if rcp.Name == "" {
		rcp.Name = defaultName(req)
	}
	return rcp, nil
}

func defaultName(req ports.BuildRequest) string {
	var base string
	switch {
	case req.RepoURL != "":
		base = strings.TrimSuffix(filepath.Base(req.RepoURL), ".git")
	case req.ContextDir != "":
		base = filepath.Base(req.ContextDir)
	}
	base = strings.ToLower(base)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "app"
	}
	return base
}
