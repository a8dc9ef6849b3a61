package ports

import (
	"context"

	"github.com/yigitd/slipway/internal/core/domain"
)

// BuildRequest is the input contract of a build: a source tree (git URL or
// local path), an optional inline recipe overriding the one in the tree,
// and an optional explicit image tag.
type BuildRequest struct {
	RepoURL    string         `json:"repo_url,omitempty"`
	ContextDir string         `json:"context_dir,omitempty"`
	Recipe     *domain.Recipe `json:"recipe,omitempty"`
	Tag        string         `json:"tag,omitempty"`
}

// BuilderService defines operations for building container images from source code.
type BuilderService interface {
	// BuildImage stages the source, renders the build recipe into a
	// Dockerfile and builds the image. It returns the image reference.
	// Builds are all-or-nothing: any failing step aborts with no image.
	BuildImage(ctx context.Context, req BuildRequest) (string, error)
}
