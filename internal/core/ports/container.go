package ports

import (
	"context"
	"io"

	"github.com/yigitd/slipway/internal/core/domain"
)

// ContainerService defines the core operations for managing containers.
// This interface allows us to switch between Docker, Podman, or Kubernetes
// without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	StartContainer(ctx context.Context, spec domain.RunSpec) (string, error)
	StopContainer(ctx context.Context, id string) error
	GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)
	// RuntimeUser reports the identity the container's process runs as.
	// Used to enforce that deployed processes never run privileged.
	RuntimeUser(ctx context.Context, id string) (string, error)
}
