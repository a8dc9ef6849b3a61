package docker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/sirupsen/logrus"

	"github.com/yigitd/slipway/internal/core/domain"
)

// Adapter implements ports.ContainerService using the Docker SDK.
type Adapter struct {
	cli *client.Client
	log *logrus.Logger
}

// NewAdapter creates a new Docker adapter instance.
func NewAdapter(log *logrus.Logger) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, log: log}, nil
}

// ListContainers returns the known containers with their network details.
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []domain.Container
	for _, c := range containers {
		// Use the first name if available, remove slash
		name := ""
		if len(c.Names) > 0 {
			name = c.Names[0][1:]
		}

		ip := ""
		if c.NetworkSettings != nil {
			for _, n := range c.NetworkSettings.Networks {
				if n.IPAddress != "" {
					ip = n.IPAddress
					break
				}
			}
		}

		var port, hostPort int
		for _, p := range c.Ports {
			if p.PrivatePort != 0 {
				port = int(p.PrivatePort)
			}
			if p.PublicPort != 0 {
				hostPort = int(p.PublicPort)
				break
			}
		}

		result = append(result, domain.Container{
			ID:        c.ID[:12], // Short ID
			Name:      name,
			Image:     c.Image,
			Status:    c.Status,
			State:     c.State,
			IPAddress: ip,
			Port:      port,
			HostPort:  hostPort,
		})
	}
	return result, nil
}

// StartContainer creates and starts a container per the run spec, with the
// container port published and PORT injected for entry points that honor a
// platform override.
func (a *Adapter) StartContainer(ctx context.Context, spec domain.RunSpec) (string, error) {
	if err := a.ensureImage(ctx, spec.Image); err != nil {
		return "", err
	}

	exposed, bindings, err := portBindings(spec.Port, spec.HostPort)
	if err != nil {
		return "", err
	}

	env := append([]string{fmt.Sprintf("PORT=%d", spec.Port)}, spec.Env...)

	resp, err := a.cli.ContainerCreate(ctx, &container.Config{
		Image:        spec.Image,
		Env:          env,
		ExposedPorts: exposed,
	}, &container.HostConfig{
		PortBindings: bindings,
	}, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	a.log.WithFields(logrus.Fields{"id": resp.ID[:12], "image": spec.Image}).Info("container started")
	return resp.ID, nil
}

// ensureImage pulls the image only when it is not present locally. Always
// pulling would break locally built images that exist in no registry.
func (a *Adapter) ensureImage(ctx context.Context, image string) error {
	if _, _, err := a.cli.ImageInspectWithRaw(ctx, image); err == nil {
		return nil
	} else if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect image: %w", err)
	}

	reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	return nil
}

// StopContainer stops a running container.
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	// Timeout can be configurable, but keeping it simple for now
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.cli.ContainerStop(ctx, id, container.StopOptions{})
}

// GetContainerLogs returns a stream of container logs.
func (a *Adapter) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false, // Can be true for streaming
		Timestamps: true,
	}
	return a.cli.ContainerLogs(ctx, id, options)
}

// RuntimeUser reports the identity the container's process runs as.
func (a *Adapter) RuntimeUser(ctx context.Context, id string) (string, error) {
	info, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to inspect container: %w", err)
	}
	if info.Config == nil {
		return "", nil
	}
	return info.Config.User, nil
}
