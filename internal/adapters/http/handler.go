package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/yigitd/slipway/internal/core/domain"
	"github.com/yigitd/slipway/internal/core/ports"
)

// DeployVerifier checks a started container against the runtime contract:
// port reachable, identity unprivileged.
type DeployVerifier interface {
	Verify(ctx context.Context, id string, hostPort int) error
}

type ContainerHandler struct {
	service  ports.ContainerService
	builder  ports.BuilderService
	verifier DeployVerifier
	log      *logrus.Logger
	metrics  *Metrics
}

func NewContainerHandler(service ports.ContainerService, builder ports.BuilderService, verifier DeployVerifier, log *logrus.Logger, metrics *Metrics) *ContainerHandler {
	return &ContainerHandler{service: service, builder: builder, verifier: verifier, log: log, metrics: metrics}
}

func (h *ContainerHandler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(containers)
}

// BuildImage builds an image from a git repository or staged source tree.
// This is a blocking call: builds can take a while.
func (h *ContainerHandler) BuildImage(c *fiber.Ctx) error {
	var req ports.BuildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.RepoURL == "" && req.ContextDir == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "repo_url or context_dir is required",
		})
	}

	image, err := h.builder.BuildImage(c.Context(), req)
	if err != nil {
		h.metrics.Builds.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Build failed: " + err.Error(),
		})
	}
	h.metrics.Builds.WithLabelValues("ok").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": image})
}

type StartContainerRequest struct {
	Image    string         `json:"image"`
	RepoURL  string         `json:"repo_url"`
	Recipe   *domain.Recipe `json:"recipe,omitempty"`
	Name     string         `json:"name"`
	Port     int            `json:"port"`
	HostPort int            `json:"host_port"`
}

// StartContainer deploys an image, building it first when a repository URL
// is given. The deploy only reports success once the container passed
// verification; a failed container is stopped again.
func (h *ContainerHandler) StartContainer(c *fiber.Ctx) error {
	var req StartContainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	imageToRun := req.Image
	if req.RepoURL != "" {
		image, err := h.builder.BuildImage(c.Context(), ports.BuildRequest{
			RepoURL: req.RepoURL,
			Recipe:  req.Recipe,
			Tag:     req.Image,
		})
		if err != nil {
			h.metrics.Builds.WithLabelValues("error").Inc()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Build failed: " + err.Error(),
			})
		}
		h.metrics.Builds.WithLabelValues("ok").Inc()
		imageToRun = image
	}
	if imageToRun == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name or Repo URL is required",
		})
	}

	port := req.Port
	if port == 0 {
		if req.Recipe != nil && req.Recipe.Port != 0 {
			port = req.Recipe.Port
		} else {
			port = 8080
		}
	}
	hostPort := req.HostPort
	if hostPort == 0 {
		hostPort = port
	}

	containerID, err := h.service.StartContainer(c.Context(), domain.RunSpec{
		Image:    imageToRun,
		Name:     req.Name,
		Port:     port,
		HostPort: hostPort,
	})
	if err != nil {
		h.metrics.Deploys.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.verifier.Verify(c.Context(), containerID, hostPort); err != nil {
		h.metrics.Deploys.WithLabelValues("error").Inc()
		h.log.WithError(err).WithField("id", containerID).Warn("deployment failed verification, stopping")
		if stopErr := h.service.StopContainer(c.Context(), containerID); stopErr != nil {
			h.log.WithError(stopErr).WithField("id", containerID).Warn("failed to stop unverified container")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Deployment failed verification: " + err.Error(),
		})
	}
	h.metrics.Deploys.WithLabelValues("ok").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        containerID,
		"image":     imageToRun,
		"host_port": hostPort,
	})
}

func (h *ContainerHandler) StopContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if err := h.service.StopContainer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContainerHandler) GetContainerLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	logs, err := h.service.GetContainerLogs(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}
