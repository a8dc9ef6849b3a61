package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yigitd/slipway/internal/adapters/builder"
	"github.com/yigitd/slipway/internal/adapters/docker"
	httpadapter "github.com/yigitd/slipway/internal/adapters/http"
	"github.com/yigitd/slipway/internal/verify"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slipwayd",
		Short: "Build and deploy service for Python ASGI applications",
		Long: "slipwayd packages Python ASGI source trees into unprivileged container\n" +
			"images, runs them with their port published, and routes app subdomains\n" +
			"to the running containers.",
		RunE:          runServer,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String("listen", ":3000", "API listen address")
	cmd.Flags().String("domain", "", "apex domain apps are proxied under (empty disables the proxy)")
	cmd.Flags().String("log-level", "info", "log level")
	cmd.Flags().String("log-format", "text", "log format (text or json)")
	cmd.Flags().Duration("verify-timeout", 15*time.Second, "how long a deployment may take to bind its port")

	viper.SetEnvPrefix("slipway")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlags(cmd.Flags())

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)
	if viper.GetString("log-format") == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	dockerAdapter, err := docker.NewAdapter(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize docker adapter: %w", err)
	}
	builderAdapter, err := builder.NewAdapter(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize builder adapter: %w", err)
	}

	verifier := &verify.Deployment{
		Inspector: dockerAdapter,
		Timeout:   viper.GetDuration("verify-timeout"),
	}

	registry := prometheus.NewRegistry()
	metrics := httpadapter.NewMetrics(registry)
	containerHandler := httpadapter.NewContainerHandler(dockerAdapter, builderAdapter, verifier, logger, metrics)
	proxyHandler := httpadapter.NewProxyHandler(dockerAdapter, viper.GetString("domain"), logger)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(proxyHandler.ProxyRequest)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	v1.Post("/builds", containerHandler.BuildImage)

	containers := v1.Group("/containers")
	containers.Get("/", containerHandler.ListContainers)
	containers.Post("/", containerHandler.StartContainer)
	containers.Delete("/:id", containerHandler.StopContainer)
	containers.Get("/:id/logs", containerHandler.GetContainerLogs)

	app.Get("/metrics", httpadapter.MetricsHandler(registry))

	listen := viper.GetString("listen")
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("listen", listen).Info("server starting")
		errCh <- app.Listen(listen)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
