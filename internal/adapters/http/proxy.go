package http

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sirupsen/logrus"

	"github.com/yigitd/slipway/internal/core/ports"
)

// ProxyHandler routes subdomain requests (app-name.<domain>) to the
// corresponding container: the traffic-router role of the platform.
type ProxyHandler struct {
	service ports.ContainerService
	domain  string
	log     *logrus.Logger
}

// NewProxyHandler creates a new proxy handler. domain is the apex the apps
// are served under; an empty domain disables proxying.
func NewProxyHandler(service ports.ContainerService, domain string, log *logrus.Logger) *ProxyHandler {
	return &ProxyHandler{service: service, domain: domain, log: log}
}

// ProxyRequest intercepts requests to app subdomains and routes them to
// the container's address on its bound port.
func (h *ProxyHandler) ProxyRequest(c *fiber.Ctx) error {
	if h.domain == "" {
		return c.Next()
	}

	host := c.Hostname()
	if !strings.HasSuffix(host, "."+h.domain) {
		return c.Next()
	}
	subdomain := strings.TrimSuffix(host, "."+h.domain)
	if subdomain == "" || subdomain == "www" || strings.Contains(subdomain, ".") {
		return c.Next()
	}

	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to list containers")
	}

	var targetIP string
	var targetPort int
	for _, container := range containers {
		if container.Name != subdomain || container.State != "running" {
			continue
		}
		targetIP = container.IPAddress
		targetPort = container.Port
		break
	}

	if targetIP == "" || targetPort == 0 {
		return c.Status(fiber.StatusNotFound).SendString(fmt.Sprintf("App '%s' not found or not running", subdomain))
	}

	remote, err := url.Parse("http://" + targetIP + ":" + strconv.Itoa(targetPort))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Invalid target URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(remote)

	// Rewrite the Host header so the container receives a request with a
	// host it expects, avoiding "Host not recognized" errors from the
	// application inside.
	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = remote.Host
		req.URL.Host = remote.Host
		req.URL.Scheme = remote.Scheme
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		h.log.WithError(err).WithField("target", remote.Host).Warn("proxy error")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(fmt.Sprintf("Proxy Info: target=%s error=%v", remote.Host, err)))
	}

	return adaptor.HTTPHandler(proxy)(c)
}
