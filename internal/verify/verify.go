// Package verify checks the runtime contract of a deployment: the process
// actually binds its published port within a bounded time, and it never
// runs as the privileged identity.
package verify

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// UserInspector reports the identity a container's process runs as.
type UserInspector interface {
	RuntimeUser(ctx context.Context, id string) (string, error)
}

// WaitForPort blocks until addr accepts a TCP connection or the timeout
// elapses. A process that dies at start (import error, mismatch between
// entry point and module layout) never binds, so this is the smoke test
// that catches it.
func WaitForPort(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s did not accept connections within %s: %w", addr, timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Unprivileged fails when the container's runtime identity is root, or
// unset (which Docker resolves to root).
func Unprivileged(ctx context.Context, ins UserInspector, id string) error {
	user, err := ins.RuntimeUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to resolve runtime user: %w", err)
	}
	name, _, _ := strings.Cut(user, ":")
	if name == "" || name == "root" || name == "0" {
		return fmt.Errorf("container %s runs as privileged identity %q", id, user)
	}
	return nil
}

// Deployment bundles the checks for one deployed container. Host is where
// the published ports are reachable from the verifier's point of view.
type Deployment struct {
	Inspector UserInspector
	Host      string
	Timeout   time.Duration
}

// Verify runs the port-bind smoke check and the unprivileged check.
func (d *Deployment) Verify(ctx context.Context, id string, hostPort int) error {
	host := d.Host
	if host == "" {
		host = "127.0.0.1"
	}
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	addr := net.JoinHostPort(host, strconv.Itoa(hostPort))
	if err := WaitForPort(ctx, addr, timeout); err != nil {
		return err
	}
	return Unprivileged(ctx, d.Inspector, id)
}
