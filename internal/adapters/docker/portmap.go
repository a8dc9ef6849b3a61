package docker

import (
	"fmt"
	"strconv"

	"github.com/docker/go-connections/nat"
)

// portBindings maps the container port to a host port binding on all
// interfaces. hostPort 0 publishes on the same port.
func portBindings(containerPort, hostPort int) (nat.PortSet, nat.PortMap, error) {
	if containerPort < 1 || containerPort > 65535 {
		return nil, nil, fmt.Errorf("invalid container port %d", containerPort)
	}
	if hostPort == 0 {
		hostPort = containerPort
	}
	if hostPort < 1 || hostPort > 65535 {
		return nil, nil, fmt.Errorf("invalid host port %d", hostPort)
	}

	p, err := nat.NewPort("tcp", strconv.Itoa(containerPort))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map port: %w", err)
	}

	exposed := nat.PortSet{p: struct{}{}}
	bindings := nat.PortMap{p: []nat.PortBinding{{
		HostIP:   "0.0.0.0",
		HostPort: strconv.Itoa(hostPort),
	}}}
	return exposed, bindings, nil
}
