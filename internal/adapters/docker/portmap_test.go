package docker

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortBindings(t *testing.T) {
	exposed, bindings, err := portBindings(8080, 18080)
	require.NoError(t, err)

	p := nat.Port("8080/tcp")
	assert.Contains(t, exposed, p)
	require.Len(t, bindings[p], 1)
	assert.Equal(t, "0.0.0.0", bindings[p][0].HostIP)
	assert.Equal(t, "18080", bindings[p][0].HostPort)
}

func TestPortBindingsDefaultsHostPort(t *testing.T) {
	_, bindings, err := portBindings(9000, 0)
	require.NoError(t, err)

	assert.Equal(t, "9000", bindings[nat.Port("9000/tcp")][0].HostPort)
}

func TestPortBindingsRejectsBadPorts(t *testing.T) {
	for _, ports := range [][2]int{{0, 0}, {-1, 80}, {70000, 0}, {80, 70000}} {
		_, _, err := portBindings(ports[0], ports[1])
		assert.Error(t, err, "ports %v", ports)
	}
}
