package domain

// Container represents a container managed by the runtime (Docker, K8s, etc.)
type Container struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Status    string `json:"status"`
	State     string `json:"state"` // running, exited, etc.
	IPAddress string `json:"ip_address,omitempty"`
	Port      int    `json:"port,omitempty"`      // port the process binds inside the container
	HostPort  int    `json:"host_port,omitempty"` // published port on the host
}

// RunSpec describes how an image should be started: which container port
// gets published to which host port, and under which name. The container
// port is also injected as the PORT environment variable so entry points
// that honor a platform port override bind to the right place.
type RunSpec struct {
	Image    string   `json:"image"`
	Name     string   `json:"name"`
	Port     int      `json:"port"`      // port the process binds inside the container
	HostPort int      `json:"host_port"` // 0 means same as Port
	Env      []string `json:"env,omitempty"`
}
