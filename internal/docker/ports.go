package docker

import (
	"fmt"

	"github.com/docker/go-connections/nat"
)

// PortBindings maps a single TCP container port to a host port on all
// interfaces, in the shape ContainerCreate expects.
func PortBindings(containerPort int, hostPort int) (nat.PortSet, nat.PortMap) {
	port := nat.Port(fmt.Sprintf("%d/tcp", containerPort))

	portSet := nat.PortSet{
		port: struct{}{},
	}

	portMap := nat.PortMap{
		port: []nat.PortBinding{
			{
				HostIP:   "0.0.0.0",
				HostPort: fmt.Sprintf("%d", hostPort),
			},
		},
	}

	return portSet, portMap
}
