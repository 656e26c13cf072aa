package stack

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

// DaemonPinger checks that the container runtime is reachable before the
// deployer starts driving it.
type DaemonPinger interface {
	Ping(ctx context.Context) error
}

// dockerPinger talks to the docker daemon over its API socket.
type dockerPinger struct{}

// NewDockerPinger returns the API-backed DaemonPinger.
func NewDockerPinger() DaemonPinger {
	return dockerPinger{}
}

func (dockerPinger) Ping(ctx context.Context) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	if _, err := cli.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker daemon: %w", err)
	}
	return nil
}
