package imagetest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const (
	// ContainerName identifies the docker-in-docker
	// sidecar across invocations.
	ContainerName = "image-manager-dind"

	// DindImage is the sidecar image.
	DindImage = "docker:dind"

	// DaemonHost is where the sidecar daemon listens.
	// TLS is disabled; the port is bound to loopback
	// only.
	DaemonHost = "tcp://127.0.0.1:2375"

	dindPort = "2375/tcp"

	readinessAttempts = 60
	readinessDelay    = 500 * time.Millisecond
)

// Dind manages the throwaway docker-in-docker daemon the
// structure tests run against. Images under test are
// loaded into the sidecar, never into the host daemon,
// so repeated test runs cannot pollute local images.
type Dind struct {
	host *client.Client
}

// NewDind connects to the host Docker daemon from the
// environment and verifies it is reachable.
func NewDind(ctx context.Context) (*Dind, error) {
	const errCtx = "connecting to docker daemon"

	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		_ = cli.Close()

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &Dind{host: cli}, nil
}

// Close releases the host daemon connection.
func (d *Dind) Close() error {
	return d.host.Close()
}

// IsRunning reports whether the sidecar container exists
// and is running.
func (d *Dind) IsRunning(
	ctx context.Context,
) (bool, error) {
	const errCtx = "inspecting dind container"

	info, err := d.host.ContainerInspect(
		ctx, ContainerName,
	)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return info.State != nil && info.State.Running, nil
}

// Start creates and starts the sidecar, then waits for
// its daemon to answer pings. A leftover stopped
// container with the same name is removed first.
func (d *Dind) Start(ctx context.Context) error {
	const errCtx = "starting dind container"

	if err := d.removeStale(ctx); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := d.pullImage(ctx); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	resp, err := d.host.ContainerCreate(
		ctx,
		&container.Config{
			Image: DindImage,
			Env:   []string{"DOCKER_TLS_CERTDIR="},
			ExposedPorts: nat.PortSet{
				dindPort: struct{}{},
			},
		},
		&container.HostConfig{
			Privileged: true,
			PortBindings: nat.PortMap{
				dindPort: []nat.PortBinding{
					{
						HostIP:   "127.0.0.1",
						HostPort: "2375",
					},
				},
			},
		},
		nil,
		nil,
		ContainerName,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := d.host.ContainerStart(
		ctx, resp.ID, container.StartOptions{},
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"dind container started",
		"name", ContainerName,
		"host", DaemonHost,
	)

	if err := d.awaitReady(ctx); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Stop force-removes the sidecar. Missing containers are
// not an error.
func (d *Dind) Stop(ctx context.Context) error {
	const errCtx = "stopping dind container"

	err := d.host.ContainerRemove(
		ctx,
		ContainerName,
		container.RemoveOptions{Force: true},
	)
	if err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"dind container removed",
		"name", ContainerName,
	)

	return nil
}

// Ensure starts the sidecar unless it is already
// running.
func (d *Dind) Ensure(ctx context.Context) error {
	running, err := d.IsRunning(ctx)
	if err != nil {
		return err
	}

	if running {
		return nil
	}

	return d.Start(ctx)
}

// LoadTar streams an image tarball into the sidecar
// daemon.
func (d *Dind) LoadTar(
	ctx context.Context,
	path string,
) error {
	const errCtx = "loading image tar into dind"

	cli, err := d.daemonClient()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		_ = cli.Close()
	}()

	tar, err := os.Open(path) //nolint:gosec // path derived from the dist layout
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		_ = tar.Close()
	}()

	resp, err := cli.ImageLoad(
		ctx, tar, client.ImageLoadWithQuiet(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if _, err := io.Copy(
		io.Discard, resp.Body,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info("image tar loaded", "path", path)

	return nil
}

// daemonClient connects to the sidecar daemon itself.
func (d *Dind) daemonClient() (*client.Client, error) {
	return client.NewClientWithOpts(
		client.WithHost(DaemonHost),
		client.WithAPIVersionNegotiation(),
	)
}

func (d *Dind) removeStale(ctx context.Context) error {
	err := d.host.ContainerRemove(
		ctx,
		ContainerName,
		container.RemoveOptions{Force: true},
	)
	if err != nil && !cerrdefs.IsNotFound(err) {
		return err
	}

	return nil
}

func (d *Dind) pullImage(ctx context.Context) error {
	resp, err := d.host.ImagePull(
		ctx, DindImage, image.PullOptions{},
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Close()
	}()

	_, err = io.Copy(io.Discard, resp)

	return err
}

// awaitReady pings the sidecar daemon until it answers
// or the attempt budget runs out. The daemon needs a few
// seconds after container start to bring up its API.
func (d *Dind) awaitReady(ctx context.Context) error {
	cli, err := d.daemonClient()
	if err != nil {
		return err
	}

	defer func() {
		_ = cli.Close()
	}()

	var lastErr error

	for i := 0; i < readinessAttempts; i++ {
		if _, lastErr = cli.Ping(ctx); lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readinessDelay):
		}
	}

	return fmt.Errorf(
		"daemon did not become ready: %w", lastErr,
	)
}
