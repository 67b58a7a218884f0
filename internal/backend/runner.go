package backend

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/volman-dev/volman/internal/docker"
	"github.com/volman-dev/volman/pkg/models"
)

// Runner manages the single backend container that consumes the domain
// directories. The container is found by name, never by stored id, so the
// runner works across invocations without a registry file.
type Runner struct {
	client  *docker.Client
	cfg     models.BackendConfig
	domains []models.Domain
	workDir string
	out     io.Writer
}

func NewRunner(client *docker.Client, cfg models.BackendConfig, domains []models.Domain, workDir string, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		client:  client,
		cfg:     cfg,
		domains: domains,
		workDir: workDir,
		out:     out,
	}
}

// Start creates and starts the backend container with one mount per domain.
// A running container with the configured name is an error; a stopped
// leftover is removed and replaced.
func (r *Runner) Start(ctx context.Context) (string, error) {
	if r.cfg.Image == "" {
		return "", fmt.Errorf("no backend image configured, set image under [backend] in volman.toml")
	}

	existing, err := r.client.FindContainerByName(r.cfg.ContainerName)
	if err != nil {
		return "", err
	}
	if existing != nil {
		// the list state can lag behind a recent stop, ask for the
		// current one before deciding
		state, err := r.client.GetContainerStatus(existing.ID)
		if err != nil {
			return "", err
		}
		if state == "running" {
			return "", fmt.Errorf("backend container %s is already running", r.cfg.ContainerName)
		}
		fmt.Fprintf(r.out, "  [info] removing stopped container %s\n", r.cfg.ContainerName)
		if err := r.client.RemoveContainer(existing.ID); err != nil {
			return "", err
		}
	}

	imageExists, err := r.client.ImageExists(r.cfg.Image)
	if err != nil {
		return "", fmt.Errorf("failed to check image: %w", err)
	}
	if !imageExists {
		fmt.Fprintf(r.out, "  --> pulling %s\n", r.cfg.Image)
		if err := r.client.PullImage(r.cfg.Image, r.out); err != nil {
			return "", err
		}
	}

	mounts, err := BuildMounts(r.cfg, r.domains, r.workDir)
	if err != nil {
		return "", err
	}

	portSet, portMap := docker.PortBindings(r.cfg.Port, r.cfg.HostPort)

	config := &container.Config{
		Image:        r.cfg.Image,
		Env:          BuildEnv(r.cfg.Env),
		ExposedPorts: portSet,
		Labels: map[string]string{
			"volman.managed": "true",
			"volman.type":    "backend",
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: portMap,
		Mounts:       mounts,
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyMode(r.cfg.RestartPolicy),
		},
	}

	containerID, err := r.client.CreateContainer(config, hostConfig, nil, r.cfg.ContainerName)
	if err != nil {
		return "", err
	}

	if err := r.client.StartContainer(containerID); err != nil {
		_ = r.client.RemoveContainer(containerID)
		return "", err
	}

	return containerID, nil
}

// Stop stops and removes the backend container. Domain volumes are never
// touched.
func (r *Runner) Stop(ctx context.Context) error {
	existing, err := r.client.FindContainerByName(r.cfg.ContainerName)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("backend container %s not found", r.cfg.ContainerName)
	}

	if existing.State == "running" {
		if err := r.client.StopContainer(existing.ID); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "  [done] stopped %s\n", r.cfg.ContainerName)
	}

	if err := r.client.RemoveContainer(existing.ID); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "  [done] removed %s\n", r.cfg.ContainerName)

	return nil
}

// Status inspects the backend container. A missing container is reported
// through the Exists flag, not an error.
func (r *Runner) Status(ctx context.Context) (*models.BackendStatus, error) {
	existing, err := r.client.FindContainerByName(r.cfg.ContainerName)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return &models.BackendStatus{Name: r.cfg.ContainerName}, nil
	}

	inspect, err := r.client.InspectContainer(existing.ID)
	if err != nil {
		return nil, err
	}

	status := &models.BackendStatus{
		Exists:      true,
		Running:     inspect.State.Running,
		ContainerID: inspect.ID,
		Name:        r.cfg.ContainerName,
		State:       inspect.State.Status,
		Image:       inspect.Config.Image,
	}

	if started, err := time.Parse(time.RFC3339Nano, inspect.State.StartedAt); err == nil {
		status.StartedAt = started
	}

	for port, bindings := range inspect.HostConfig.PortBindings {
		for _, binding := range bindings {
			status.Ports = append(status.Ports, fmt.Sprintf("%s->%s", binding.HostPort, port))
		}
	}
	sort.Strings(status.Ports)

	for _, m := range inspect.Mounts {
		status.Mounts = append(status.Mounts, models.BackendMount{
			Type:   string(m.Type),
			Source: m.Source,
			Target: m.Destination,
		})
	}
	sort.Slice(status.Mounts, func(i, j int) bool {
		return status.Mounts[i].Target < status.Mounts[j].Target
	})

	return status, nil
}

// Logs opens the backend container's log stream. The caller owns the
// reader and must demux it with stdcopy.
func (r *Runner) Logs(ctx context.Context, follow bool) (io.ReadCloser, error) {
	existing, err := r.client.FindContainerByName(r.cfg.ContainerName)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("backend container %s not found", r.cfg.ContainerName)
	}

	return r.client.GetContainerLogs(existing.ID, follow)
}

// BuildMounts produces one mount per domain in registry order. Mode "bind"
// mounts the local directory, mode "volume" mounts the named volume; both
// land at <mount_root>/<local path> inside the container.
func BuildMounts(cfg models.BackendConfig, domains []models.Domain, workDir string) ([]mount.Mount, error) {
	mounts := make([]mount.Mount, 0, len(domains))

	for _, d := range domains {
		target := path.Join(cfg.MountRoot, filepath.ToSlash(d.LocalPath))

		switch cfg.Mounts {
		case "bind":
			source, err := filepath.Abs(filepath.Join(workDir, d.LocalPath))
			if err != nil {
				return nil, fmt.Errorf("failed to resolve path for %s: %w", d.Key, err)
			}
			mounts = append(mounts, mount.Mount{
				Type:   mount.TypeBind,
				Source: source,
				Target: target,
			})
		case "volume":
			mounts = append(mounts, mount.Mount{
				Type:   mount.TypeVolume,
				Source: d.VolumeName,
				Target: target,
			})
		default:
			return nil, fmt.Errorf("invalid mount mode %q, expected bind or volume", cfg.Mounts)
		}
	}

	return mounts, nil
}

// BuildEnv flattens the env map into KEY=VALUE form, sorted so the
// container config is stable across runs.
func BuildEnv(envVars map[string]string) []string {
	env := make([]string, 0, len(envVars))
	for key, value := range envVars {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(env)
	return env
}
