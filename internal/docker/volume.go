package docker

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/volume"
)

func (c *Client) CreateVolume(ctx context.Context, volumeName string, domainKey string) error {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	_, err := c.cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   volumeName,
		Driver: "local",
		Labels: map[string]string{
			"volman.managed": "true",
			"volman.domain":  domainKey,
		},
	})

	if err != nil {
		return fmt.Errorf("failed to create volume: %w", err)
	}

	return nil
}

func (c *Client) RemoveVolume(ctx context.Context, volumeName string) error {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	if err := c.cli.VolumeRemove(ctx, volumeName, false); err != nil {
		return fmt.Errorf("failed to remove volume: %w", err)
	}

	return nil
}

func (c *Client) VolumeExists(ctx context.Context, volumeName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	_, err := c.cli.VolumeInspect(ctx, volumeName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// VolumeMountpoint resolves the host mount point of a named volume. A
// missing volume is reported as absent, not as an error.
func (c *Client) VolumeMountpoint(ctx context.Context, volumeName string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	vol, err := c.cli.VolumeInspect(ctx, volumeName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return vol.Mountpoint, true, nil
}
