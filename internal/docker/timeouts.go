package docker

import "time"

const (
	ImagePullTimeout   = 10 * time.Minute
	ContainerOpTimeout = 30 * time.Second
	VolumeOpTimeout    = 30 * time.Second
)
