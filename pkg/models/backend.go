package models

import "time"

// BackendStatus describes the backend container as last seen by the runtime.
type BackendStatus struct {
	Exists      bool
	Running     bool
	ContainerID string
	Name        string
	State       string
	Image       string
	StartedAt   time.Time
	Ports       []string
	Mounts      []BackendMount
}

type BackendMount struct {
	Type   string
	Source string
	Target string
}
