package models

type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Domains  []DomainConfig `toml:"domains"`
	Backend  BackendConfig  `toml:"backend"`
}

type RegistryConfig struct {
	Prefix string `toml:"prefix"`
}

// DomainConfig is one [[domains]] entry in volman.toml. Path defaults to the
// key, Volume to "<prefix>_<key>".
type DomainConfig struct {
	Key    string `toml:"key"`
	Path   string `toml:"path"`
	Volume string `toml:"volume"`
}

type BackendConfig struct {
	Image         string            `toml:"image"`
	ContainerName string            `toml:"container_name"`
	Port          int               `toml:"port"`
	HostPort      int               `toml:"host_port"`
	Env           map[string]string `toml:"env"`
	Mounts        string            `toml:"mounts"` // bind or volume
	MountRoot     string            `toml:"mount_root"`
	RestartPolicy string            `toml:"restart_policy"`
}
