package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/volman-dev/volman/internal/constants"
	"github.com/volman-dev/volman/internal/utils"
	"github.com/volman-dev/volman/pkg/models"
)

const FileName = "volman.toml"

const DefaultPrefix = "volman"

// DefaultKeys is the built-in registry, in operation order.
var DefaultKeys = []string{"data", "chunks", "merged_files", "logs", "cache", "uploads", "models", "temp"}

// Load reads volman.toml from dir when present, otherwise returns the
// built-in defaults. The returned config is validated and fully defaulted.
func Load(dir string) (*models.Config, error) {
	configPath := filepath.Join(dir, FileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := Default()
		if err := validateAndSetDefaults(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg models.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if len(cfg.Domains) == 0 {
		cfg.Domains = defaultDomainConfigs()
	}

	if err := validateAndSetDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration: the stock domain registry and
// backend settings for a local deployment.
func Default() *models.Config {
	return &models.Config{
		Registry: models.RegistryConfig{Prefix: DefaultPrefix},
		Domains:  defaultDomainConfigs(),
	}
}

func defaultDomainConfigs() []models.DomainConfig {
	domains := make([]models.DomainConfig, 0, len(DefaultKeys))
	for _, key := range DefaultKeys {
		domains = append(domains, models.DomainConfig{Key: key})
	}
	return domains
}

func validateAndSetDefaults(cfg *models.Config) error {
	if cfg.Registry.Prefix == "" {
		cfg.Registry.Prefix = DefaultPrefix
	}
	if !utils.IsValidKey(cfg.Registry.Prefix) {
		return fmt.Errorf("invalid registry prefix %q", cfg.Registry.Prefix)
	}

	if len(cfg.Domains) == 0 {
		return fmt.Errorf("registry has no domains")
	}

	seen := make(map[string]bool, len(cfg.Domains))
	for i := range cfg.Domains {
		d := &cfg.Domains[i]
		if !utils.IsValidKey(d.Key) || len(d.Key) > constants.MaxKeyLength {
			return fmt.Errorf("invalid domain key %q (lowercase letters, digits and underscores, max %d chars)", d.Key, constants.MaxKeyLength)
		}
		if seen[d.Key] {
			return fmt.Errorf("duplicate domain key %q", d.Key)
		}
		seen[d.Key] = true

		if d.Path == "" {
			d.Path = d.Key
		}
		if err := validateLocalPath(d.Path); err != nil {
			return fmt.Errorf("domain %q: %w", d.Key, err)
		}
		if d.Volume == "" {
			d.Volume = fmt.Sprintf("%s_%s", cfg.Registry.Prefix, d.Key)
		}
	}

	b := &cfg.Backend
	if b.ContainerName == "" {
		b.ContainerName = "volman-backend"
	}
	if b.Port == 0 {
		b.Port = constants.DefaultBackendPort
	}
	if b.Port < constants.MinPort || b.Port > constants.MaxPort {
		return fmt.Errorf("backend port %d out of range", b.Port)
	}
	if b.HostPort == 0 {
		b.HostPort = b.Port
	}
	if b.HostPort < constants.MinPort || b.HostPort > constants.MaxPort {
		return fmt.Errorf("backend host port %d out of range", b.HostPort)
	}
	switch b.Mounts {
	case "":
		b.Mounts = "bind"
	case "bind", "volume":
	default:
		return fmt.Errorf("backend mounts must be \"bind\" or \"volume\", got %q", b.Mounts)
	}
	if b.MountRoot == "" {
		b.MountRoot = "/app"
	}
	if !strings.HasPrefix(b.MountRoot, "/") {
		return fmt.Errorf("backend mount_root must be absolute, got %q", b.MountRoot)
	}
	switch b.RestartPolicy {
	case "":
		b.RestartPolicy = "unless-stopped"
	case "no", "always", "on-failure", "unless-stopped":
	default:
		return fmt.Errorf("backend restart_policy must be one of no, always, on-failure or unless-stopped, got %q", b.RestartPolicy)
	}

	return nil
}

// validateLocalPath rejects paths that would let an operation escape the
// working directory. restore() deletes these paths recursively, so absolute
// and parent-relative paths are configuration errors.
func validateLocalPath(p string) error {
	if filepath.IsAbs(p) {
		return fmt.Errorf("path must be relative, got %q", p)
	}
	clean := filepath.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes the working directory", p)
	}
	return nil
}

// Resolve turns the validated domain entries into the immutable registry
// handed to every operation, preserving declaration order.
func Resolve(cfg *models.Config) []models.Domain {
	domains := make([]models.Domain, 0, len(cfg.Domains))
	for _, d := range cfg.Domains {
		domains = append(domains, models.Domain{
			Key:        d.Key,
			LocalPath:  filepath.Clean(d.Path),
			VolumeName: d.Volume,
		})
	}
	return domains
}
