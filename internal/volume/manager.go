package volume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/lucsky/cuid"
	"github.com/volman-dev/volman/internal/constants"
	"github.com/volman-dev/volman/pkg/models"
)

// Runtime is the slice of the container runtime the manager consumes.
// *docker.Client implements it; tests substitute a fake.
type Runtime interface {
	VolumeExists(ctx context.Context, name string) (bool, error)
	CreateVolume(ctx context.Context, name string, domainKey string) error
	RemoveVolume(ctx context.Context, name string) error
	VolumeMountpoint(ctx context.Context, name string) (string, bool, error)
}

// ConfirmFunc asks the operator before a destructive operation runs. It
// must return true only on an explicit affirmative answer.
type ConfirmFunc func(prompt string) bool

// Manager runs the lifecycle operations over a fixed, ordered domain
// registry. Operations iterate the registry in declaration order and
// print status lines to out; that ordering is part of the interface.
type Manager struct {
	runtime Runtime
	domains []models.Domain
	workDir string
	out     io.Writer
}

// NewManager builds a manager rooted at workDir. rt may be nil: filesystem
// steps still run, volume steps degrade to warnings. Backup, restore and
// usage never touch the runtime at all.
func NewManager(rt Runtime, domains []models.Domain, workDir string, out io.Writer) *Manager {
	if out == nil {
		out = io.Discard
	}
	return &Manager{
		runtime: rt,
		domains: domains,
		workDir: workDir,
		out:     out,
	}
}

func (m *Manager) dirPath(d models.Domain) string {
	return filepath.Join(m.workDir, d.LocalPath)
}

// Create provisions the local directory and the runtime volume for every
// domain. Existing resources are reported and left untouched. A directory
// creation failure aborts the whole operation; volume failures are warned
// about per domain and surface in the returned error.
func (m *Manager) Create(ctx context.Context) error {
	for _, d := range m.domains {
		path := m.dirPath(d)

		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			if err := os.MkdirAll(path, constants.DirMode); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", d.LocalPath, err)
			}
			// MkdirAll is subject to the umask, so set the mode explicitly
			if err := os.Chmod(path, constants.DirMode); err != nil {
				return fmt.Errorf("failed to set permissions on %s: %w", d.LocalPath, err)
			}
			fmt.Fprintf(m.out, "  [done] created directory %s\n", d.LocalPath)
		case err != nil:
			return fmt.Errorf("failed to stat %s: %w", d.LocalPath, err)
		case !info.IsDir():
			return fmt.Errorf("%s exists and is not a directory", d.LocalPath)
		default:
			fmt.Fprintf(m.out, "  [info] directory %s already exists\n", d.LocalPath)
		}
	}

	if m.runtime == nil {
		fmt.Fprintln(m.out, "  [warn] container runtime unavailable, volumes not created")
		return errors.New("container runtime unavailable")
	}

	var errs []error
	for _, d := range m.domains {
		exists, err := m.runtime.VolumeExists(ctx, d.VolumeName)
		if err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}

		if exists {
			fmt.Fprintf(m.out, "  [info] volume %s already exists\n", d.VolumeName)
			continue
		}

		if err := m.runtime.CreateVolume(ctx, d.VolumeName, d.Key); err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}
		fmt.Fprintf(m.out, "  [done] created volume %s\n", d.VolumeName)
	}

	return errors.Join(errs...)
}

// List reports every domain's volume and directory state. Absence is
// state, never an error; runtime trouble is downgraded to a warning.
func (m *Manager) List(ctx context.Context) []models.DomainStatus {
	if m.runtime == nil {
		fmt.Fprintln(m.out, "  [warn] container runtime unavailable, volume status not shown")
	}

	statuses := make([]models.DomainStatus, 0, len(m.domains))
	for _, d := range m.domains {
		status := models.DomainStatus{Domain: d}

		if m.runtime != nil {
			mountpoint, exists, err := m.runtime.VolumeMountpoint(ctx, d.VolumeName)
			if err != nil {
				fmt.Fprintf(m.out, "  [warn] %s: volume check failed: %v\n", d.Key, err)
			} else {
				status.VolumeExists = exists
				status.Mountpoint = mountpoint
			}
		}

		if info, err := os.Stat(m.dirPath(d)); err == nil && info.IsDir() {
			status.DirExists = true
			size, err := DirSize(m.dirPath(d))
			if err != nil {
				fmt.Fprintf(m.out, "  [warn] %s: size check failed: %v\n", d.Key, err)
			} else {
				status.DirSizeBytes = size
			}
		}

		statuses = append(statuses, status)
	}

	return statuses
}

// Backup snapshots every non-empty domain directory into a fresh
// timestamped backup set and returns the set id. Missing and empty
// directories are skipped with a warning. There is no rollback; an
// interrupted backup leaves a partial set behind.
func (m *Manager) Backup(ctx context.Context) (string, error) {
	now := time.Now()
	id := BackupPrefix + now.Format(backupTimeFormat)
	backupDir := filepath.Join(m.workDir, id)

	if err := os.MkdirAll(backupDir, constants.DirMode); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", id, err)
	}

	meta := &models.BackupMetadata{
		ID:           id,
		InvocationID: cuid.New(),
		CreatedAt:    now,
	}

	var errs []error
	for _, d := range m.domains {
		src := m.dirPath(d)

		info, err := os.Stat(src)
		if os.IsNotExist(err) || (err == nil && !info.IsDir()) {
			fmt.Fprintf(m.out, "  [warn] skipping %s: directory not found\n", d.Key)
			continue
		}
		if err != nil {
			fmt.Fprintf(m.out, "  [warn] skipping %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}

		empty, err := DirEmpty(src)
		if err != nil {
			fmt.Fprintf(m.out, "  [warn] skipping %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}
		if empty {
			fmt.Fprintf(m.out, "  [warn] skipping %s: directory empty\n", d.Key)
			continue
		}

		archiveName := d.Key + archiveSuffix
		archivePath := filepath.Join(backupDir, archiveName)

		fileCount, err := CreateArchive(m.workDir, d.LocalPath, archivePath)
		if err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}

		var size int64
		if stat, err := os.Stat(archivePath); err == nil {
			size = stat.Size()
		}

		meta.Archives = append(meta.Archives, models.ArchiveEntry{
			Domain:    d.Key,
			File:      archiveName,
			SizeBytes: size,
			FileCount: fileCount,
		})
		fmt.Fprintf(m.out, "  [done] %s (%s)\n", archiveName, units.HumanSize(float64(size)))
	}

	if err := WriteMetadata(backupDir, meta); err != nil {
		fmt.Fprintf(m.out, "  [warn] %v\n", err)
		errs = append(errs, err)
	}

	return id, errors.Join(errs...)
}

// Restore replaces domain directories from a backup set. The set must
// exist before anything is touched. Each restored directory is removed
// entirely and rebuilt from its archive; domains without an archive are
// skipped with a warning. Domains already restored stay restored when a
// later one fails.
func (m *Manager) Restore(ctx context.Context, backupID string) error {
	backupID = strings.TrimSpace(backupID)
	if backupID == "" {
		return errors.New("backup id required")
	}
	backupID = filepath.Clean(backupID)
	if backupID == "." {
		return errors.New("backup id required")
	}

	backupDir := backupID
	if !filepath.IsAbs(backupDir) {
		backupDir = filepath.Join(m.workDir, backupID)
	}

	info, err := os.Stat(backupDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("backup directory not found: %s", backupID)
	}

	var errs []error
	for _, d := range m.domains {
		archive := filepath.Join(backupDir, d.Key+archiveSuffix)
		if _, err := os.Stat(archive); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(m.out, "  [warn] no archive for %s, skipping\n", d.Key)
			} else {
				fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
				errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			}
			continue
		}

		if err := os.RemoveAll(m.dirPath(d)); err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}

		if err := ExtractArchive(archive, m.workDir); err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}

		fmt.Fprintf(m.out, "  [done] restored %s\n", d.Key)
	}

	return errors.Join(errs...)
}

// Usage reports disk usage in whole megabytes per domain, plus the total.
// Domains without a directory are excluded, not reported as zero.
// Unreadable directories are warned about and excluded the same way.
func (m *Manager) Usage(ctx context.Context) ([]models.DomainUsage, int64) {
	var usages []models.DomainUsage
	var totalMB int64

	for _, d := range m.domains {
		path := m.dirPath(d)

		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}

		size, err := DirSize(path)
		if err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			continue
		}

		mb := size / (1024 * 1024)
		usages = append(usages, models.DomainUsage{
			Key:       d.Key,
			Path:      d.LocalPath,
			SizeBytes: size,
			SizeMB:    mb,
		})
		totalMB += mb
	}

	return usages, totalMB
}

// Clean deletes the contents of every domain directory and removes every
// domain volume, after confirmation. The directories themselves survive so
// that a later create finds the mount points immediately usable; the
// volumes are removed whole. Declining the prompt mutates nothing.
func (m *Manager) Clean(ctx context.Context, confirm ConfirmFunc) error {
	if confirm == nil || !confirm("  continue? (y/N): ") {
		fmt.Fprintln(m.out, "  [warn] clean cancelled, nothing touched")
		return nil
	}

	var errs []error
	for _, d := range m.domains {
		dir := m.dirPath(d)

		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}

		cleared := true
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
				fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
				errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
				cleared = false
			}
		}
		if cleared {
			fmt.Fprintf(m.out, "  [done] cleared %s\n", d.LocalPath)
		}
	}

	if m.runtime == nil {
		fmt.Fprintln(m.out, "  [warn] container runtime unavailable, volumes not removed")
		errs = append(errs, errors.New("container runtime unavailable"))
		return errors.Join(errs...)
	}

	for _, d := range m.domains {
		exists, err := m.runtime.VolumeExists(ctx, d.VolumeName)
		if err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}
		if !exists {
			continue
		}

		if err := m.runtime.RemoveVolume(ctx, d.VolumeName); err != nil {
			fmt.Fprintf(m.out, "  [warn] %s: %v\n", d.Key, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Key, err))
			continue
		}
		fmt.Fprintf(m.out, "  [done] removed volume %s\n", d.VolumeName)
	}

	return errors.Join(errs...)
}
