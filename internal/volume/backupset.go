package volume

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/volman-dev/volman/internal/utils"
	"github.com/volman-dev/volman/pkg/models"
)

const (
	// BackupPrefix starts every backup set directory name. The timestamp
	// suffix makes lexical order equal chronological order.
	BackupPrefix = "backup_"

	backupTimeFormat = "20060102_150405"
	metadataFileName = "metadata.json"
	archiveSuffix    = ".tar.gz"
)

// DiscoverBackupSets scans workDir for backup set directories, oldest
// first. Sets written by other tools (no metadata.json) are still listed;
// their creation time is parsed from the directory name when possible.
func DiscoverBackupSets(workDir string) ([]models.BackupSet, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", workDir, err)
	}

	var sets []models.BackupSet
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), BackupPrefix) {
			continue
		}

		set, err := readBackupSet(workDir, entry.Name())
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return sets, nil
}

func readBackupSet(workDir, name string) (models.BackupSet, error) {
	dir := filepath.Join(workDir, name)

	set := models.BackupSet{
		ID:       name,
		Path:     dir,
		Archives: map[string]string{},
	}

	if ts, err := time.ParseInLocation(backupTimeFormat, strings.TrimPrefix(name, BackupPrefix), time.Local); err == nil {
		set.CreatedAt = ts
	}

	meta, err := LoadMetadata(dir)
	if err != nil {
		return models.BackupSet{}, err
	}
	if meta != nil {
		set.Metadata = meta
		if !meta.CreatedAt.IsZero() {
			set.CreatedAt = meta.CreatedAt
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.BackupSet{}, fmt.Errorf("failed to read backup set %s: %w", name, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), archiveSuffix)
		set.Archives[key] = filepath.Join(dir, entry.Name())

		if info, err := entry.Info(); err == nil {
			set.SizeBytes += info.Size()
		}
	}

	return set, nil
}

// LoadMetadata reads metadata.json from a backup set directory. A missing
// file is not an error; sets created by hand simply have none.
func LoadMetadata(dir string) (*models.BackupMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup metadata: %w", err)
	}

	var meta models.BackupMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse backup metadata: %w", err)
	}

	return &meta, nil
}

func WriteMetadata(dir string, meta *models.BackupMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup metadata: %w", err)
	}

	if err := utils.AtomicWriteFile(filepath.Join(dir, metadataFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write backup metadata: %w", err)
	}

	return nil
}

// PruneBackupSets removes all but the newest keep sets and returns the ids
// it deleted, oldest first.
func PruneBackupSets(workDir string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	sets, err := DiscoverBackupSets(workDir)
	if err != nil {
		return nil, err
	}

	if len(sets) <= keep {
		return nil, nil
	}

	var removed []string
	for _, set := range sets[:len(sets)-keep] {
		if err := os.RemoveAll(set.Path); err != nil {
			return removed, fmt.Errorf("failed to remove backup set %s: %w", set.ID, err)
		}
		removed = append(removed, set.ID)
	}

	return removed, nil
}
