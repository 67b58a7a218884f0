package models

import "time"

// BackupSet is one timestamped backup directory in the working directory,
// holding at most one archive per domain.
type BackupSet struct {
	ID        string
	Path      string
	CreatedAt time.Time
	Archives  map[string]string // domain key -> archive path
	SizeBytes int64
	Metadata  *BackupMetadata
}

// BackupMetadata is the metadata.json written into every backup set.
type BackupMetadata struct {
	ID           string         `json:"id"`
	InvocationID string         `json:"invocation_id"`
	CreatedAt    time.Time      `json:"created_at"`
	Archives     []ArchiveEntry `json:"archives"`
}

type ArchiveEntry struct {
	Domain    string `json:"domain"`
	File      string `json:"file"`
	SizeBytes int64  `json:"size_bytes"`
	FileCount int    `json:"file_count"`
}
