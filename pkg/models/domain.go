package models

// Domain is one named category of persisted data: a stable key bound to a
// relative local directory and a named volume in the container runtime.
type Domain struct {
	Key        string
	LocalPath  string
	VolumeName string
}

// DomainStatus is the read-only view of one domain as reported by list.
// Absence of the directory or the volume is state, not an error.
type DomainStatus struct {
	Domain
	VolumeExists bool
	Mountpoint   string
	DirExists    bool
	DirSizeBytes int64
}

// DomainUsage is one row of the usage report. SizeMB is whole megabytes,
// truncating.
type DomainUsage struct {
	Key       string
	Path      string
	SizeBytes int64
	SizeMB    int64
}
