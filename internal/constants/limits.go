package constants

const (
	MaxKeyLength = 64
	MinKeyLength = 1

	MinPort = 0
	MaxPort = 65535

	DefaultBackendPort = 8000

	DirMode = 0755
)
