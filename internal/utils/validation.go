package utils

// IsValidKey reports whether name can serve as a domain key or volume name
// prefix: lowercase letters, digits and underscores, not starting or ending
// with an underscore.
func IsValidKey(name string) bool {
	if len(name) == 0 {
		return false
	}
	if name[0] == '_' || name[len(name)-1] == '_' {
		return false
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}
