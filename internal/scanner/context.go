package scanner

import "strings"

// VirtualPathSeparator delimits components in paths of files found inside
// archives, e.g. "backup.tar.gz::wallets/wallet.dat".
const VirtualPathSeparator = "::"

// ParseVirtualPath splits a virtual path into its components.
// Example: "backup.zip::inner.tar::wallet.dat" -> ["backup.zip", "inner.tar", "wallet.dat"]
func ParseVirtualPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, VirtualPathSeparator)
}

// BuildVirtualPath constructs a virtual path from components.
func BuildVirtualPath(components ...string) string {
	return strings.Join(components, VirtualPathSeparator)
}

// IsVirtualPath checks if a path contains virtual path separators.
func IsVirtualPath(path string) bool {
	return strings.Contains(path, VirtualPathSeparator)
}

// GetArtifactRoot extracts the outermost file from a virtual path.
// Example: "backup.zip::wallet.dat" -> "backup.zip"
func GetArtifactRoot(path string) string {
	parts := ParseVirtualPath(path)
	if len(parts) > 0 {
		return parts[0]
	}
	return path
}

// GetDepth returns the nesting depth of a virtual path.
func GetDepth(path string) int {
	if path == "" {
		return 0
	}
	return len(ParseVirtualPath(path))
}
