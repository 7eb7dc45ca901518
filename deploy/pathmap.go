package deploy

import (
	"path/filepath"
	"strings"
)

// NormalizePrefix returns the key prefix with exactly one trailing slash and no leading slash.
// An empty prefix is replaced with DefaultPrefix.
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = strings.TrimRight(prefix, "/") + "/"
	return strings.TrimLeft(prefix, "/")
}

// RemoteKey maps a discovered file path to its object key: the normalized prefix
// followed by the path relative to root. localPath must be inside root.
func RemoteKey(localPath, root, prefix string) string {
	return NormalizePrefix(prefix) + stripRoot(localPath, root)
}

func stripRoot(localPath, root string) string {
	p := strings.TrimPrefix(filepath.ToSlash(localPath), "./")
	r := filepath.ToSlash(filepath.Clean(root))
	if r == "." {
		return p
	}
	return strings.TrimPrefix(p, strings.TrimSuffix(r, "/")+"/")
}
