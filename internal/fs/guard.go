package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a removal target does not resolve to a
// proper subpath of the allowed root.
type ErrOutsideRoot struct {
	Target string
	Root   string
}

func (e *ErrOutsideRoot) Error() string {
	return fmt.Sprintf("refusing to remove %q: not under %q", e.Target, e.Root)
}

// SafeRemoveAll removes target recursively, but only if it is a proper
// subpath of root after symlink resolution. Build and publish directories
// live inside the project folder, so every recursive delete in funcpack
// goes through this guard.
//
// A missing target is a no-op. Any resolution failure refuses the removal
// rather than guessing.
func SafeRemoveAll(target, root string) error {
	resolvedTarget, err := filepath.EvalSymlinks(filepath.Clean(target))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ErrOutsideRoot{Target: target, Root: root}
	}

	resolvedRoot, err := filepath.EvalSymlinks(filepath.Clean(root))
	if err != nil {
		return &ErrOutsideRoot{Target: target, Root: root}
	}

	if !IsSubpath(resolvedTarget, resolvedRoot) {
		return &ErrOutsideRoot{Target: target, Root: root}
	}

	return os.RemoveAll(filepath.Clean(target))
}

// IsSubpath reports whether target is a proper subpath of root. Equal paths
// do not count: the guard must never delete the root itself. Both arguments
// are expected to be cleaned and symlink-resolved already.
func IsSubpath(target, root string) bool {
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return len(target) > len(root) && strings.HasPrefix(target, root)
}
