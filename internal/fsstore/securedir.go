package fsstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// EnsureSecureDir creates dir with 0700 and refuses symlinks, non-directories
// and directories owned by another user. It returns the absolute path.
func EnsureSecureDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("%w: empty dir", ErrInvalidPath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	dir = abs

	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return "", fmt.Errorf("fsstore ensure dir %s: %w", dir, err)
	}

	fi, err := os.Lstat(dir)
	if err != nil {
		return "", err
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("%w: refusing symlink path %s", ErrInsecureDir, dir)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrInvalidPath, dir)
	}

	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return "", fmt.Errorf("%w: unsupported stat for %s", ErrInsecureDir, dir)
	}
	if curUID := uint32(os.Getuid()); st.Uid != curUID {
		return "", fmt.Errorf("%w: %s owned by uid %d, not %d", ErrInsecureDir, dir, st.Uid, curUID)
	}
	if perm := fi.Mode().Perm(); perm != defaultDirPerm {
		if err := os.Chmod(dir, defaultDirPerm); err != nil {
			return "", fmt.Errorf("%w: perms %#o and chmod failed: %v", ErrInsecureDir, perm, err)
		}
	}
	return dir, nil
}
