package fsstore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func EnsureDir(path string, perm os.FileMode) error {
	normalized, err := normalizePath(path)
	if err != nil {
		return err
	}
	if perm == 0 {
		perm = defaultDirPerm
	}
	if err := os.MkdirAll(normalized, perm); err != nil {
		return fmt.Errorf("fsstore ensure dir %s: %w", normalized, err)
	}
	return nil
}

// WriteFileAtomic replaces path with content. Readers see either the old file
// or the complete new one.
func WriteFileAtomic(path string, content []byte, opts FileOptions) error {
	_, err := WriteStreamAtomic(path, bytes.NewReader(content), 0, opts)
	return err
}

// WriteStreamAtomic copies r into path through a temp file in the same
// directory. With maxBytes > 0 the write fails with ErrTooLarge once the
// stream exceeds the limit, and nothing is left behind.
func WriteStreamAtomic(path string, r io.Reader, maxBytes int64, opts FileOptions) (int64, error) {
	normalizedPath, err := normalizePath(path)
	if err != nil {
		return 0, err
	}
	opts = normalizeFileOptions(opts)

	parentDir := filepath.Dir(normalizedPath)
	if err := EnsureDir(parentDir, opts.DirPerm); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(parentDir, filepath.Base(normalizedPath)+".tmp.*")
	if err != nil {
		return 0, fmt.Errorf("%w: create temp for %s: %v", ErrAtomicWriteFailed, normalizedPath, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		return n, fmt.Errorf("%w: write temp for %s: %v", ErrAtomicWriteFailed, normalizedPath, err)
	}
	if maxBytes > 0 && n > maxBytes {
		return n, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, normalizedPath, maxBytes)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("%w: sync temp for %s: %v", ErrAtomicWriteFailed, normalizedPath, err)
	}
	if err := tmp.Chmod(opts.FilePerm); err != nil {
		return n, fmt.Errorf("%w: chmod temp for %s: %v", ErrAtomicWriteFailed, normalizedPath, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("%w: close temp for %s: %v", ErrAtomicWriteFailed, normalizedPath, err)
	}
	if err := os.Rename(tmpPath, normalizedPath); err != nil {
		return n, fmt.Errorf("%w: rename temp for %s: %v", ErrAtomicWriteFailed, normalizedPath, err)
	}

	// Best effort directory sync; ignore failures.
	if dirFD, err := os.Open(parentDir); err == nil {
		_ = dirFD.Sync()
		_ = dirFD.Close()
	}
	return n, nil
}
