// Package fileutil provides filesystem helpers for robust file operations.
package fileutil

import (
	"os"
	"path/filepath"

	apperr "unigate/pkg/errors"
)

// ErrEmptyPath indicates an empty file path was provided.
var ErrEmptyPath = apperr.New("EMPTY_PATH", "path is empty", 500)

// WriteAtomic writes data to path atomically with the provided permissions.
// It writes to a temp file in the same directory, fsyncs, then renames.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmpFile, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return apperr.Wrap(err, "creating temp file")
	}

	tmpPath := tmpFile.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmpFile.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return apperr.Wrap(err, "writing temp file")
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return apperr.Wrap(err, "setting temp file permissions")
	}
	if err := tmpFile.Sync(); err != nil {
		return apperr.Wrap(err, "syncing temp file")
	}
	if err := tmpFile.Close(); err != nil {
		return apperr.Wrap(err, "closing temp file")
	}
	closed = true

	if err := os.Rename(tmpPath, path); err != nil {
		return apperr.Wrap(err, "renaming temp file")
	}

	// Best effort directory sync for rename durability.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}
	return nil
}
