package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrStorageWrite marks a failed write of a data file. The canonical file is
// left as it was before the write.
var ErrStorageWrite = errors.New("storage write failed")

// renameFile is replaced in tests to fail the final step of a write.
var renameFile = os.Rename

// writeFileAtomic writes payload to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, payload []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, path, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, path, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, path, err)
	}
	if err = renameFile(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageWrite, path, err)
	}
	return nil
}
