package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CopyIfMissing copies src to dst unless dst already exists. It reports
// whether a copy was made. Missing parent directories of dst are created.
func CopyIfMissing(src, dst string, perm os.FileMode) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	// #nosec G304
	data, err := os.ReadFile(src)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return false, err
	}
	if err := WriteFileAtomic(dst, data, perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return true, nil
}
