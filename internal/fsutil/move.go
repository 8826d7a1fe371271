package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	removeAttempts = 3
	removeDelay    = 500 * time.Millisecond
)

// MoveFile moves src to dst, creating the parent directories of dst.
// Uses os.Rename if possible, otherwise copies and deletes.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("move %s: %w", dst, os.ErrExist)
	}

	// Try rename first (works if same filesystem)
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	// Fall back to copy + delete
	if err := copyFile(src, dst); err != nil {
		return err
	}

	return os.Remove(src)
}

// copyFile copies a file from src to dst, keeping its permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	return dstFile.Close()
}

// RemoveDirIfEmpty removes dir when it has no entries. It reports whether
// the directory was removed. Removal is attempted a few times since a
// directory can stay busy for a moment after its last file was moved out.
func RemoveDirIfEmpty(ctx context.Context, dir string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < removeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(removeDelay):
			}
		}

		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			lastErr = err
			continue
		}
		if len(entries) > 0 {
			return false, nil
		}
		if err := os.Remove(dir); err != nil {
			lastErr = err
			continue
		}
		return true, nil
	}
	return false, fmt.Errorf("remove %s: failed after %d attempts: %w", dir, removeAttempts, lastErr)
}

// RemoveEmptyParents removes dir and then each of its parents while they
// are empty, stopping below stop, which is never removed. dir must be inside
// stop. It returns the removed directories, deepest first.
func RemoveEmptyParents(ctx context.Context, dir, stop string) ([]string, error) {
	dir, stop = filepath.Clean(dir), filepath.Clean(stop)
	var removed []string
	for isBelow(dir, stop) {
		ok, err := RemoveDirIfEmpty(ctx, dir)
		if err != nil || !ok {
			return removed, err
		}
		removed = append(removed, dir)
		dir = filepath.Dir(dir)
	}
	return removed, nil
}

// isBelow reports whether dir is strictly inside root.
func isBelow(dir, root string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
