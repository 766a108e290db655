package reconcile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// exists reports whether path is present. Stat failures other than not-exist are
// treated as present so that nothing is written over a path we cannot inspect.
func exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// moveFile renames src to dst, falling back to copy and remove when rename fails
// (typically across devices).
func moveFile(fs afero.Fs, src, dst string) error {
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(fs, src, dst); err != nil {
		return err
	}
	if err := fs.Remove(src); err != nil {
		return fmt.Errorf("copied to %s but failed to remove source: %w", dst, err)
	}
	return nil
}

// copyFile copies src to dst, keeping the source mode and modification time.
func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	return fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

// restore moves a backup back to dst, replacing any partial copy left there.
func restore(fs afero.Fs, backup, dst string) error {
	if err := fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return moveFile(fs, backup, dst)
}

// maxRenameAttempts bounds the numeric counter used by uniqueName.
const maxRenameAttempts = 10000

// uniqueName returns the first free path in dir of the form <stem><suffix><ext>,
// then <stem><suffix>_<n><ext> for n = 2, 3, ... A candidate that cannot be
// inspected (e.g. a name too long for the filesystem) ends the search with an error.
func uniqueName(fs afero.Fs, dir, stem, suffix, ext string) (string, error) {
	candidate := filepath.Join(dir, stem+suffix+ext)
	for n := 2; n <= maxRenameAttempts; n++ {
		_, err := fs.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s%s_%d%s", stem, suffix, n, ext))
	}
	return "", fmt.Errorf("no free name for %s%s%s in %s after %d attempts", stem, suffix, ext, dir, maxRenameAttempts)
}
