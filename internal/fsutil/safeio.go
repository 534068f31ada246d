// Package fsutil holds small filesystem helpers shared by the storage
// adapter: a traversal-safe file read and a crash-safe atomic write,
// mirroring the teacher's inline manifest helpers (node/store/manifest.go)
// factored out so more than one caller can share them.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ReadFile reads path after rejecting any base-name path traversal.
func ReadFile(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return readFileFromDir(dir, name)
}

func readFileFromDir(dir, name string) ([]byte, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	return fs.ReadFile(os.DirFS(dir), name)
}

// WriteFileAtomic writes data to path via write-temp, fsync, rename,
// fsync-directory, so a crash never leaves a torn file at path (the
// teacher's writeManifestAtomic pattern, generalized beyond the manifest).
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm) // #nosec G304 -- path is operator-controlled datadir, not user input.
	if err != nil {
		return fmt.Errorf("fsutil: open tmp: %w", err)
	}
	_, werr := f.Write(data)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("fsutil: write tmp: %w", werr)
	}
	if serr != nil {
		return fmt.Errorf("fsutil: fsync tmp: %w", serr)
	}
	if cerr != nil {
		return fmt.Errorf("fsutil: close tmp: %w", cerr)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("fsutil: rename: %w", err)
	}

	d, err := os.Open(dir) // #nosec G304 -- dir is operator-controlled datadir, not user input.
	if err != nil {
		return fmt.Errorf("fsutil: fsync dir open: %w", err)
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return fmt.Errorf("fsutil: fsync dir: %w", err)
	}
	return d.Close()
}
