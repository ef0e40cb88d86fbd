package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
)

// ---------------------------------------------------------------------------
// Atomic replace
// ---------------------------------------------------------------------------

// commit atomically replaces the file at path with data: the bytes go to a
// fresh temp file in the same directory, reach stable storage via fsync,
// and land through a rename. A crash or failure at any step leaves the
// original file intact; the temp never survives a failed attempt.
func commit(path string, data []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".weft-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(name)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
