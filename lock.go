package main

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// the lock file guarding `output_dir`, kept in the temp dir so it never lands beside the artifacts.
func lock_path(output_dir string) (string, error) {
	abs_output_dir, err := filepath.Abs(output_dir)
	if err != nil {
		return "", err
	}
	md5sum := md5.Sum([]byte(abs_output_dir))
	return filepath.Join(os.TempDir(), "skills-sh-"+hex.EncodeToString(md5sum[:8])+".lock"), nil
}

// takes an exclusive lock on `output_dir` so two runs can't interleave their cache writes.
// returns a function that releases the lock.
func acquire_run_lock(output_dir string) (func(), error) {
	path, err := lock_path(output_dir)
	if err != nil {
		return func() {}, fmt.Errorf("cannot resolve output directory: %w", err)
	}

	l := flock.New(path)
	locked, err := l.TryLock()
	if err != nil {
		return func() {}, fmt.Errorf("cannot acquire run lock: %w", err)
	}
	if !locked {
		return func() {}, fmt.Errorf("another run is writing to '%s' (lock: %s)", output_dir, path)
	}
	return func() { _ = l.Unlock() }, nil
}
