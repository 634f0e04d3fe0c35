package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_acquire_run_lock(t *testing.T) {
	output_dir := t.TempDir()

	release, err := acquire_run_lock(output_dir)
	require.Nil(t, err)

	_, err = acquire_run_lock(output_dir)
	assert.NotNil(t, err)

	// same directory, different spelling
	_, err = acquire_run_lock(output_dir + "/./")
	assert.NotNil(t, err)

	// other directories are unaffected
	other_release, err := acquire_run_lock(t.TempDir())
	require.Nil(t, err)
	other_release()

	release()
	release, err = acquire_run_lock(output_dir)
	require.Nil(t, err)
	release()
}

func Test_acquire_run_lock__outside_output_dir(t *testing.T) {
	output_dir := filepath.Join(t.TempDir(), "data", "skills-sh")

	release, err := acquire_run_lock(output_dir)
	require.Nil(t, err)
	defer release()

	// nothing is created in, or for, the output directory
	_, err = os.Stat(output_dir)
	assert.True(t, os.IsNotExist(err))

	path, err := lock_path(output_dir)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(path, os.TempDir()))
	assert.FileExists(t, path)
}
