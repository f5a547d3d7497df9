package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Equal(t, "settings.toml", findConfig("settings.toml"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("[app]\n"), 0o644))
	assert.Equal(t, "settings.toml", findConfig("settings.toml"))
}

func TestFindConfigNextToExecutable(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	name := "rainyday-test-settings.toml"
	path := filepath.Join(filepath.Dir(exe), name)
	require.NoError(t, os.WriteFile(path, []byte("[app]\n"), 0o644))
	t.Cleanup(func() { os.Remove(path) })

	t.Chdir(t.TempDir())
	assert.Equal(t, path, findConfig(name))
}
