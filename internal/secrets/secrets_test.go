// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDirReturnsEmptyMap(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestLoad_ReadsAndTrimsValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "semantic-scholar-api-key"), []byte("  abc123\n"), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc123", s["semantic-scholar-api-key"])
}

func TestLoad_SkipsHiddenFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "key"), []byte("value"), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "value"}, s)
}

func TestLoad_SkipsEmptyValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("   \n"), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, s)
}
