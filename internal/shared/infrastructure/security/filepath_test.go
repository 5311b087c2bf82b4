package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	t.Run("rejects an empty path", func(t *testing.T) {
		_, err := CleanPath("  ")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, char := range forbiddenChars {
			_, err := CleanPath("/tmp/weights" + string(char) + ".toml")
			assert.ErrorIs(t, err, ErrInvalidPath, "char %q", char)
		}
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		result, err := CleanPath("weights.toml")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
		assert.Equal(t, "weights.toml", filepath.Base(result))
	})

	t.Run("removes dot segments", func(t *testing.T) {
		result, err := CleanPath("/etc/nudge/../nudge/./weights.toml")
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/etc/nudge/weights.toml"), result)
	})

	t.Run("keeps symlinks unresolved", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "real.toml")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))
		link := filepath.Join(dir, "link.toml")
		require.NoError(t, os.Symlink(target, link))

		result, err := CleanPath(link)
		require.NoError(t, err)
		assert.Equal(t, link, result)
	})
}

func TestSafeReadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads a small file", func(t *testing.T) {
		path := filepath.Join(dir, "weights.toml")
		require.NoError(t, os.WriteFile(path, []byte("[priority_weights]\n"), 0o600))

		data, err := SafeReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[priority_weights]\n", string(data))
	})

	t.Run("refuses an invalid path", func(t *testing.T) {
		_, err := SafeReadFile(filepath.Join(dir, "weights.toml") + ";rm")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("refuses an oversized file", func(t *testing.T) {
		path := filepath.Join(dir, "huge.toml")
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("#", MaxReadSize+1)), 0o600))

		_, err := SafeReadFile(path)
		assert.ErrorContains(t, err, "larger than")
	})

	t.Run("reports a missing file", func(t *testing.T) {
		_, err := SafeReadFile(filepath.Join(dir, "missing.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
