package pseudofs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBufferReadAndLines(t *testing.T) {
	path := writeTempFile(t, "meminfo", "MemTotal:       16316412 kB\nMemFree:         8112348 kB\n")
	buf, err := NewBuffer(path)
	require.NoError(t, err)
	assert.True(t, buf.Valid())
	assert.NoError(t, buf.LastError())
	assert.Equal(t, path, buf.Path())

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "MemTotal:       16316412 kB", lines[0])

	line, ok := buf.Line(1)
	assert.True(t, ok)
	assert.Equal(t, "MemFree:         8112348 kB", line)
	_, ok = buf.Line(5)
	assert.False(t, ok)

	assert.Equal(t, len(buf.Data()), buf.Size())
}

func TestBufferMissingFile(t *testing.T) {
	buf, err := NewBuffer(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.False(t, buf.Valid())
	assert.Error(t, buf.LastError())
}

func TestBufferCreateIfNotExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh")
	buf, err := NewBuffer(path, WithCreateIfNotExists())
	require.NoError(t, err)
	assert.True(t, buf.Valid())
	assert.True(t, buf.Exists(path))
	assert.Equal(t, 0, buf.Size())
}

func TestBufferOverflow(t *testing.T) {
	path := writeTempFile(t, "big", "0123456789")
	_, err := NewBuffer(path, WithMaxBufferSize(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBufferOverflow))
}

func TestBufferWriteAppendRefresh(t *testing.T) {
	path := writeTempFile(t, "state", "old")
	buf, err := NewBuffer(path, WithTruncateOnWrite())
	require.NoError(t, err)

	require.NoError(t, buf.Write(path, "first\n"))
	assert.Equal(t, "first\n", buf.Data())

	require.NoError(t, buf.Append(path, "second\n"))
	assert.Equal(t, []string{"first", "second"}, buf.Lines())

	require.NoError(t, os.WriteFile(path, []byte("external\n"), 0o644))
	require.NoError(t, buf.Refresh())
	assert.Equal(t, "external\n", buf.Data())
	assert.False(t, buf.LastUpdate().IsZero())
}

func TestBufferRemove(t *testing.T) {
	path := writeTempFile(t, "gone", "bye")
	buf, err := NewBuffer(path)
	require.NoError(t, err)
	require.NoError(t, buf.Remove(path))
	assert.False(t, buf.Valid())
	assert.False(t, buf.Exists(path))
}

func TestBufferTryRead(t *testing.T) {
	path := writeTempFile(t, "quick", "data")
	buf, err := NewBuffer(path)
	require.NoError(t, err)
	assert.NoError(t, buf.TryRead(path, time.Second))
	assert.Error(t, buf.TryRead(filepath.Join(t.TempDir(), "missing"), time.Second))
}

func TestBufferAutoRefresh(t *testing.T) {
	path := writeTempFile(t, "watched", "v1\n")
	buf, err := NewBuffer(path)
	require.NoError(t, err)
	require.NoError(t, buf.EnableAutoRefresh())
	defer func() { _ = buf.Close() }()

	// Enabling twice is rejected.
	assert.True(t, errors.Is(buf.EnableAutoRefresh(), ErrInvalidOperation))

	require.NoError(t, os.WriteFile(path, []byte("v2\n"), 0o644))
	assert.Eventually(t, func() bool {
		return buf.Data() == "v2\n"
	}, 3*time.Second, 10*time.Millisecond)
}
