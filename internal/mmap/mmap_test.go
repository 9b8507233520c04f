package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmap_OpenReadClose(t *testing.T) {
	content := []byte("Hello, Mmap!")
	path := filepath.Join(t.TempDir(), "mmap_test")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	m, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())

	buf := make([]byte, 5)
	n, err := m.ReadAt(buf, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "Mmap!", string(buf))

	// Short read at the tail.
	buf = make([]byte, 10)
	n, err = m.ReadAt(buf, 7)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 5, n)

	_, err = m.ReadAt(buf, 100)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
}

func TestMmap_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Size())
	require.NoError(t, m.Close())
}

func TestMmap_NotExist(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
