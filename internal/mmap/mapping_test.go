package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello mapping"), 0o644))

	m, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, 13, m.Size())
	assert.Equal(t, "hello mapping", string(m.Bytes()))
	require.NoError(t, m.Sequential())

	buf := make([]byte, 7)
	n, err := m.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "mapping", string(buf))

	n, err = m.ReadAt(buf, 10)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = m.ReadAt(buf, -1)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	cp, err := m.Copy()
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.Equal(t, "hello mapping", string(cp))

	_, err = m.Copy()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Sequential(), ErrClosed)
}

func TestOpenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	cp, err := m.Copy()
	require.NoError(t, err)
	assert.Empty(t, cp)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
