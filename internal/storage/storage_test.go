package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	s := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))

	first, err := s.Save(strings.NewReader("one"), "book.epub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Path, "book.epub"), first)

	second, err := s.Save(strings.NewReader("two"), "../book.epub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Path, "book_1.epub"), second)

	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	require.NoError(t, s.Remove(first))
	require.NoError(t, s.Remove(first))
	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestSaveFailedCopyLeavesNothing(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	_, err := s.Save(failingReader{}, "book.epub")
	require.Error(t, err)

	entries, err := os.ReadDir(s.Path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
