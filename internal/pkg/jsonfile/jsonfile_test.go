package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saida.json")

	require.NoError(t, WriteAtomic(path, map[string]any{"situacao": "SEM PREÇO"}))

	raw, ok, err := ReadBytes(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), "SEM PREÇO")
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestCrashBeforeRenameLeavesPriorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saida.json")
	require.NoError(t, WriteAtomic(path, map[string]any{"v": 1}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	crash := errors.New("simulated crash")
	orig := beforeRename
	beforeRename = func(string) error { return crash }
	t.Cleanup(func() { beforeRename = orig })

	err = WriteAtomic(path, map[string]any{"v": 2})
	require.ErrorIs(t, err, crash)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestEncodeFailureDoesNotTouchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saida.json")
	require.NoError(t, WriteAtomic(path, []int{1, 2}))

	err := WriteAtomic(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(raw))
}

func TestReadBytesMissing(t *testing.T) {
	raw, ok, err := ReadBytes(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, raw)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
