package filelock

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForUsesSiblingLockFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "prefs.yaml")
	lock := For(target)
	assert.Equal(t, target+".lock", lock.path)

	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
	require.NoError(t, lock.RLock())
	require.NoError(t, lock.Unlock())
}

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")

	require.NoError(t, AtomicWrite(path, []byte("first"), 0o644))
	require.NoError(t, AtomicWrite(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestAtomicWriteMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.md")
	assert.Error(t, AtomicWrite(path, []byte("x"), 0o644))
}

func TestLockAndReadMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := LockAndRead(filepath.Join(dir, "none.yaml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = LockAndRead(filepath.Join(dir, "nodir", "none.yaml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, statErr := os.Stat(filepath.Join(dir, "nodir"))
	assert.True(t, os.IsNotExist(statErr), "no lock file is created for a missing directory")
}

func TestConcurrentLockAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	require.NoError(t, LockAndWrite(path, []byte("0"), 0o644))

	const goroutines = 4
	const iterations = 10

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				lock := For(path)
				if err := lock.Lock(); err != nil {
					t.Error(err)
					return
				}
				data, err := os.ReadFile(path)
				if err == nil {
					n, _ := strconv.Atoi(string(data))
					err = AtomicWrite(path, []byte(strconv.Itoa(n+1)), 0o644)
				}
				_ = lock.Unlock()
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	data, err := LockAndRead(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(goroutines*iterations), string(data))
}
