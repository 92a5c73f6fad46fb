package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rewrittenConfig = `{
  "url": "https://brianza.medialibrary.it",
  "user.name": "ann",
  "user.password": "hunter22",
  "reservations.max_concurrent": 3,
  "loans.duration_in_days": 14,
  "loans.max_monthly": 4,
  "books.wishlist": [150243379]
}`

func TestNewWatcher(t *testing.T) {
	watcher, err := NewWatcher(filepath.Join(t.TempDir(), "config.json"), 0, nil)
	require.NoError(t, err)
	require.NotNil(t, watcher)

	require.NoError(t, watcher.Stop())
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0600))

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	// Give the watcher time to initialize
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(rewrittenConfig), 0600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 3, cfg.MaxConcurrentReservations)
		assert.Equal(t, []int{150243379}, cfg.Wishlist)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestWatcherKeepsPreviousOnBadEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0600))

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	// A truncated edit must not reach the callback.
	require.NoError(t, os.WriteFile(path, []byte(`{"url": `), 0600))

	select {
	case <-reloaded:
		t.Fatal("broken edit should not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}

	// The watcher survives the bad edit and picks up the next good one.
	require.NoError(t, os.WriteFile(path, []byte(rewrittenConfig), 0600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 3, cfg.MaxConcurrentReservations)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload after recovery")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0600))

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	select {
	case <-reloaded:
		t.Fatal("sibling file should not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}
