package pack

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnRemove(t *testing.T) {
	// Given a watched pack directory with one asset
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.db")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	var fired atomic.Int64
	w, err := NewWatcher(dir, discardLogger(), func() { fired.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// When the asset is deleted externally
	require.NoError(t, os.Remove(path))

	// Then the change callback fires
	assert.Eventually(t, func() bool { return fired.Load() > 0 },
		3*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.db")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var fired atomic.Int64
	w, err := NewWatcher(dir, discardLogger(), func() { fired.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	time.Sleep(200 * time.Millisecond)

	assert.Zero(t, fired.Load())
}

func TestWatcherSelfHealsInstallState(t *testing.T) {
	// End to end: an installed pack loses a file on disk and the
	// watcher-driven verification turns the enable flag off.
	srv := newPackServer(t, "1.0", defaultAssets())
	inst, store := newTestInstaller(t, srv)
	require.NoError(t, inst.Start(context.Background()))
	require.True(t, inst.Enabled())

	w, err := NewWatcher(store.Root(), discardLogger(), func() {
		inst.verifyLocal()
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, store.Remove("pack.db"))

	assert.Eventually(t, func() bool { return !inst.Enabled() },
		3*time.Second, 10*time.Millisecond)
}
