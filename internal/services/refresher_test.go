package services

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	n atomic.Int64
}

func (c *countingInvalidator) Invalidate() { c.n.Add(1) }

func TestRefresher_WatchInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "players.csv")
	require.NoError(t, os.WriteFile(path, []byte("Player\nA\n"), 0o644))

	target := &countingInvalidator{}
	r := NewRefresherService("", true, []string{path}, testLogger(), target)
	require.NoError(t, r.Start())
	defer r.Stop()

	require.NoError(t, os.WriteFile(path, []byte("Player\nB\n"), 0o644))

	assert.Eventually(t, func() bool {
		return target.n.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefresher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "players.csv")
	require.NoError(t, os.WriteFile(path, []byte("Player\nA\n"), 0o644))

	target := &countingInvalidator{}
	r := NewRefresherService("", true, []string{path}, testLogger(), target)
	require.NoError(t, r.Start())
	defer r.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.EqualValues(t, 0, target.n.Load())
}

func TestRefresher_StartStopIdempotent(t *testing.T) {
	r := NewRefresherService("@hourly", false, nil, testLogger(), &countingInvalidator{})
	require.NoError(t, r.Start())
	require.NoError(t, r.Start())
	r.Stop()
	r.Stop()
}

func TestRefresher_BadScheduleFailsStart(t *testing.T) {
	r := NewRefresherService("not a schedule", false, nil, testLogger())
	assert.Error(t, r.Start())
}
