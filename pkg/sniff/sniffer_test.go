package sniff

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSource struct {
	stats ProfileStats
}

func (f *fakeSource) ProfileStats() ProfileStats {
	return f.stats
}

func TestSniffer_StartAndStop(t *testing.T) {
	opts := Config{
		Enabled:   true,
		Interval:  "100ms",
		Directory: t.TempDir(),
		MaxSize:   1,
	}

	s := New(opts, nil)

	err := s.Start(context.Background())
	assert.NoError(t, err)

	s.Stop()
}

func TestSniffer_DisabledStartIsNoop(t *testing.T) {
	tempDir := t.TempDir()
	opts := Config{
		Enabled:   false,
		Interval:  "50ms",
		Directory: tempDir,
	}

	s := New(opts, nil)
	require.NoError(t, s.Start(context.Background()))

	time.Sleep(150 * time.Millisecond)
	_, err := os.Stat(filepath.Join(tempDir, "stats.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSniffer_CaptureStats(t *testing.T) {
	tempDir := t.TempDir()
	opts := Config{
		Enabled:   true,
		Interval:  "100ms",
		Directory: tempDir,
		MaxSize:   1,
	}

	s := New(opts, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// Wait for at least one capture
	time.Sleep(350 * time.Millisecond)

	statsFile := filepath.Join(tempDir, "stats.json")
	content, err := os.ReadFile(statsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"alloc_mib"`)
	assert.Contains(t, string(content), `"num_goroutines"`)
	assert.Contains(t, string(content), `"process_seconds"`)

	snap := s.LastSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, os.Getpid(), snap.Pid)
	assert.Nil(t, snap.Profile)
}

func TestSniffer_CaptureStats_WithSource(t *testing.T) {
	tempDir := t.TempDir()
	opts := Config{
		Enabled:   true,
		Interval:  "100ms",
		Directory: tempDir,
		MaxSize:   1,
	}

	src := &fakeSource{stats: ProfileStats{
		Profiler: "profiler-1",
		Sampler:  "tracing-sampler-1",
		Samples:  42,
		Running:  true,
	}}

	s := New(opts, src)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	time.Sleep(350 * time.Millisecond)

	snap := s.LastSnapshot()
	require.NotNil(t, snap)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, int64(42), snap.Profile.Samples)
	assert.True(t, snap.Profile.Running)

	content, err := os.ReadFile(filepath.Join(tempDir, "stats.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"samples":42`)
}

func TestSniffer_RotateFileIfNeeded(t *testing.T) {
	tempDir := t.TempDir()
	statsFile := filepath.Join(tempDir, "stats.json")

	s := New(Config{Directory: tempDir, MaxSize: 1}, nil)

	// Create a new file
	f, encoder, err := s.rotateFileIfNeeded(nil, nil, statsFile, 1024)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.NotNil(t, encoder)

	// Under the limit nothing rotates
	err = os.WriteFile(statsFile, []byte("snapshot data"), 0644)
	require.NoError(t, err)
	same, _, err := s.rotateFileIfNeeded(f, encoder, statsFile, 1024)
	require.NoError(t, err)
	assert.Same(t, f, same)

	// Over the limit the file is rolled to a backup
	f, encoder, err = s.rotateFileIfNeeded(f, encoder, statsFile, 4)
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.NotNil(t, encoder)

	files, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Greater(t, len(files), 1)
}

func TestSniffer_WriteStatsToFile(t *testing.T) {
	tempDir := t.TempDir()
	statsFile := filepath.Join(tempDir, "stats.json")
	f, err := os.Create(statsFile)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	encoder := json.NewEncoder(f)
	s := New(Config{}, nil)

	memStats := &MemStats{AllocMiB: 10, SysMiB: 30, NumGC: 5}
	cpuStats := &CPUStats{NumGoroutines: 10, NumCPU: 4, NumCgoCalls: 100, ProcessSeconds: 1.5}

	err = s.writeStatsToFile(encoder, memStats, cpuStats, nil)
	require.NoError(t, err)

	content, err := os.ReadFile(statsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"alloc_mib"`)
	assert.Contains(t, string(content), `"num_gc"`)
	assert.Contains(t, string(content), `"process_seconds":1.5`)
}
