// Package sniff periodically captures the host process's runtime state and
// the observed profiler's own counters, logging each snapshot and appending
// it to a JSON stats file. It answers what profiling itself costs without
// attaching a second profiler.
package sniff

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/shirou/gopsutil/v4/process"
	"golang.hedera.com/solo-lynx/pkg/fsx"
	"golang.hedera.com/solo-lynx/pkg/logx"
	"os"
	"path"
	"runtime"
	"sync"
	"time"
)

var (
	sniffer     *Sniffer
	snifferOnce sync.Once
)

type Sniffer struct {
	opts         *Config
	source       Source
	proc         *process.Process
	lastSnapshot *Stats
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.Mutex
}

// New builds a sniffer observing source; a nil source limits snapshots to
// runtime and process stats.
func New(opts Config, source Source) *Sniffer {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logx.As().Warn().Err(err).Msg("Process CPU stats unavailable")
		proc = nil
	}

	return &Sniffer{
		opts:   &opts,
		source: source,
		proc:   proc,
	}
}

// Start initializes and starts the global sniffer.
func Start(ctx context.Context, opts Config, source Source) error {
	var startErr error

	snifferOnce.Do(func() {
		sniffer = New(opts, source)
		startErr = sniffer.Start(ctx)
	})

	return startErr
}

// Stop stops the global sniffer if it is running.
func Stop() {
	if sniffer != nil {
		sniffer.Stop()
		sniffer = nil
	}
}

// Get returns the global sniffer instance.
func Get() *Sniffer {
	return sniffer
}

func (s *Sniffer) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("sniffer context is nil")
	}

	if !s.opts.Enabled {
		return nil
	}

	// derive a cancelable context so canceling the parent stops the capture
	// loop as well
	s.ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		<-ctx.Done()
		logx.As().Trace().Msg("Context canceled, stopping self-observation...")
		s.Stop()
	}()

	return s.startCapturingStats()
}

func (s *Sniffer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// LastSnapshot returns the most recently captured snapshot, nil before the
// first capture.
func (s *Sniffer) LastSnapshot() *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSnapshot
}

// startCapturingStats starts the capture loop writing snapshots to a file.
// The loop exits once the sniffer context is canceled.
func (s *Sniffer) startCapturingStats() error {
	if s.ctx == nil {
		return fmt.Errorf("sniffer context is nil")
	}

	if err := os.MkdirAll(s.opts.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	interval, err := time.ParseDuration(s.opts.Interval)
	if err != nil {
		return fmt.Errorf("error parsing capture interval: %w", err)
	}

	statsFile := path.Join(s.opts.Directory, "stats.json")
	maxFileSize := s.opts.MaxSize * 1024 * 1024

	go func() {
		var f *os.File
		var encoder *json.Encoder
		defer func() { fsx.CloseFile(f) }()

		for {
			select {
			case <-s.ctx.Done():
				return
			default:
				time.Sleep(interval)

				var err error
				f, encoder, err = s.rotateFileIfNeeded(f, encoder, statsFile, maxFileSize)
				if err != nil {
					logx.As().Error().Err(err).Msg("Failed to handle stats file")
					continue
				}

				memStats, cpuStats := s.collectStats()
				profStats := s.profileStats()
				if err := s.writeStatsToFile(encoder, memStats, cpuStats, profStats); err != nil {
					logx.As().Error().Err(err).Msg("Failed to write stats")
				}

				ev := logx.As().Info().
					Uint64("Alloc(MiB)", memStats.AllocMiB).
					Uint64("TotalAlloc(MiB)", memStats.TotalAllocMiB).
					Uint64("Sys(MiB)", memStats.SysMiB).
					Uint32("NumGC", memStats.NumGC).
					Int("NumGoroutines", cpuStats.NumGoroutines).
					Float64("ProcessCPU(s)", cpuStats.ProcessSeconds)
				if profStats != nil {
					ev = ev.Str("Sampler", profStats.Sampler).
						Int64("Samples", profStats.Samples)
				}
				ev.Msg("Captured self-observation snapshot")
			}
		}
	}()

	return nil
}

// rotateFileIfNeeded opens the stats file on first use and rolls it to a
// timestamped backup once it exceeds maxSize.
func (s *Sniffer) rotateFileIfNeeded(f *os.File, encoder *json.Encoder, filePath string, maxSize int64) (*os.File, *json.Encoder, error) {
	if f == nil || encoder == nil {
		return s.createNewFile(filePath)
	}

	info, exists := fsx.PathExists(filePath)
	if !exists {
		fsx.CloseFile(f)
		return s.createNewFile(filePath)
	}

	if maxSize > 0 && info.Size() >= maxSize {
		if err := f.Close(); err != nil {
			return nil, nil, fmt.Errorf("failed to close current file: %w", err)
		}

		dir, fileName, ext := fsx.SplitFilePath(filePath)
		backupFileName := fmt.Sprintf("%s-%s", fileName, time.Now().Format("2006-01-02T15-04-05"))
		backupPath := fsx.CombineFilePath(dir, backupFileName, ext)
		if err := os.Rename(filePath, backupPath); err != nil {
			return nil, nil, fmt.Errorf("failed to rotate file: %w", err)
		}
		logx.As().Info().Msg(fmt.Sprintf("Rotated stats file to %s", backupPath))

		return s.createNewFile(filePath)
	}

	return f, encoder, nil
}

func (s *Sniffer) createNewFile(filePath string) (*os.File, *json.Encoder, error) {
	f, err := os.Create(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create new stats file: %w", err)
	}

	return f, json.NewEncoder(f), nil
}

func (s *Sniffer) collectStats() (*MemStats, *CPUStats) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	memStats := &MemStats{
		AllocMiB:      m.Alloc / 1024 / 1024,
		TotalAllocMiB: m.TotalAlloc / 1024 / 1024,
		SysMiB:        m.Sys / 1024 / 1024,
		NumGC:         m.NumGC,
	}

	cpuStats := &CPUStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		NumCgoCalls:   runtime.NumCgoCall(),
	}

	if s.proc != nil {
		if times, err := s.proc.Times(); err == nil {
			cpuStats.ProcessSeconds = times.User + times.System
		}
	}

	return memStats, cpuStats
}

func (s *Sniffer) profileStats() *ProfileStats {
	if s.source == nil {
		return nil
	}

	ps := s.source.ProfileStats()
	return &ps
}

func (s *Sniffer) writeStatsToFile(encoder *json.Encoder, memStats *MemStats, cpuStats *CPUStats, profStats *ProfileStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSnapshot = &Stats{
		Pid:       logx.GetPid(),
		Timestamp: time.Now().Format(time.RFC3339Nano),
		MemStats:  memStats,
		CPUStats:  cpuStats,
		Profile:   profStats,
	}

	if err := encoder.Encode(s.lastSnapshot); err != nil {
		return fmt.Errorf("failed to write snapshot to file: %w", err)
	}
	return nil
}
