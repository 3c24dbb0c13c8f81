package sniff

// MemStats is the memory portion of a snapshot.
type MemStats struct {
	AllocMiB      uint64 `json:"alloc_mib"`
	TotalAllocMiB uint64 `json:"total_alloc_mib"`
	SysMiB        uint64 `json:"sys_mib"`
	NumGC         uint32 `json:"num_gc"`
}

// CPUStats is the scheduler and CPU portion of a snapshot.
type CPUStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	NumCgoCalls   int64 `json:"num_cgo_calls"`
	// ProcessSeconds is the CPU time the process has consumed so far, user
	// plus system.
	ProcessSeconds float64 `json:"process_seconds"`
}

// ProfileStats is the observed profiler's portion of a snapshot.
type ProfileStats struct {
	Profiler string `json:"profiler"`
	Sampler  string `json:"sampler"`
	Samples  int64  `json:"samples"`
	Running  bool   `json:"running"`
}

// Stats is one self-observation snapshot.
type Stats struct {
	Pid       int           `json:"pid"`
	Timestamp string        `json:"timestamp"`
	MemStats  *MemStats     `json:"mem_stats"`
	CPUStats  *CPUStats     `json:"cpu_stats"`
	Profile   *ProfileStats `json:"profile,omitempty"`
}

// Source reports the observed profiler's state for inclusion in snapshots.
type Source interface {
	ProfileStats() ProfileStats
}

// Config controls the self-observation loop.
type Config struct {
	// Enabled turns the sniffer on; a disabled sniffer's Start is a no-op.
	Enabled bool
	// Interval between snapshots, as a duration string (e.g. "30s").
	Interval string
	// Directory receives the stats file.
	Directory string
	// MaxSize is the maximum size (in MB) of a stats file before it is rolled.
	MaxSize int64
}
