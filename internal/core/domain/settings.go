package domain

const unknownDescription = "Unknown"

// Backend identifies a storage implementation.
type Backend string

// Available backends.
const (
	// BackendLSM is the log-structured merge tree (commit log, memtable, SSTables).
	BackendLSM Backend = "lsm"

	// BackendBTree is the in-memory B-tree. Data does not survive the process.
	BackendBTree Backend = "btree"

	// BackendBolt is a single-file bbolt database.
	BackendBolt Backend = "bbolt"
)

// IsValid returns true if the backend is recognised.
func (b Backend) IsValid() bool {
	switch b {
	case BackendLSM, BackendBTree, BackendBolt:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if data written through the backend survives a restart.
func (b Backend) IsPersistent() bool {
	return b == BackendLSM || b == BackendBolt
}

// String returns the string representation.
func (b Backend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b Backend) Description() string {
	switch b {
	case BackendLSM:
		return "LSM tree (commit log + SSTables)"
	case BackendBTree:
		return "B-tree (in memory)"
	case BackendBolt:
		return "bbolt (single file B+tree)"
	default:
		return unknownDescription
	}
}

// AllBackends returns every supported backend.
func AllBackends() []Backend {
	return []Backend{BackendLSM, BackendBTree, BackendBolt}
}

// StorageSettings selects the backend and where it keeps its files.
type StorageSettings struct {
	Backend Backend

	// DataDir holds commit log, SSTables and the bbolt file.
	// Empty means ~/.lsmkv/data.
	DataDir string
}

// MemtableSettings configures the in-memory write buffer.
type MemtableSettings struct {
	// FlushThreshold is the entry count above which the memtable
	// is written out as an SSTable.
	FlushThreshold int
}

// CommitLogSettings configures the write-ahead commit log.
type CommitLogSettings struct {
	// Sync fsyncs the log after every append.
	Sync bool
}

// CompactionSettings configures SSTable compaction.
type CompactionSettings struct {
	// Trigger is the number of flushes after which compaction runs inline.
	Trigger int

	// SizeLimit is the record count above which a table is no longer merged.
	SizeLimit int

	// RateLimit caps records written per second during compaction. 0 disables it.
	RateLimit int
}

// BloomSettings configures the per-table Bloom filters.
type BloomSettings struct {
	FalsePositiveRate float64
}

// CacheSettings configures the read cache in front of the store.
type CacheSettings struct {
	Enabled  bool
	MaxBytes int
}

// EngineSettings holds every storage engine tunable.
type EngineSettings struct {
	Storage    StorageSettings
	Memtable   MemtableSettings
	CommitLog  CommitLogSettings
	Compaction CompactionSettings
	Bloom      BloomSettings
	Cache      CacheSettings
	Scheduler  SchedulerConfig
}

// DefaultEngineSettings returns sensible defaults.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		Storage: StorageSettings{
			Backend: BackendLSM,
		},
		Memtable: MemtableSettings{
			FlushThreshold: 1000,
		},
		CommitLog: CommitLogSettings{
			Sync: false,
		},
		Compaction: CompactionSettings{
			Trigger:   5,
			SizeLimit: 10000,
			RateLimit: 0,
		},
		Bloom: BloomSettings{
			FalsePositiveRate: 0.01,
		},
		Cache: CacheSettings{
			Enabled:  true,
			MaxBytes: 32 << 20,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}
