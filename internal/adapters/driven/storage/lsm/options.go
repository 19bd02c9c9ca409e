package lsm

import "github.com/custodia-labs/lsmkv/internal/core/domain"

// Options tunes a Store. Zero fields take their default.
type Options struct {
	// FlushThreshold is the memtable size above which it is flushed.
	FlushThreshold int

	// CompactionTrigger is the number of flushes after which compaction runs.
	CompactionTrigger int

	// CompactionSizeLimit is the record count above which a table is not merged.
	CompactionSizeLimit int

	// CompactionRate caps records per second written by compaction.
	// 0 means unlimited.
	CompactionRate int

	// FalsePositiveRate is the target rate of the per-table Bloom filters.
	FalsePositiveRate float64

	// SyncWrites fsyncs the commit log after every write.
	SyncWrites bool

	// OpenFiles bounds the number of data files kept open for reads.
	OpenFiles int
}

// DefaultOptions returns the options used for zero fields.
func DefaultOptions() Options {
	return Options{
		FlushThreshold:      1000,
		CompactionTrigger:   5,
		CompactionSizeLimit: 10000,
		FalsePositiveRate:   0.01,
		OpenFiles:           64,
	}
}

// OptionsFromSettings maps engine settings to store options.
func OptionsFromSettings(s domain.EngineSettings) Options {
	return Options{
		FlushThreshold:      s.Memtable.FlushThreshold,
		CompactionTrigger:   s.Compaction.Trigger,
		CompactionSizeLimit: s.Compaction.SizeLimit,
		CompactionRate:      s.Compaction.RateLimit,
		FalsePositiveRate:   s.Bloom.FalsePositiveRate,
		SyncWrites:          s.CommitLog.Sync,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FlushThreshold <= 0 {
		o.FlushThreshold = d.FlushThreshold
	}
	if o.CompactionTrigger <= 0 {
		o.CompactionTrigger = d.CompactionTrigger
	}
	if o.CompactionSizeLimit <= 0 {
		o.CompactionSizeLimit = d.CompactionSizeLimit
	}
	if o.CompactionRate < 0 {
		o.CompactionRate = 0
	}
	if o.FalsePositiveRate <= 0 || o.FalsePositiveRate >= 1 {
		o.FalsePositiveRate = d.FalsePositiveRate
	}
	if o.OpenFiles <= 0 {
		o.OpenFiles = d.OpenFiles
	}
	return o
}
