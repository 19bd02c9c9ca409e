package domain

// TableInfo describes one immutable SSTable on disk.
type TableInfo struct {
	// Name is the file stem shared by the .data, .index and .filter files.
	Name string `json:"name"`

	// Records is the number of keys (including tombstones) in the table.
	Records int `json:"records"`
}

// StoreStats is a point-in-time view of a store.
type StoreStats struct {
	// Backend names the storage implementation.
	Backend Backend `json:"backend"`

	// Keys is the number of live keys, when the backend can count them
	// cheaply. LSM stores report -1.
	Keys int `json:"keys"`

	// MemtableSize is the number of entries buffered in memory.
	MemtableSize int `json:"memtable_size"`

	// CommitLogEntries is the number of records awaiting a flush.
	CommitLogEntries int `json:"commit_log_entries"`

	// Tables lists SSTables from oldest to newest.
	Tables []TableInfo `json:"tables,omitempty"`

	// FlushesSinceCompaction counts tables written since the last compaction.
	FlushesSinceCompaction int `json:"flushes_since_compaction"`

	// CacheHits and CacheMisses are filled in by the read cache.
	CacheHits   uint64 `json:"cache_hits,omitempty"`
	CacheMisses uint64 `json:"cache_misses,omitempty"`
}

// TableRecords sums the record counts of all tables.
func (s StoreStats) TableRecords() int {
	total := 0
	for _, t := range s.Tables {
		total += t.Records
	}
	return total
}
