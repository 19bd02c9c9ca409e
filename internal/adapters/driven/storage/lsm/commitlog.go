package lsm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lsmkv/internal/logger"
)

const commitLogFile = "commit.log"

// logFile is the part of *os.File the commit log writes through.
type logFile interface {
	io.StringWriter
	Truncate(size int64) error
	Sync() error
	Close() error
}

// CommitLog is the write-ahead log for the memtable.
// Every accepted write is appended before it reaches the memtable, so a
// crash between flushes loses nothing that was acknowledged.
type CommitLog struct {
	path   string
	file   logFile
	sync   bool
	size   int
	offset int64 // length of the complete records
	log    logger.Scope
}

// OpenCommitLog opens or creates the commit log in dir.
// A torn final line left by an interrupted append is cut off.
func OpenCommitLog(dir string, sync bool) (*CommitLog, error) {
	path := filepath.Join(dir, commitLogFile)
	l := &CommitLog{path: path, sync: sync, log: logger.For("commitlog")}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read commit log: %w", err)
	}
	complete := bytes.LastIndexByte(data, '\n') + 1
	if complete < len(data) {
		l.log.Warn("dropping torn record (%d bytes) at end of %s", len(data)-complete, path)
		if err := os.Truncate(path, int64(complete)); err != nil {
			return nil, fmt.Errorf("truncate commit log: %w", err)
		}
	}
	l.size = bytes.Count(data[:complete], []byte{'\n'})
	l.offset = int64(complete)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open commit log: %w", err)
	}
	l.file = file
	return l, nil
}

// Append writes one record to the end of the log. A failed append is rolled
// back so the next one starts on a line boundary.
func (l *CommitLog) Append(e rawEntry) error {
	n, err := l.file.WriteString(formatLine(e))
	if err != nil {
		return l.rollback(fmt.Errorf("append to commit log: %w", err))
	}
	if l.sync {
		if err := l.file.Sync(); err != nil {
			return l.rollback(fmt.Errorf("sync commit log: %w", err))
		}
	}
	l.offset += int64(n)
	l.size++
	return nil
}

func (l *CommitLog) rollback(cause error) error {
	if err := l.file.Truncate(l.offset); err != nil {
		return errors.Join(cause, fmt.Errorf("roll back commit log: %w", err))
	}
	return cause
}

// Replay returns every record in the log in append order.
func (l *CommitLog) Replay() ([]rawEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read commit log: %w", err)
	}

	entries := make([]rawEntry, 0, l.size)
	for lineNo := 1; len(data) > 0; lineNo++ {
		end := bytes.IndexByte(data, '\n')
		if end < 0 {
			l.log.Warn("ignoring torn record at line %d", lineNo)
			break
		}
		e, err := parseLine(string(data[:end]))
		if err != nil {
			return nil, fmt.Errorf("commit log line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
		data = data[end+1:]
	}
	return entries, nil
}

// Clear discards every record. Called once the memtable is on disk.
func (l *CommitLog) Clear() error {
	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate commit log: %w", err)
	}
	if l.sync {
		if err := l.file.Sync(); err != nil {
			return fmt.Errorf("sync commit log: %w", err)
		}
	}
	l.size = 0
	l.offset = 0
	return nil
}

// Size returns the number of records in the log.
func (l *CommitLog) Size() int {
	return l.size
}

// Close closes the underlying file.
func (l *CommitLog) Close() error {
	return l.file.Close()
}
