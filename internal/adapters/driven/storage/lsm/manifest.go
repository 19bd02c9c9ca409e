package lsm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

const (
	manifestFile    = "MANIFEST.toml"
	manifestVersion = 1
)

// manifest lists the live tables of a store from oldest to newest.
type manifest struct {
	Version int      `toml:"version"`
	Tables  []string `toml:"tables"`
}

// loadManifest reads the manifest in dir. When there is none, tables are
// discovered from index files in modification order.
func loadManifest(dir string) (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if os.IsNotExist(err) {
		return discoverTables(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %v: %w", err, domain.ErrCorrupted)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("manifest version %d: %w", m.Version, domain.ErrNotSupported)
	}
	return &m, nil
}

func discoverTables(dir string) (*manifest, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+indexExt))
	if err != nil {
		return nil, fmt.Errorf("discover tables: %w", err)
	}

	type found struct {
		name    string
		modTime int64
	}
	tables := make([]found, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("discover tables: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(p), indexExt)
		tables = append(tables, found{name: name, modTime: info.ModTime().UnixNano()})
	}
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].modTime != tables[j].modTime {
			return tables[i].modTime < tables[j].modTime
		}
		return tables[i].name < tables[j].name
	})

	m := &manifest{Version: manifestVersion, Tables: make([]string, 0, len(tables))}
	for _, t := range tables {
		m.Tables = append(m.Tables, t.name)
	}
	return m, nil
}

func (m *manifest) save(dir string) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, manifestFile), data)
}
