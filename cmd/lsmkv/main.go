// Command lsmkv is a command line front end for the lsmkv storage engine.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lsmkv/internal/adapters/driven/cache"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/codec"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/bbolt"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/btree"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/lsm"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/cli"
	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
	"github.com/custodia-labs/lsmkv/internal/core/services"
	"github.com/custodia-labs/lsmkv/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	code, err := run()
	if err != nil {
		logger.Error("%v", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	configDir, err := file.DefaultDir()
	if err != nil {
		return 1, err
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return 1, fmt.Errorf("failed to load config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, resets, err := settingsService.Effective()
	if err != nil {
		return 1, err
	}
	for _, r := range resets {
		logger.Warn("invalid setting %s", r)
	}

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	store, err := openStore(dataDir, settings)
	if err != nil {
		return 1, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store: %v", err)
		}
	}()

	taskStore, err := sqlite.NewStore(dataDir)
	if err != nil {
		return 1, err
	}
	defer func() {
		if err := taskStore.Close(); err != nil {
			logger.Error("closing scheduler store: %v", err)
		}
	}()

	storeService := services.NewStoreService(store)
	scheduler := services.NewScheduler(settings.Scheduler, taskStore.SchedulerStore(), storeService)

	cli.SetVersion(version)
	cli.SetStoreService(storeService)
	cli.SetSettingsService(settingsService)
	cli.SetScheduler(scheduler)

	if err := cli.Execute(); err != nil {
		// cobra has already printed the error.
		return 1, nil
	}
	return 0, nil
}

// openStore opens the configured backend, wrapped in a read cache when enabled.
func openStore(dataDir string, settings *domain.EngineSettings) (driven.DataStore[string, string], error) {
	var store driven.DataStore[string, string]

	switch settings.Storage.Backend {
	case domain.BackendLSM:
		s, err := lsm.Open[string, string](
			dataDir, codec.String{}, codec.String{}, lsm.OptionsFromSettings(*settings))
		if err != nil {
			return nil, fmt.Errorf("failed to open LSM store: %w", err)
		}
		store = s
	case domain.BackendBTree:
		store = btree.NewStore[string, string]()
	case domain.BackendBolt:
		s, err := bbolt.Open(filepath.Join(dataDir, bbolt.FileName))
		if err != nil {
			return nil, fmt.Errorf("failed to open bbolt store: %w", err)
		}
		store = s
	default:
		return nil, errors.New("unknown backend: " + settings.Storage.Backend.String())
	}

	if settings.Cache.Enabled && settings.Cache.MaxBytes > 0 {
		store = cache.New(store, settings.Cache.MaxBytes)
	}
	return store, nil
}
