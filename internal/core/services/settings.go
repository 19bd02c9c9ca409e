package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyBackend            = "storage.backend"
	KeyDataDir            = "storage.data_dir"
	KeyFlushThreshold     = "memtable.flush_threshold"
	KeyCommitLogSync      = "commitlog.sync"
	KeyCompactionTrigger  = "compaction.trigger"
	KeyCompactionLimit    = "compaction.size_limit"
	KeyCompactionRate     = "compaction.rate_limit"
	KeyFalsePositiveRate  = "bloom.false_positive_rate"
	KeyCacheEnabled       = "cache.enabled"
	KeyCacheMaxBytes      = "cache.max_bytes"
	KeySchedulerEnabled   = "scheduler.enabled"
	KeyCompactionInterval = "scheduler.compaction_interval"
	KeyFlushInterval      = "scheduler.flush_interval"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
	kindFloat
	kindDuration
	kindBackend
)

// setting binds a config key to a field of EngineSettings.
type setting struct {
	kind settingKind
	get  func(*domain.EngineSettings) any
	set  func(*domain.EngineSettings, any)
}

var settings = map[string]setting{
	KeyBackend: {kindBackend,
		func(s *domain.EngineSettings) any { return s.Storage.Backend },
		func(s *domain.EngineSettings, v any) { s.Storage.Backend = v.(domain.Backend) }},
	KeyDataDir: {kindString,
		func(s *domain.EngineSettings) any { return s.Storage.DataDir },
		func(s *domain.EngineSettings, v any) { s.Storage.DataDir = v.(string) }},
	KeyFlushThreshold: {kindInt,
		func(s *domain.EngineSettings) any { return s.Memtable.FlushThreshold },
		func(s *domain.EngineSettings, v any) { s.Memtable.FlushThreshold = v.(int) }},
	KeyCommitLogSync: {kindBool,
		func(s *domain.EngineSettings) any { return s.CommitLog.Sync },
		func(s *domain.EngineSettings, v any) { s.CommitLog.Sync = v.(bool) }},
	KeyCompactionTrigger: {kindInt,
		func(s *domain.EngineSettings) any { return s.Compaction.Trigger },
		func(s *domain.EngineSettings, v any) { s.Compaction.Trigger = v.(int) }},
	KeyCompactionLimit: {kindInt,
		func(s *domain.EngineSettings) any { return s.Compaction.SizeLimit },
		func(s *domain.EngineSettings, v any) { s.Compaction.SizeLimit = v.(int) }},
	KeyCompactionRate: {kindInt,
		func(s *domain.EngineSettings) any { return s.Compaction.RateLimit },
		func(s *domain.EngineSettings, v any) { s.Compaction.RateLimit = v.(int) }},
	KeyFalsePositiveRate: {kindFloat,
		func(s *domain.EngineSettings) any { return s.Bloom.FalsePositiveRate },
		func(s *domain.EngineSettings, v any) { s.Bloom.FalsePositiveRate = v.(float64) }},
	KeyCacheEnabled: {kindBool,
		func(s *domain.EngineSettings) any { return s.Cache.Enabled },
		func(s *domain.EngineSettings, v any) { s.Cache.Enabled = v.(bool) }},
	KeyCacheMaxBytes: {kindInt,
		func(s *domain.EngineSettings) any { return s.Cache.MaxBytes },
		func(s *domain.EngineSettings, v any) { s.Cache.MaxBytes = v.(int) }},
	KeySchedulerEnabled: {kindBool,
		func(s *domain.EngineSettings) any { return s.Scheduler.Enabled },
		func(s *domain.EngineSettings, v any) { s.Scheduler.Enabled = v.(bool) }},
	KeyCompactionInterval: {kindDuration,
		func(s *domain.EngineSettings) any { return s.Scheduler.GetTaskConfig(domain.TaskIDCompaction).Interval },
		func(s *domain.EngineSettings, v any) { setTaskInterval(s, domain.TaskIDCompaction, v.(time.Duration)) }},
	KeyFlushInterval: {kindDuration,
		func(s *domain.EngineSettings) any { return s.Scheduler.GetTaskConfig(domain.TaskIDMemtableFlush).Interval },
		func(s *domain.EngineSettings, v any) { setTaskInterval(s, domain.TaskIDMemtableFlush, v.(time.Duration)) }},
}

func setTaskInterval(s *domain.EngineSettings, taskID string, d time.Duration) {
	if s.Scheduler.TaskConfigs == nil {
		s.Scheduler.TaskConfigs = make(map[string]domain.TaskConfig)
	}
	cfg := s.Scheduler.TaskConfigs[taskID]
	cfg.Interval = d
	// A zero interval switches the task off.
	cfg.Enabled = d > 0
	s.Scheduler.TaskConfigs[taskID] = cfg
}

// SettingsService manages engine settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the effective settings: stored values over defaults.
// Stored values of the wrong type are ignored.
func (s *SettingsService) Get() (*domain.EngineSettings, error) {
	settingsOut := domain.DefaultEngineSettings()
	for key, def := range settings {
		if v, ok := s.stored(key, def.kind); ok {
			def.set(&settingsOut, v)
		}
	}
	return &settingsOut, nil
}

// stored reads key from the config store as the Go type of kind.
func (s *SettingsService) stored(key string, kind settingKind) (any, bool) {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return nil, false
	}

	switch kind {
	case kindString:
		v, ok := raw.(string)
		return v, ok
	case kindInt:
		switch raw.(type) {
		case int, int64:
			return s.configStore.GetInt(key), true
		}
		return nil, false
	case kindBool:
		v, ok := raw.(bool)
		return v, ok
	case kindFloat:
		switch raw.(type) {
		case float64, int, int64:
			return s.configStore.GetFloat(key), true
		}
		return nil, false
	case kindDuration:
		str, ok := raw.(string)
		if !ok {
			return nil, false
		}
		d, err := time.ParseDuration(str)
		if err != nil {
			return nil, false
		}
		return d, true
	case kindBackend:
		str, ok := raw.(string)
		if !ok || !domain.Backend(str).IsValid() {
			return nil, false
		}
		return domain.Backend(str), true
	}
	return nil, false
}

// Save persists every setting.
func (s *SettingsService) Save(settingsIn *domain.EngineSettings) error {
	if settingsIn == nil {
		return domain.ErrInvalidInput
	}
	if err := validateSettings(settingsIn); err != nil {
		return err
	}
	for _, key := range s.Keys() {
		if err := s.configStore.Set(key, storedValue(settings[key].get(settingsIn))); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	return nil
}

// Set parses raw according to the type of key, validates the result and
// persists it.
func (s *SettingsService) Set(key, raw string) error {
	def, ok := settings[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	value, err := parseSetting(def.kind, strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %v: %w", key, err, domain.ErrInvalidInput)
	}

	current, err := s.Get()
	if err != nil {
		return err
	}
	def.set(current, value)
	if err := validateSettings(current); err != nil {
		return err
	}
	return s.configStore.Set(key, storedValue(value))
}

// Lookup returns the effective value of key.
func (s *SettingsService) Lookup(key string) (string, error) {
	def, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	current, err := s.Get()
	if err != nil {
		return "", err
	}
	return formatSetting(def.get(current)), nil
}

// Keys returns every supported key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	current, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(current)
}

// Effective returns the current settings with every invalid value replaced
// by its default. resets describes each replaced key.
func (s *SettingsService) Effective() (*domain.EngineSettings, []string, error) {
	current, err := s.Get()
	if err != nil {
		return nil, nil, err
	}
	defaults := domain.DefaultEngineSettings()

	problems := settingProblems(current)
	resets := make([]string, 0, len(problems))
	for _, p := range problems {
		def := settings[p.key]
		def.set(current, def.get(&defaults))
		resets = append(resets, fmt.Sprintf("%s: %s, using %s", p.key, p.msg, formatSetting(def.get(current))))
	}
	return current, resets, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.EngineSettings {
	return domain.DefaultEngineSettings()
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func parseSetting(kind settingKind, raw string) (any, error) {
	switch kind {
	case kindString:
		return raw, nil
	case kindInt:
		return strconv.Atoi(raw)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindDuration:
		return time.ParseDuration(raw)
	case kindBackend:
		b := domain.Backend(strings.ToLower(raw))
		if !b.IsValid() {
			return nil, fmt.Errorf("unknown backend %q", raw)
		}
		return b, nil
	}
	return nil, errors.New("unsupported setting type")
}

// storedValue converts a setting to the type written to the config file.
func storedValue(v any) any {
	switch x := v.(type) {
	case time.Duration:
		return x.String()
	case domain.Backend:
		return string(x)
	default:
		return v
	}
}

func formatSetting(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(storedValue(v))
	}
}

// settingProblem is one invalid setting.
type settingProblem struct {
	key string
	msg string
}

func settingProblems(s *domain.EngineSettings) []settingProblem {
	var problems []settingProblem
	add := func(key, msg string) {
		problems = append(problems, settingProblem{key: key, msg: msg})
	}

	if !s.Storage.Backend.IsValid() {
		add(KeyBackend, fmt.Sprintf("unknown backend %q", s.Storage.Backend))
	}
	if s.Memtable.FlushThreshold < 1 {
		add(KeyFlushThreshold, "must be at least 1")
	}
	if s.Compaction.Trigger < 1 {
		add(KeyCompactionTrigger, "must be at least 1")
	}
	if s.Compaction.SizeLimit < 1 {
		add(KeyCompactionLimit, "must be at least 1")
	}
	if s.Compaction.RateLimit < 0 {
		add(KeyCompactionRate, "must not be negative")
	}
	if p := s.Bloom.FalsePositiveRate; p <= 0 || p >= 1 {
		add(KeyFalsePositiveRate, "must be between 0 and 1")
	}
	if s.Cache.MaxBytes < 0 {
		add(KeyCacheMaxBytes, "must not be negative")
	}
	if s.Scheduler.GetTaskConfig(domain.TaskIDCompaction).Interval < 0 {
		add(KeyCompactionInterval, "must not be negative")
	}
	if s.Scheduler.GetTaskConfig(domain.TaskIDMemtableFlush).Interval < 0 {
		add(KeyFlushInterval, "must not be negative")
	}
	return problems
}

func validateSettings(s *domain.EngineSettings) error {
	problems := settingProblems(s)
	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.key + ": " + p.msg
	}
	return fmt.Errorf("invalid settings: %s: %w", strings.Join(msgs, "; "), domain.ErrInvalidInput)
}
