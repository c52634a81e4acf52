// Package logging provides config-driven categorized logging for cognerd on top of zap.
// In debug mode logs are written to .cognerd/logs/ with one file per category.
// Outside debug mode every category is a no-op unless a zap logger is attached.
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryMemory  Category = "memory"  // Control loop: new, novel and derived tasks
	CategoryBag     Category = "bag"     // Admission, eviction, overflow
	CategoryConcept Category = "concept" // Direct processing, link building, firing
	CategoryRules   Category = "rules"   // Mangle rule evaluation
	CategoryEngine  Category = "engine"  // Cycle driver
	CategoryStore   Category = "store"   // SQLite run history
	CategoryInput   Category = "input"   // Task documents and file watching
	CategoryMetrics Category = "metrics" // Prometheus exporter
)

// AllCategories lists every category in a stable order.
var AllCategories = []Category{
	CategoryBoot, CategoryMemory, CategoryBag, CategoryConcept, CategoryRules,
	CategoryEngine, CategoryStore, CategoryInput, CategoryMetrics,
}

// Settings mirrors config.LoggingConfig to avoid an import cycle.
type Settings struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

type configFile struct {
	Logging Settings `yaml:"logging"`
}

// Logger is a category-scoped printf-style logger. The zero value is a no-op.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex

	settings   Settings
	settingsMu sync.RWMutex
	logsDir    string
	level      = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	// attached, when set, receives every category as a named child logger.
	attached *zap.Logger
)

// Initialize reads the logging section of <workspace>/.cognerd/config.yaml and,
// in debug mode, prepares the logs directory.
func Initialize(workspace string) error {
	if workspace == "" {
		return errors.New("workspace path required")
	}
	s, err := readSettings(filepath.Join(workspace, ".cognerd", "config.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		s = Settings{}
	}
	return Configure(s, filepath.Join(workspace, ".cognerd", "logs"))
}

// Configure applies settings directly. dir is where per-category files go
// when debug mode is on.
func Configure(s Settings, dir string) error {
	CloseAll()

	settingsMu.Lock()
	settings = s
	logsDir = dir
	settingsMu.Unlock()
	level.SetLevel(parseLevel(s.Level))

	if !s.DebugMode {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== cognerd logging initialized ===")
	boot.Info("Logs directory: %s", dir)
	boot.Info("Log level: %s", level.Level())
	if len(s.Categories) == 0 {
		boot.Info("All categories enabled (no category filter)")
	}
	return nil
}

// Attach routes every enabled category through z instead of per-category
// files. Passing nil detaches.
func Attach(z *zap.Logger) {
	CloseAll()
	settingsMu.Lock()
	attached = z
	settingsMu.Unlock()
}

func readSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cf.Logging, nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether file logging is enabled
func IsDebugMode() bool {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings.DebugMode
}

// IsCategoryEnabled returns whether a specific category produces output
func IsCategoryEnabled(category Category) bool {
	settingsMu.RLock()
	defer settingsMu.RUnlock()

	if !settings.DebugMode && attached == nil {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category.
// Disabled categories get a no-op logger.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	settingsMu.RLock()
	z, dir, jsonFormat := attached, logsDir, settings.JSONFormat
	settingsMu.RUnlock()

	l := &Logger{category: category}
	if z != nil {
		l.sugar = z.Named(string(category)).Sugar()
		loggers[category] = l
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return l
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if jsonFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(file), level)
	l.sugar = zap.New(core).Named(string(category)).Sugar()
	l.file = file
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a logger that adds key-value context to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Enabled reports whether messages at lvl would be written. Use it to guard
// expensive argument construction on hot paths.
func (l *Logger) Enabled(lvl zapcore.Level) bool {
	return l.sugar != nil && level.Enabled(lvl)
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// MemoryLog logs to the memory category
func MemoryLog(format string, args ...interface{}) { Get(CategoryMemory).Info(format, args...) }

// MemoryDebug logs debug to the memory category
func MemoryDebug(format string, args ...interface{}) { Get(CategoryMemory).Debug(format, args...) }

// BagDebug logs debug to the bag category
func BagDebug(format string, args ...interface{}) { Get(CategoryBag).Debug(format, args...) }

// ConceptDebug logs debug to the concept category
func ConceptDebug(format string, args ...interface{}) { Get(CategoryConcept).Debug(format, args...) }

// Rules logs to the rules category
func Rules(format string, args ...interface{}) { Get(CategoryRules).Info(format, args...) }

// RulesDebug logs debug to the rules category
func RulesDebug(format string, args ...interface{}) { Get(CategoryRules).Debug(format, args...) }

// RulesError logs error to the rules category
func RulesError(format string, args ...interface{}) { Get(CategoryRules).Error(format, args...) }

// Engine logs to the engine category
func Engine(format string, args ...interface{}) { Get(CategoryEngine).Info(format, args...) }

// EngineDebug logs debug to the engine category
func EngineDebug(format string, args ...interface{}) { Get(CategoryEngine).Debug(format, args...) }

// Store logs to the store category
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

// StoreError logs error to the store category
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }

// Input logs to the input category
func Input(format string, args ...interface{}) { Get(CategoryInput).Info(format, args...) }

// InputWarn logs warning to the input category
func InputWarn(format string, args ...interface{}) { Get(CategoryInput).Warn(format, args...) }

// Metrics logs to the metrics category
func Metrics(format string, args ...interface{}) { Get(CategoryMetrics).Info(format, args...) }

// =============================================================================
// RUN SCOPE - Correlate entries from one engine run
// =============================================================================

// WithRunID returns a category logger tagged with a run id.
func WithRunID(category Category, runID string) *Logger {
	return Get(category).With("run", runID)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
