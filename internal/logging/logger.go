// Package logging provides config-driven categorized logging for the pulse console.
// Records go to a rotating file under ~/.pulse/logs when debug_mode is on; the
// interactive console owns the terminal, so nothing is written to stdout.
// CLI commands may additionally mirror warnings to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config resolution
	CategorySession Category = "session" // Token storage, login/logout, watcher
	CategoryAPI     Category = "api"     // Remote catalog API calls
	CategoryCatalog Category = "catalog" // Form and list state transitions
	CategoryUI      Category = "ui"      // Console pages and key handling
	CategoryNav     Category = "nav"     // Route resolution and guard redirects
)

// Options mirrors config.LoggingConfig so this package stays import-free of config.
type Options struct {
	DebugMode  bool
	Level      string // debug, info, warn, error
	Format     string // json, console
	File       string
	MaxSizeMB  int
	MaxBackups int
	Categories map[string]bool

	// Stderr mirrors warnings and errors to stderr regardless of DebugMode.
	Stderr bool
}

// Logger is a printf-style category logger. The zero value discards everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	opts    Options
	root    *zap.Logger
	loggers = make(map[Category]*Logger)
	closer  io.Closer
)

// Initialize builds the logging cores from opts. Safe to call again; the
// previous file handle is closed first.
func Initialize(o Options) error {
	var cores []zapcore.Core
	var fileCloser io.Closer

	level := parseLevel(o.Level)

	if o.DebugMode && o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
		maxSize := o.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 16
		}
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    maxSize,
			MaxBackups: o.MaxBackups,
			MaxAge:     7,
			Compress:   false,
		}
		fileCloser = lj

		var enc zapcore.Encoder
		if o.Format == "console" {
			enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		} else {
			enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(lj), level))
	}

	if o.Stderr {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			zapcore.WarnLevel,
		))
	}

	var core zapcore.Core
	if len(cores) > 0 {
		core = zapcore.NewTee(cores...)
	}
	install(o, core, fileCloser)

	Get(CategoryBoot).Info("logging initialized: debug=%v level=%s file=%s", o.DebugMode, level, o.File)
	return nil
}

// install swaps the active core. A nil core turns every logger into a no-op.
func install(o Options, core zapcore.Core, c io.Closer) {
	mu.Lock()
	defer mu.Unlock()

	if root != nil {
		_ = root.Sync()
	}
	if closer != nil {
		_ = closer.Close()
	}

	opts = o
	closer = c
	loggers = make(map[Category]*Logger)
	if core == nil {
		root = nil
		return
	}
	root = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func parseLevel(s string) zapcore.Level {
	if s == "warning" {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
// Stderr mirroring ignores category filters.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if opts.Stderr {
		return true
	}
	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if logging is off or the category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{category: category}
	if root != nil && categoryEnabled(category) {
		l.sugar = root.Named(string(category)).Sugar()
	}
	loggers[category] = l
	return l
}

// Enabled reports whether this logger writes anywhere.
func (l *Logger) Enabled() bool {
	return l != nil && l.sugar != nil
}

// With returns a child logger carrying structured key/value context.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if !l.Enabled() {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Enabled() {
		l.sugar.Debugf(format, args...)
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Enabled() {
		l.sugar.Infof(format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Enabled() {
		l.sugar.Warnf(format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.Enabled() {
		l.sugar.Errorf(format, args...)
	}
}

// CloseAll flushes and closes the log file (call at shutdown)
func CloseAll() {
	install(Options{}, nil, nil)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootWarn logs warning to the boot category
func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warn(format, args...)
}

// Session logs to the session category
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}

// SessionDebug logs debug to the session category
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}

// SessionWarn logs warning to the session category
func SessionWarn(format string, args ...interface{}) {
	Get(CategorySession).Warn(format, args...)
}

// SessionError logs error to the session category
func SessionError(format string, args ...interface{}) {
	Get(CategorySession).Error(format, args...)
}

// API logs to the api category
func API(format string, args ...interface{}) {
	Get(CategoryAPI).Info(format, args...)
}

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debug(format, args...)
}

// APIWarn logs warning to the api category
func APIWarn(format string, args ...interface{}) {
	Get(CategoryAPI).Warn(format, args...)
}

// APIError logs error to the api category
func APIError(format string, args ...interface{}) {
	Get(CategoryAPI).Error(format, args...)
}

// Catalog logs to the catalog category
func Catalog(format string, args ...interface{}) {
	Get(CategoryCatalog).Info(format, args...)
}

// CatalogDebug logs debug to the catalog category
func CatalogDebug(format string, args ...interface{}) {
	Get(CategoryCatalog).Debug(format, args...)
}

// CatalogError logs error to the catalog category
func CatalogError(format string, args ...interface{}) {
	Get(CategoryCatalog).Error(format, args...)
}

// UI logs to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Info(format, args...)
}

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Debug(format, args...)
}

// UIError logs error to the ui category
func UIError(format string, args ...interface{}) {
	Get(CategoryUI).Error(format, args...)
}

// Nav logs to the nav category
func Nav(format string, args ...interface{}) {
	Get(CategoryNav).Info(format, args...)
}

// NavDebug logs debug to the nav category
func NavDebug(format string, args ...interface{}) {
	Get(CategoryNav).Debug(format, args...)
}
