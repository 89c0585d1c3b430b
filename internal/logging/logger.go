package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Constants for configuration
const (
	// DefaultMaxAge is the default retention period for log files (3 days)
	DefaultMaxAge = 3 * 24 * time.Hour

	// DirPermissions for log directory (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions for log files (rw-r--r--)
	FilePermissions = 0644

	// MaxValueLength is the maximum length of a string attribute value
	MaxValueLength = 1000

	// FilePrefix names the log files: itermlink.YYYY-MM-DD.log
	FilePrefix = "itermlink"

	redacted = "[REDACTED]"
)

// SensitiveKeys are attribute key fragments whose values never reach the
// logs. Matching is case-insensitive.
var SensitiveKeys = []string{
	"password", "passwd",
	"token", "access_token", "refresh_token", "auth_token",
	"secret", "client_secret",
	"api_key", "apikey", "api-key",
	"authorization",
	"credential", "credentials",
	"private_key", "privatekey",
	"cookie", "cookies",
	"iterm2_key", "x-iterm2-key", "auth_key",
}

// ValidLogLevels defines accepted log levels
var ValidLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var (
	defaultLogger *slog.Logger
	fileHandler   *RotatingFileHandler
	loggerMu      sync.RWMutex
	currentConfig Config
	configMu      sync.RWMutex
)

// Config holds logger configuration
type Config struct {
	LogDir     string        // Directory for log files
	MaxAge     time.Duration // Maximum age of log files before cleanup
	JSONOutput bool          // Use JSON output format
	Level      string        // Minimum level written; see ValidLogLevels
	Debug      bool          // Also write to stderr, at debug level
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		LogDir:     filepath.Join(homeDir, ".itermlink", "logs"),
		MaxAge:     DefaultMaxAge,
		JSONOutput: false,
		Level:      "info",
	}
}

// GetConfig returns the current logger configuration
func GetConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return currentConfig
}

// IsDebug returns whether the logger also writes to stderr
func IsDebug() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return currentConfig.Debug
}

// RotatingFileHandler handles log rotation by date
type RotatingFileHandler struct {
	dir            string
	prefix         string
	maxAge         time.Duration
	currentFile    *os.File
	currentDate    string
	mu             sync.Mutex
	cleanupRunning atomic.Bool // Prevents concurrent cleanup runs
}

// NewRotatingFileHandler creates a new rotating file handler
func NewRotatingFileHandler(dir, prefix string, maxAge time.Duration) (*RotatingFileHandler, error) {
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return nil, err
	}

	h := &RotatingFileHandler{
		dir:    dir,
		prefix: prefix,
		maxAge: maxAge,
	}

	if err := h.rotate(); err != nil {
		return nil, err
	}

	return h, nil
}

// Write implements io.Writer
func (h *RotatingFileHandler) Write(p []byte) (n int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	if today != h.currentDate {
		if err := h.rotate(); err != nil {
			return 0, err
		}
		// Run cleanup asynchronously with debounce (only if not already running)
		if h.cleanupRunning.CompareAndSwap(false, true) {
			go func() {
				defer h.cleanupRunning.Store(false)
				h.cleanup()
			}()
		}
	}

	return h.currentFile.Write(p)
}

// rotate closes current file and opens new one for today
func (h *RotatingFileHandler) rotate() error {
	if h.currentFile != nil {
		h.currentFile.Close()
	}

	today := time.Now().Format("2006-01-02")
	filename := filepath.Join(h.dir, h.prefix+"."+today+".log")

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, FilePermissions)
	if err != nil {
		return err
	}

	h.currentFile = file
	h.currentDate = today

	h.updateSymlink(filename)

	return nil
}

// updateSymlink points prefix.log at the current log file
func (h *RotatingFileHandler) updateSymlink(targetFile string) {
	symlinkPath := filepath.Join(h.dir, h.prefix+".log")

	if err := os.Remove(symlinkPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove old symlink", "path", symlinkPath, "error", err)
	}

	if err := os.Symlink(targetFile, symlinkPath); err != nil {
		slog.Warn("Failed to create symlink", "path", symlinkPath, "target", targetFile, "error", err)
	}
}

// cleanup removes log files older than maxAge
func (h *RotatingFileHandler) cleanup() {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		slog.Warn("Failed to read log directory for cleanup", "dir", h.dir, "error", err)
		return
	}

	cutoff := time.Now().Add(-h.maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !isLogFile(name, h.prefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			filePath := filepath.Join(h.dir, name)
			if err := os.Remove(filePath); err != nil {
				slog.Warn("Failed to remove old log file", "path", filePath, "error", err)
			}
		}
	}
}

// isLogFile checks if a filename matches the log pattern
func isLogFile(name, prefix string) bool {
	// Pattern: prefix.YYYY-MM-DD.log (e.g., "app.2024-01-23.log")
	// Minimum length: prefix + "." + "YYYY-MM-DD" + ".log" = prefix + 15 chars
	expectedLen := len(prefix) + 15
	if len(name) < expectedLen {
		return false
	}

	if !strings.HasPrefix(name, prefix+".") {
		return false
	}

	if !strings.HasSuffix(name, ".log") {
		return false
	}

	// Not the symlink, which is just "prefix.log"
	return len(name) > len(prefix)+5
}

// Close closes the file handler
func (h *RotatingFileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.currentFile != nil {
		return h.currentFile.Close()
	}
	return nil
}

// MultiWriter writes to multiple io.Writers
type MultiWriter struct {
	writers []io.Writer
}

// NewMultiWriter creates a new multi-writer
func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (mw *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range mw.writers {
		n, err = w.Write(p)
		if err != nil {
			return
		}
	}
	return len(p), nil
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	var writers []io.Writer

	fh, err := NewRotatingFileHandler(cfg.LogDir, FilePrefix, cfg.MaxAge)
	if err != nil {
		return err
	}
	writers = append(writers, fh)

	// stdout belongs to command output
	if cfg.Debug {
		writers = append(writers, os.Stderr)
	}

	initWithWriter(cfg, NewMultiWriter(writers...))

	loggerMu.Lock()
	if fileHandler != nil {
		fileHandler.Close()
	}
	fileHandler = fh
	loggerMu.Unlock()
	return nil
}

// InitWriter initializes the global logger to write to w only.
func InitWriter(cfg Config, w io.Writer) {
	initWithWriter(cfg, w)
}

func initWithWriter(cfg Config, w io.Writer) {
	configMu.Lock()
	currentConfig = cfg
	configMu.Unlock()

	level := ParseLevel(cfg.Level)
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Format time as ISO8601
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
				}
				return a
			}
			return Redact(a)
		},
	}

	var handler slog.Handler
	if cfg.JSONOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	loggerMu.Lock()
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	loggerMu.Unlock()
}

// InitDefault initializes the logger with default configuration
func InitDefault() error {
	return Init(DefaultConfig())
}

// Shutdown closes the log file opened by Init.
func Shutdown() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if fileHandler == nil {
		return nil
	}
	err := fileHandler.Close()
	fileHandler = nil
	return err
}

// Logger returns the default logger
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with additional attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// IsSensitive reports whether an attribute called key must be redacted.
func IsSensitive(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitiveKey := range SensitiveKeys {
		if strings.Contains(lowerKey, sensitiveKey) {
			return true
		}
	}
	return false
}

// Redact masks the value of a sensitive attribute and truncates long
// string values. Other attributes pass through unchanged.
func Redact(a slog.Attr) slog.Attr {
	if IsSensitive(a.Key) {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); len(s) > MaxValueLength {
			return slog.String(a.Key, s[:MaxValueLength]+"...[truncated]")
		}
	}
	return a
}

// ParseLevel validates and normalizes a log level name. Unknown names
// are info.
func ParseLevel(level string) slog.Level {
	normalizedLevel := strings.ToLower(strings.TrimSpace(level))
	if l, ok := ValidLogLevels[normalizedLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// MaskPath masks sensitive parts of file paths for logging
func MaskPath(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	// Replace home directory with ~
	if homeDir != "" && strings.HasPrefix(path, homeDir) {
		return "~" + path[len(homeDir):]
	}

	return path
}
