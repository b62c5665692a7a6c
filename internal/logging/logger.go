package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// Logger is nil until Init; the helpers below are no-ops until then.
	Logger *log.Logger

	logFile *os.File
)

// Options select where and how verbosely to log.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Path is an explicit log file. It wins over Dir.
	Path string

	// Dir receives one watchfloor-YYYY-MM-DD.log file per day.
	// With neither Path nor Dir set, logs go to stderr.
	Dir string
}

// Init replaces the package logger according to opts.
func Init(opts Options) error {
	level := log.InfoLevel
	if opts.Level != "" {
		l, err := log.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	var w io.Writer = os.Stderr
	path := opts.Path
	if path == "" && opts.Dir != "" {
		path = DailyPath(opts.Dir, time.Now())
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		Close()
		logFile = f
		w = f
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	return nil
}

// DailyPath is the log file for day t under dir.
func DailyPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("watchfloor-%s.log", t.Format("2006-01-02")))
}

// Close releases the log file, if any.
func Close() {
	if logFile == nil {
		return
	}
	logFile.Close()
	logFile = nil
}

func logAt(level log.Level, msg string, keyvals []interface{}) {
	if Logger == nil {
		return
	}
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) { logAt(log.DebugLevel, msg, keyvals) }
func Info(msg string, keyvals ...interface{}) { logAt(log.InfoLevel, msg, keyvals) }
func Warn(msg string, keyvals ...interface{}) { logAt(log.WarnLevel, msg, keyvals) }
func Error(msg string, keyvals ...interface{}) { logAt(log.ErrorLevel, msg, keyvals) }

// WithPrefix returns a component logger. Before Init it discards everything.
func WithPrefix(prefix string) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.WithPrefix(prefix)
}
