package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Out = os.Stdout
	// LOG_TO_FILE=true writes to logs/<date><env>.log, falling back to stdout when that fails.
	if os.Getenv("LOG_TO_FILE") == "true" {
		if f, err := openLogFile(os.Getenv("ENV")); err != nil {
			log.Warnf("Failed to open log file: %v, falling back to stdout", err)
		} else {
			logger.Out = f
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
}

func openLogFile(env string) (*os.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logsDir := filepath.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	filePath := filepath.Join(logsDir, fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env))
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

func parseLevel(raw string) log.Level {
	if raw == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// SetLevel changes the level of the shared logger, e.g. from a --log-level flag.
func SetLevel(raw string) {
	logger.SetLevel(parseLevel(raw))
}

// Base returns the shared logger without caller annotations.
func Base() *log.Logger {
	return logger
}

// GetLogger returns an entry annotated with the calling function, file and line.
func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	name := ""
	if functionObject != nil {
		name = functionObject.Name()
	}
	return logger.WithFields(log.Fields{
		"function": name,
		"file":     file,
		"line":     line,
	})
}

// SetOutput redirects the shared logger, e.g. to stderr for CLI commands that print to stdout.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
