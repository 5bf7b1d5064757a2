package middleware

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	QUIET
)

var (
	currentLogLevel LogLevel = INFO
	logger                   = newLogger(os.Stdout)
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02 15:04:05",
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})
	return l
}

// SetOutput redirects every log line to out
func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetLogLevel sets the current logging level
func SetLogLevel(level LogLevel) {
	currentLogLevel = level
}

// SetLogLevelFromString sets the log level from a string
func SetLogLevelFromString(level string) {
	switch strings.ToLower(level) {
	case "debug":
		currentLogLevel = DEBUG
	case "info":
		currentLogLevel = INFO
	case "warn", "warning":
		currentLogLevel = WARN
	case "error":
		currentLogLevel = ERROR
	case "quiet":
		currentLogLevel = QUIET
	default:
		currentLogLevel = INFO
	}
}

// shouldLog checks if a message should be logged at the given level
func shouldLog(level LogLevel) bool {
	return level >= currentLogLevel
}

func entry(component string) *logrus.Entry {
	return logger.WithField("component", component)
}

// LogDebug logs a debug message
func LogDebug(component, message string, args ...interface{}) {
	if shouldLog(DEBUG) {
		entry(component).Debug(fmt.Sprintf(message, args...))
	}
}

// LogInfo logs an info message
func LogInfo(component, message string, args ...interface{}) {
	if shouldLog(INFO) {
		entry(component).Info(fmt.Sprintf(message, args...))
	}
}

// LogWarn logs a warning message
func LogWarn(component, message string, args ...interface{}) {
	if shouldLog(WARN) {
		entry(component).Warn(fmt.Sprintf(message, args...))
	}
}

// LogError logs an error message
func LogError(component, message string, args ...interface{}) {
	if shouldLog(ERROR) {
		entry(component).Error(fmt.Sprintf(message, args...))
	}
}

// InitLogger initializes the logger with environment variables
func InitLogger() {
	// Check for LOG_LEVEL environment variable
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		SetLogLevelFromString(logLevel)
	}
}
