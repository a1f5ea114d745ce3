package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	activeConfig Config
	// defaultLogDir is where the file sink writes when no explicit path is configured.
	defaultLogDir string
)

// Configure installs the logging configuration used by loggers created afterwards.
// Loggers that already exist are reconfigured in place.
func Configure(cfg Config, logDir string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	activeConfig = cfg
	defaultLogDir = logDir
	for component, entry := range loggers {
		applyConfig(entry.Logger, component, cfg)
	}
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	applyConfig(logger, component, activeConfig)

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

func applyConfig(logger *logrus.Logger, component string, cfg Config) {
	// Configure Level
	levelStr := "info"
	if env := os.Getenv("PLACES_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetReportCaller(os.Getenv("PLACES_LOG_CALLER") == "true" || cfg.ReportCaller)

	switch cfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: cfg.Format})
	}

	var writers []io.Writer

	if cfg.File.Enabled {
		logFilePath := expandPath(cfg.File.Path)
		if logFilePath == "" && defaultLogDir != "" {
			logFilePath = filepath.Join(defaultLogDir, "places.log")
		}
		if logFilePath != "" {
			if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
				logger.Warnf("Failed to create log directory for %s: %v", logFilePath, err)
			} else if file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
				logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
			} else {
				writers = append(writers, file)
			}
		}
	}

	if shouldLogToStderr(cfg.Format.StructuredToStderr, logger.GetLevel()) {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		// Interactive use without debug: keep the terminal clean.
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
}

// shouldLogToStderr implements the "auto" mode: structured logs go to stderr when
// debugging or when stderr is not an interactive terminal (pipes, CI, services).
func shouldLogToStderr(mode string, level logrus.Level) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	isDebug := os.Getenv("PLACES_DEBUG") == "1" || level >= logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return isDebug || !isInteractive
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
