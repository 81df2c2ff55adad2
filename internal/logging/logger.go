// Package logging configures the process-wide zerolog logger.
//
// Call Init once from main. Components take a zerolog.Logger in their
// constructors; Component derives one tagged with the component name.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	log := logging.Component("watchlistsync")
//	log.Info().Str("watchlist", id).Msg("item added")
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error. Default info.
	Level string

	// Format is json or console. Default console.
	Format string

	// File enables a rotated log file in addition to Output.
	File       string
	MaxSize    int // megabytes per file
	MaxBackups int
	MaxAge     int // days
	Compress   bool

	// Output is the primary writer. Default os.Stderr.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	log    zerolog.Logger
	closer io.Closer
)

func init() {
	log = New(Config{})
}

// Init configures the global logger. It is safe to call more than once; a
// previously opened log file is closed.
func Init(cfg Config) {
	logger, fileWriter := build(cfg)

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	log = logger
	closer = fileWriter
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
}

// New builds a standalone logger without touching global state. A configured
// log file stays open for the life of the process.
func New(cfg Config) zerolog.Logger {
	logger, _ := build(cfg)
	return logger
}

// L returns the global logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Component returns the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}

// Close releases the rotated log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// ParseLevel converts a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func build(cfg Config) (zerolog.Logger, io.Closer) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if !strings.EqualFold(cfg.Format, "json") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	var fileWriter *lumberjack.Logger
	if strings.TrimSpace(cfg.File) != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			fileWriter = &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			// The file always gets JSON lines regardless of console format.
			output = zerolog.MultiLevelWriter(output, fileWriter)
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	if fileWriter == nil {
		return logger, nil
	}
	return logger, fileWriter
}
