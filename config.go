package pagealloc

import (
	"sync"

	"github.com/kelseyhightower/envconfig"

	"github.com/pageframe/pagealloc/internal/errors"
	"github.com/pageframe/pagealloc/internal/logging"
)

// Config governs logging verbosity only. Size classes, arena count, and page
// size are compile-time constants (internal/sizeclass, internal/arena,
// internal/pagemap) and are deliberately not exposed here.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	DebugLog  bool   `envconfig:"DEBUG_LOG" default:"false"`
}

// LoadConfig populates a Config from PAGEALLOC_-prefixed environment
// variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("PAGEALLOC", &cfg); err != nil {
		return Config{}, errors.WrapConfigurationError(err, "LoadConfig", "invalid PAGEALLOC_* environment configuration")
	}
	return cfg, nil
}

var (
	loggerMu sync.RWMutex
	logger   = logging.Nop()
)

func currentLogger() *logging.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Configure installs cfg as the process-wide logging configuration and wires
// it into the OS mapping and arena layers. It is safe to call before the
// first Allocate; calling it after allocations have already occurred simply
// changes the logger future chunk-lifecycle events are reported through.
func Configure(cfg Config) {
	level := cfg.LogLevel
	if cfg.DebugLog {
		level = "debug"
	}
	l := logging.New(logging.Config{Level: level, Format: cfg.LogFormat})

	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()

	wirePagemapAndArenaLogging()
}
