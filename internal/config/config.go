package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scoutline/scout-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Queue   QueueConfig   `yaml:"queue" mapstructure:"queue"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string           `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ScoringConfig selects the active industry and overlay toggles applied to
// every scan.
type ScoringConfig struct {
	ActiveIndustry string `yaml:"active_industry" mapstructure:"active_industry"`
	WeightsFile    string `yaml:"weights_file" mapstructure:"weights_file"`
	DisablePersona bool   `yaml:"disable_persona" mapstructure:"disable_persona"`
	DisableCTA     bool   `yaml:"disable_cta" mapstructure:"disable_cta"`
	DisableEmotion bool   `yaml:"disable_emotion" mapstructure:"disable_emotion"`
}

// QueueConfig configures the retry queue processor.
type QueueConfig struct {
	BatchSize   int     `yaml:"batch_size" mapstructure:"batch_size"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port"`
	APIKey          string   `yaml:"api_key" mapstructure:"api_key"`
	AllowedOrigins  []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// ShutdownGrace returns the graceful shutdown window as a duration.
func (s ServerConfig) ShutdownGrace() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "scout.db")
	v.SetDefault("scoring.active_industry", "mlm")
	v.SetDefault("queue.batch_size", 10)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.rate_per_sec", 20.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the requested run mode.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}

	if c.Scoring.ActiveIndustry == "" {
		errs = append(errs, "scoring.active_industry is required")
	}
	if c.Queue.BatchSize < 1 || c.Queue.BatchSize > 1000 {
		errs = append(errs, "queue.batch_size must be between 1 and 1000")
	}
	if c.Queue.MaxAttempts < 1 || c.Queue.MaxAttempts > 10 {
		errs = append(errs, "queue.max_attempts must be between 1 and 10")
	}
	if c.Queue.RatePerSec < 0 {
		errs = append(errs, "queue.rate_per_sec must be >= 0")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0")
		}
	case "cli":
		// No extra requirements beyond the common checks.
	default:
		errs = append(errs, "unknown mode: "+mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
