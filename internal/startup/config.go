package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"mch/internal/logging"
	"mch/internal/source"
)

// Config holds all application configuration. Every key can be set from the
// environment by upper-casing it and replacing dots with underscores
// (server.metrics_port -> SERVER_METRICS_PORT).
type Config struct {
	Server      ServerSettings      `mapstructure:"server"`
	Metrics     MetricsSettings     `mapstructure:"metrics"`
	Log         LogSettings         `mapstructure:"log"`
	Content     ContentSettings     `mapstructure:"content"`
	Compression CompressionSettings `mapstructure:"compression"`
	Minio       source.MinioConfig  `mapstructure:"minio"`
	Memory      MemorySettings      `mapstructure:"memory"`
}

// ServerSettings configures the application listener.
type ServerSettings struct {
	Port            string        `mapstructure:"port" default:"8080"`
	MetricsPort     string        `mapstructure:"metrics_port" default:"9090"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"30s"`
}

// MetricsSettings toggles the Prometheus listener.
type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
}

// LogSettings configures log output and access log filtering.
type LogSettings struct {
	Level        string `mapstructure:"level" default:""`
	Format       string `mapstructure:"format" default:"json"`
	StaticFiles  bool   `mapstructure:"static_files" default:"false"`
	HealthChecks bool   `mapstructure:"health_checks" default:"true"`
}

// ContentSettings selects where served content comes from.
type ContentSettings struct {
	Backend string `mapstructure:"backend" default:"local"`
	Root    string `mapstructure:"root" default:"./content"`
}

// CompressionSettings tunes the gzip middleware.
type CompressionSettings struct {
	Level   int `mapstructure:"level" default:"-1"`
	MinSize int `mapstructure:"min_size" default:"0"`
}

// MemorySettings sizes GOMEMLIMIT from the container memory limit.
type MemorySettings struct {
	Limit int64   `mapstructure:"limit" default:"0"`
	Ratio float64 `mapstructure:"ratio" default:"0.85"`
}

// ErrUnknownBackend is returned when content.backend names no known source.
var ErrUnknownBackend = errors.New("unknown content backend")

// LoadConfig loads configuration from envFile (if it exists) and the
// environment, logs it, and validates it. Values in envFile override the
// process environment.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	config, err := readConfig()
	if err != nil {
		return nil, err
	}
	config.applyLogSettings()

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  SERVER_PORT:              %s", config.Server.Port)
	logging.Info("  SERVER_METRICS_PORT:      %s", config.Server.MetricsPort)
	logging.Info("  SERVER_SHUTDOWN_TIMEOUT:  %v", config.Server.ShutdownTimeout)
	logging.Info("  METRICS_ENABLED:          %v", config.Metrics.Enabled)
	logging.Info("  CONTENT_BACKEND:          %s", config.Content.Backend)
	logging.Info("  COMPRESSION_LEVEL:        %d", config.Compression.Level)
	logging.Info("  COMPRESSION_MIN_SIZE:     %d", config.Compression.MinSize)
	logging.Info("  LOG_STATIC_FILES:         %v", config.Log.StaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:        %v", config.Log.HealthChecks)
	logging.Info("  LOG_LEVEL:                %s", logging.GetLevel())

	if err := config.validate(); err != nil {
		return nil, err
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CONTENT SETUP")
	logging.Info("------------------------------------------------------------")

	switch config.Content.Backend {
	case source.BackendLocal:
		root, err := filepath.Abs(config.Content.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve content directory path: %w", err)
		}
		config.Content.Root = root
		logging.Info("  Content directory (absolute): %s", root)

		if err := ensureDirectory(root, "content"); err != nil {
			return nil, fmt.Errorf("content directory error: %w", err)
		}
	case source.BackendMinio:
		logging.Info("  MinIO endpoint: %s", config.Minio.Endpoint)
		logging.Info("  MinIO bucket:   %s", config.Minio.Bucket)
		logging.Info("  MinIO SSL:      %v", config.Minio.UseSSL)
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Compression: %s", enabledString(true))
	logging.Info("    Metrics:     %s", enabledString(config.Metrics.Enabled))

	return config, nil
}

// readConfig builds a Config from registered defaults and the environment.
func readConfig() (*Config, error) {
	v := viper.New()

	bindValues(v, Config{}, "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return &config, nil
}

// applyLogSettings points the logging package at stdout in the configured
// format. An empty level keeps the one read from DEBUG / LOG_LEVEL.
func (c *Config) applyLogSettings() {
	logging.SetOutput(os.Stdout, c.Log.Format)
	if c.Log.Level != "" {
		logging.SetLevel(logging.ParseLevel(c.Log.Level))
	}
}

// validate rejects settings that cannot work and clamps ones that can.
func (c *Config) validate() error {
	c.Content.Backend = strings.ToLower(strings.TrimSpace(c.Content.Backend))
	switch c.Content.Backend {
	case source.BackendLocal, source.BackendMinio:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownBackend,
			c.Content.Backend, source.BackendLocal, source.BackendMinio)
	}

	if c.Content.Backend == source.BackendMinio && c.Minio.Bucket == "" {
		return fmt.Errorf("minio backend requires MINIO_BUCKET")
	}

	if c.Compression.MinSize < 0 {
		logging.Warn("  Invalid COMPRESSION_MIN_SIZE %d, using 0", c.Compression.MinSize)
		c.Compression.MinSize = 0
	}

	if c.Server.ShutdownTimeout <= 0 {
		logging.Warn("  Invalid SERVER_SHUTDOWN_TIMEOUT, using default: 30s")
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	return nil
}

// bindValues walks the struct and registers each 'default' tag with viper,
// keyed by the dotted 'mapstructure' path. Keys are registered even when the
// default is empty so that AutomaticEnv picks them up.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
