package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. DATACLEAN_SERVER_PORT
const EnvPrefix = "DATACLEAN"

// ConfigFileEnv names an explicit YAML configuration file
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host             string        `yaml:"host" envconfig:"HOST"`
	Port             int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout      time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout     time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes   int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	OperationTimeout time.Duration `yaml:"operation_timeout" envconfig:"OPERATION_TIMEOUT"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"` // json|text
	Output      string `yaml:"output" envconfig:"OUTPUT"` // console|file|both
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// UploadConfig bounds accepted uploads
type UploadConfig struct {
	MaxBytes          int64    `yaml:"max_bytes" envconfig:"MAX_BYTES"`
	AllowedExtensions []string `yaml:"allowed_extensions" envconfig:"ALLOWED_EXTENSIONS"`
}

// CleaningConfig tunes the reports returned alongside cleaned data
type CleaningConfig struct {
	PreviewRows     int  `yaml:"preview_rows" envconfig:"PREVIEW_ROWS"`
	IncludeDescribe bool `yaml:"include_describe" envconfig:"INCLUDE_DESCRIBE"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"ENABLED"`
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	MaxMessageBytes int64         `yaml:"max_message_bytes" envconfig:"MAX_MESSAGE_BYTES"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`   // stdout|none
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"` // prometheus|none
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, the optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate validates the configuration and normalizes loose values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}

	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one upload extension must be allowed")
	}
	for i, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Upload.AllowedExtensions[i] = ext
	}

	if c.Cleaning.PreviewRows < 0 {
		return fmt.Errorf("preview rows must not be negative")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			MaxHeaderBytes:   1 << 20, // 1MB
			ShutdownTimeout:  30 * time.Second,
			OperationTimeout: 60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Upload: UploadConfig{
			MaxBytes:          50 << 20, // 50MB
			AllowedExtensions: []string{".csv", ".xlsx", ".xls"},
		},
		Cleaning: CleaningConfig{
			PreviewRows:     5,
			IncludeDescribe: true,
		},
		WebSocket: WebSocketConfig{
			Enabled:         true,
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			MaxMessageBytes: 72 << 20, // base64 of a full upload plus envelope
			PingPeriod:      54 * time.Second,
			PongWait:        60 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "data-cleaning",
			Environment:    "development",
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
