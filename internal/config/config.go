package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Figures   FiguresConfig   `yaml:"figures" envconfig:"FIGURES"`
	Render    RenderConfig    `yaml:"render" envconfig:"RENDER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Publish   PublishConfig   `yaml:"publish" envconfig:"PUBLISH"`
}

// PathsConfig contains input and output locations
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutDir  string `yaml:"out_dir" envconfig:"OUT_DIR" validate:"required"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// FiguresConfig controls which figures run and how
type FiguresConfig struct {
	Workers    int      `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=16"`
	FailFast   bool     `yaml:"fail_fast" envconfig:"FAIL_FAST"`
	ExportData bool     `yaml:"export_data" envconfig:"EXPORT_DATA"`
	TopN       int      `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=100"`
	Cities     []string `yaml:"cities" envconfig:"CITIES" validate:"dive,required"`
	Only       []string `yaml:"only" envconfig:"ONLY"`
}

// RenderConfig contains PNG canvas settings
type RenderConfig struct {
	Width         float64 `yaml:"width" envconfig:"WIDTH" validate:"gt=0"`
	Height        float64 `yaml:"height" envconfig:"HEIGHT" validate:"gt=0"`
	DPI           int     `yaml:"dpi" envconfig:"DPI" validate:"min=50,max=1200"`
	LabelFontSize float64 `yaml:"label_font_size" envconfig:"LABEL_FONT_SIZE" validate:"gt=0"`
	LabelOffset   float64 `yaml:"label_offset" envconfig:"LABEL_OFFSET" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig toggles OpenTelemetry metrics and tracing
type TelemetryConfig struct {
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// ServerConfig contains the gallery HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	// Requests per second across all clients; 0 disables rate limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"gte=0"`
}

// PublishConfig contains the object storage target for published figures
type PublishConfig struct {
	Endpoint        string `yaml:"endpoint" envconfig:"ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"SECRET_ACCESS_KEY"`
	Bucket          string `yaml:"bucket" envconfig:"BUCKET"`
	Prefix          string `yaml:"prefix" envconfig:"PREFIX"`
	Region          string `yaml:"region" envconfig:"REGION"`
	UseSSL          bool   `yaml:"use_ssl" envconfig:"USE_SSL"`
}

// Load builds the configuration from defaults, an optional YAML file and
// FIGS_* environment variables, in increasing order of precedence.
// An empty configFile searches the default locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are actually set override the current values
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

// Validate checks the configuration and normalises logging settings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Publish.Bucket != "" && c.Publish.Endpoint == "" {
		return fmt.Errorf("publish bucket %q configured without an endpoint", c.Publish.Bucket)
	}

	return nil
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"figures.yaml",
		"configs/figures.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			OutDir:  DefaultOutDir,
			LogsDir: DefaultLogsDir,
		},
		Figures: FiguresConfig{
			Workers: 1,
			TopN:    DefaultTopN,
			Cities:  append([]string(nil), DefaultCities...),
		},
		Render: RenderConfig{
			Width:         DefaultFigureWidth,
			Height:        DefaultFigureHeight,
			DPI:           DefaultDPI,
			LabelFontSize: DefaultLabelFontSize,
			LabelOffset:   DefaultLabelOffset,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: true,
			TraceExporter: "none",
			Environment:   "development",
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimitRPS:    DefaultRateLimitRPS,
			RateLimitBurst:  DefaultRateLimitBurst,
		},
	}
}
