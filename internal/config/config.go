package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Upload  UploadConfig  `yaml:"upload" envconfig:"UPLOAD"`
	Session SessionConfig `yaml:"session" envconfig:"SESSION"`
	Mail    MailConfig    `yaml:"mail" envconfig:"MAIL"`
	Columns ColumnsConfig `yaml:"columns" envconfig:"COLUMNS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// UploadConfig controls where uploaded files land and what is accepted.
type UploadConfig struct {
	Dir               string   `yaml:"dir" envconfig:"DIR" default:"uploads"`
	MaxBytes          int64    `yaml:"max_bytes" envconfig:"MAX_BYTES" default:"16777216"`
	AllowedExtensions []string `yaml:"allowed_extensions" envconfig:"ALLOWED_EXTENSIONS" default:"csv"`
}

// SessionConfig contains the cookie session configuration.
type SessionConfig struct {
	Secret string `yaml:"secret" envconfig:"SECRET" default:"default-super-secret-key-change-me-immediately"`
}

// MailConfig contains SMTP submission settings. Host, Username and Password
// must all be set for the notification sender to be considered configured.
type MailConfig struct {
	Host     string `yaml:"host" envconfig:"HOST"`
	Port     int    `yaml:"port" envconfig:"PORT" default:"587"`
	Username string `yaml:"username" envconfig:"USERNAME"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	From     string `yaml:"from" envconfig:"FROM"`
	UseTLS   bool   `yaml:"use_tls" envconfig:"USE_TLS" default:"true"`
	UseSSL   bool   `yaml:"use_ssl" envconfig:"USE_SSL" default:"false"`
}

// Configured reports whether enough settings are present to attempt delivery.
func (m MailConfig) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

// Sender returns the From address, falling back to the SMTP username.
func (m MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return m.Username
}

// ColumnsConfig maps the domain columns to the expected CSV headers.
// Deployments against data with different headers override these.
type ColumnsConfig struct {
	Date     string `yaml:"date" envconfig:"DATE" default:"Order Date"`
	Category string `yaml:"category" envconfig:"CATEGORY" default:"Restaurant Name"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Upload.Dir == "" {
		envConfig.Upload.Dir = fileConfig.Upload.Dir
	}
	if len(envConfig.Upload.AllowedExtensions) == 0 {
		envConfig.Upload.AllowedExtensions = fileConfig.Upload.AllowedExtensions
	}
	if envConfig.Mail.Host == "" {
		envConfig.Mail.Host = fileConfig.Mail.Host
	}
	if envConfig.Mail.Username == "" {
		envConfig.Mail.Username = fileConfig.Mail.Username
	}
	if envConfig.Mail.Password == "" {
		envConfig.Mail.Password = fileConfig.Mail.Password
	}
	if envConfig.Columns.Date == "" {
		envConfig.Columns.Date = fileConfig.Columns.Date
	}
	if envConfig.Columns.Category == "" {
		envConfig.Columns.Category = fileConfig.Columns.Category
	}

	return envConfig
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("invalid upload max bytes: %d", c.Upload.MaxBytes)
	}
	if c.Columns.Date == "" || c.Columns.Category == "" {
		return fmt.Errorf("column names must not be empty")
	}
	return nil
}

// EnsureUploadDir creates the upload directory if it does not exist and
// verifies it is writable.
func (c *Config) EnsureUploadDir() error {
	if err := os.MkdirAll(c.Upload.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", c.Upload.Dir, err)
	}
	probe := filepath.Join(c.Upload.Dir, ".write_test")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("upload directory %s is not writable: %w", c.Upload.Dir, err)
	}
	f.Close()
	os.Remove(probe)
	return nil
}

// AllowedExtension reports whether the given filename carries an allowed
// extension. Comparison is case-insensitive and ignores the leading dot.
func (c *Config) AllowedExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range c.Upload.AllowedExtensions {
		if ext == strings.ToLower(strings.TrimPrefix(allowed, ".")) {
			return true
		}
	}
	return false
}

// configFilePath returns the path of the optional YAML config file.
// CSVDESK_CONFIG overrides the default location.
func configFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigFile
}
