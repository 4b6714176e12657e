// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Cache     CacheConfig     `yaml:"cache"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Fixtures  FixturesConfig  `yaml:"fixtures"`
}

// SiteConfig describes the public site and its publishing organization.
type SiteConfig struct {
	Name          string   `yaml:"name"`
	BaseURL       string   `yaml:"base_url"`
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`

	SupportEmail   string `yaml:"support_email"`
	SupportPhone   string `yaml:"support_phone"`
	SupportAddress string `yaml:"support_address"`

	AddressLocality string `yaml:"address_locality"`
	AddressCountry  string `yaml:"address_country"`
	AddressRegion   string `yaml:"address_region"`
	PostalCode      string `yaml:"postal_code"`

	LicensePath        string   `yaml:"license_path"`
	AcquireLicensePath string   `yaml:"acquire_license_path"`
	LogoURL            string   `yaml:"logo_url"`
	SameAs             []string `yaml:"same_as"`
}

// DatabaseConfig selects the storage driver.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres or mysql
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Mode  string `yaml:"mode"` // development or production
	Level string `yaml:"level"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	HTTPAddr     string        `yaml:"http_addr"`
	MCPPath      string        `yaml:"mcp_path"`
	MetricsPath  string        `yaml:"metrics_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// SchedulerConfig configures scheduled go-live publishing.
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// CacheConfig sizes the structured-data cache.
type CacheConfig struct {
	GraphSize int `yaml:"graph_size"`
}

// ArchiveConfig points at the MongoDB archive of published graphs.
// Archiving is disabled when MongoURI is empty.
type ArchiveConfig struct {
	MongoURI   string        `yaml:"mongo_uri"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
}

// FixturesConfig configures JSON page-tree imports.
type FixturesConfig struct {
	Dir      string        `yaml:"dir"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv creates configuration from defaults and VENTANITA_* variables.
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path when it exists, otherwise falls back to
// LoadFromEnv.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies VENTANITA_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VENTANITA_SITE_BASE_URL"); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := os.Getenv("VENTANITA_SITE_NAME"); v != "" {
		cfg.Site.Name = v
	}
	if v := os.Getenv("VENTANITA_SUPPORT_EMAIL"); v != "" {
		cfg.Site.SupportEmail = v
	}
	if v := os.Getenv("VENTANITA_SUPPORT_PHONE"); v != "" {
		cfg.Site.SupportPhone = v
	}

	if v := os.Getenv("VENTANITA_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("VENTANITA_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("VENTANITA_LOG_MODE"); v != "" {
		cfg.Logging.Mode = v
	}
	if v := os.Getenv("VENTANITA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("VENTANITA_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}

	if v := os.Getenv("VENTANITA_SCHEDULER_ENABLED"); v != "" {
		cfg.Scheduler.Enabled = parseBool(v)
	}
	if v := os.Getenv("VENTANITA_SCHEDULER_SPEC"); v != "" {
		cfg.Scheduler.Spec = v
	}

	if v := os.Getenv("VENTANITA_CACHE_GRAPH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.GraphSize = n
		}
	}

	if v := os.Getenv("VENTANITA_ARCHIVE_MONGO_URI"); v != "" {
		cfg.Archive.MongoURI = v
	}

	if v := os.Getenv("VENTANITA_FIXTURES_DIR"); v != "" {
		cfg.Fixtures.Dir = v
	}
	if v := os.Getenv("VENTANITA_FIXTURES_WATCH"); v != "" {
		cfg.Fixtures.Watch = parseBool(v)
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Site.Name == "" {
		cfg.Site.Name = "Ventanita"
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "https://ventanita.com.py"
	}
	cfg.Site.BaseURL = strings.TrimRight(cfg.Site.BaseURL, "/")
	if cfg.Site.DefaultLocale == "" {
		cfg.Site.DefaultLocale = "es"
	}
	if len(cfg.Site.Locales) == 0 {
		cfg.Site.Locales = []string{"es", "en"}
	}
	if cfg.Site.SupportEmail == "" {
		cfg.Site.SupportEmail = "soporte@ventanita.com.py"
	}
	if cfg.Site.SupportPhone == "" {
		cfg.Site.SupportPhone = "+595981123456"
	}
	if cfg.Site.SupportAddress == "" {
		cfg.Site.SupportAddress = "Asunción, Paraguay"
	}
	if cfg.Site.AddressLocality == "" {
		cfg.Site.AddressLocality = "Asunción"
	}
	if cfg.Site.AddressCountry == "" {
		cfg.Site.AddressCountry = "PY"
	}
	if cfg.Site.AddressRegion == "" {
		cfg.Site.AddressRegion = "Paraguay"
	}
	if cfg.Site.PostalCode == "" {
		cfg.Site.PostalCode = "001424"
	}
	if cfg.Site.LicensePath == "" {
		cfg.Site.LicensePath = "/terms/"
	}
	if cfg.Site.AcquireLicensePath == "" {
		cfg.Site.AcquireLicensePath = "/contact/"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		homeDir, _ := os.UserHomeDir()
		cfg.Database.DSN = filepath.Join(homeDir, ".local", "share", "ventanita", "ventanita.db")
	}

	if cfg.Logging.Mode == "" {
		cfg.Logging.Mode = "development"
	}

	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if cfg.Server.MCPPath == "" {
		cfg.Server.MCPPath = "/mcp"
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = "/metrics"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Scheduler.Spec == "" {
		cfg.Scheduler.Spec = "@every 1m"
	}

	if cfg.Cache.GraphSize == 0 {
		cfg.Cache.GraphSize = 256
	}

	if cfg.Archive.Database == "" {
		cfg.Archive.Database = "ventanita"
	}
	if cfg.Archive.Collection == "" {
		cfg.Archive.Collection = "structured_data"
	}
	if cfg.Archive.Timeout == 0 {
		cfg.Archive.Timeout = 10 * time.Second
	}

	if cfg.Fixtures.Debounce == 0 {
		cfg.Fixtures.Debounce = 500 * time.Millisecond
	}
}

func validate(cfg *Config) error {
	if !strings.HasPrefix(cfg.Site.BaseURL, "http://") && !strings.HasPrefix(cfg.Site.BaseURL, "https://") {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL, got %q", cfg.Site.BaseURL)
	}

	validLocale := false
	for _, l := range cfg.Site.Locales {
		if l == cfg.Site.DefaultLocale {
			validLocale = true
		}
	}
	if !validLocale {
		return fmt.Errorf("site.default_locale %q is not in site.locales", cfg.Site.DefaultLocale)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for driver %q", cfg.Database.Driver)
	}

	validModes := map[string]bool{"development": true, "dev": true, "production": true, "prod": true}
	if !validModes[strings.ToLower(cfg.Logging.Mode)] {
		return fmt.Errorf("logging.mode must be 'development' or 'production', got %q", cfg.Logging.Mode)
	}

	if cfg.Cache.GraphSize < 0 {
		return fmt.Errorf("cache.graph_size must not be negative")
	}
	return nil
}
