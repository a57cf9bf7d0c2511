// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DefaultScanType is the scan type used when neither the config nor a flag
// selects one.
const DefaultScanType = "AWS Prisma CSV"

// minTitleLength is the smallest title limit that can still hold a word and
// the " [...]" truncation marker.
const minTitleLength = 16

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Importer() ImporterConfig
	Report() ReportConfig

	// Importer Setters
	SetImporterScanType(scanType string)
	SetImporterLenientDates(b bool)

	// Report Setters
	SetReportFormat(format string)
	SetReportOutput(path string)
}

// Config holds the entire application configuration. Sections are exported
// so viper can unmarshal into them; callers go through the Interface getters.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	ImporterCfg ImporterConfig `mapstructure:"importer" yaml:"importer"`
	ReportCfg   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Importer() ImporterConfig { return c.ImporterCfg }
func (c *Config) Report() ReportConfig     { return c.ReportCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetImporterScanType(scanType string) { c.ImporterCfg.DefaultScanType = scanType }
func (c *Config) SetImporterLenientDates(b bool)      { c.ImporterCfg.LenientDates = b }
func (c *Config) SetReportFormat(format string)       { c.ReportCfg.Format = format }
func (c *Config) SetReportOutput(path string)         { c.ReportCfg.Output = path }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each level. Levels above error
// use the error color.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// DatabaseConfig holds the database connection details. The URL is only
// needed when findings are persisted.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ImporterConfig controls how scan exports are turned into findings.
type ImporterConfig struct {
	DefaultScanType string `mapstructure:"default_scan_type" yaml:"default_scan_type"`
	// LenientDates skips rows with unparseable alert times instead of failing
	// the whole import.
	LenientDates   bool `mapstructure:"lenient_dates" yaml:"lenient_dates"`
	TitleMaxLength int  `mapstructure:"title_max_length" yaml:"title_max_length"`
}

// ReportConfig selects the output format and destination for imported findings.
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scanimport")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Database --
	v.SetDefault("database.url", "")

	// -- Importer --
	v.SetDefault("importer.default_scan_type", DefaultScanType)
	v.SetDefault("importer.lenient_dates", false)
	v.SetDefault("importer.title_max_length", 150)

	// -- Report --
	v.SetDefault("report.format", "json")
	v.SetDefault("report.output", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The database URL usually carries credentials, so it gets an explicit env binding.
	_ = v.BindEnv("database.url", "SCANIMPORT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading ~ in file paths.
func (c *Config) expandPaths() error {
	logFile, err := homedir.Expand(c.LoggerCfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand logger.log_file: %w", err)
	}
	c.LoggerCfg.LogFile = logFile

	output, err := homedir.Expand(c.ReportCfg.Output)
	if err != nil {
		return fmt.Errorf("failed to expand report.output: %w", err)
	}
	c.ReportCfg.Output = output
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.ImporterCfg.Validate(); err != nil {
		return fmt.Errorf("importer configuration invalid: %w", err)
	}
	if err := c.ReportCfg.Validate(); err != nil {
		return fmt.Errorf("report configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the importer configuration.
func (i *ImporterConfig) Validate() error {
	if i.DefaultScanType == "" {
		return fmt.Errorf("importer.default_scan_type must not be empty")
	}
	if i.TitleMaxLength < minTitleLength {
		return fmt.Errorf("importer.title_max_length must be at least %d", minTitleLength)
	}
	return nil
}

// Validate checks the report configuration.
func (r *ReportConfig) Validate() error {
	switch r.Format {
	case "json", "sarif":
		return nil
	default:
		return fmt.Errorf("report.format must be one of json, sarif (got %q)", r.Format)
	}
}
