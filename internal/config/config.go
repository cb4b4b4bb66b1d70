package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"dormscore/internal/errors"

	"github.com/joho/godotenv"
)

const envPrefix = "DORMSCORE_"

// Output formats of the run summary.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Config represents the complete application configuration
type Config struct {
	Input  InputConfig
	Report ReportConfig
	Office OfficeConfig
	Log    LogConfig
}

// InputConfig selects and decodes the weekly score exports.
type InputConfig struct {
	Folder    string
	Prefix    string
	Extension string
	Encoding  string
}

// ReportConfig holds the fixed banner strings of the rendered report.
type ReportConfig struct {
	ContactLocalPart string
	ContactDomain    string
	FeedbackMailbox  string
	FontFamily       string
}

// OfficeConfig holds the external office suite used for PDF conversion.
type OfficeConfig struct {
	Binary       string
	Timeout      time.Duration
	MarginInches float64
}

// LogConfig holds logging and summary output settings.
type LogConfig struct {
	Level        string
	OutputFormat string
}

// LoadDotEnv loads variables from the given .env files (or ./.env). A missing
// file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(files...); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to load .env")
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Input:  *loadInputConfig(),
		Report: *loadReportConfig(),
		Office: *loadOfficeConfig(),
		Log:    *loadLogConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadInputConfig() *InputConfig {
	return &InputConfig{
		Folder:    getEnvOrDefault("FOLDER", "."),
		Prefix:    getEnvOrDefault("INPUT_PREFIX", "WeekScoreManage"),
		Extension: strings.TrimPrefix(getEnvOrDefault("INPUT_EXT", "csv"), "."),
		Encoding:  getEnvOrDefault("INPUT_ENCODING", "gbk"),
	}
}

func loadReportConfig() *ReportConfig {
	return &ReportConfig{
		ContactLocalPart: getEnvOrDefault("CONTACT_LOCAL_PART", "xxx"),
		ContactDomain:    getEnvOrDefault("CONTACT_DOMAIN", "mails.tsinghua.edu.cn"),
		FeedbackMailbox:  getEnvOrDefault("FEEDBACK_MAILBOX", "thu.lczh@gmail.com"),
		FontFamily:       getEnvOrDefault("FONT_FAMILY", "宋体"),
	}
}

func loadOfficeConfig() *OfficeConfig {
	return &OfficeConfig{
		Binary:       getEnvOrDefault("OFFICE_BIN", "soffice"),
		Timeout:      getEnvDurationOrDefault("CONVERT_TIMEOUT", 2*time.Minute),
		MarginInches: getEnvFloatOrDefault("MARGIN_INCHES", 0.3),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:        getEnvOrDefault("LOG_LEVEL", "info"),
		OutputFormat: strings.ToLower(getEnvOrDefault("OUTPUT_FORMAT", FormatText)),
	}
}

// Validate checks the values the CLI flags may have overridden.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input.Prefix) == "" {
		return errors.ConfigInvalid("input prefix is required")
	}
	if strings.TrimSpace(c.Input.Extension) == "" {
		return errors.ConfigInvalid("input extension is required")
	}
	if strings.TrimSpace(c.Report.ContactLocalPart) == "" {
		return errors.ConfigInvalid("contact local-part is required")
	}
	if strings.Contains(c.Report.ContactLocalPart, "@") {
		return errors.ConfigInvalid("contact local-part must not contain '@'")
	}
	if c.Office.Timeout <= 0 {
		return errors.ConfigInvalid("conversion timeout must be positive")
	}
	if c.Office.MarginInches < 0 {
		return errors.ConfigInvalid("page margin must not be negative")
	}
	switch c.Log.OutputFormat {
	case FormatText, FormatJSON, FormatYAML, "yml", FormatMarkdown, "md", FormatHTML:
	default:
		return errors.ConfigInvalid("output format must be one of text, json, yaml, markdown, html")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
