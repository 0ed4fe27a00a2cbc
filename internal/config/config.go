// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the mailer CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	SMTP    SMTPConfig    `yaml:"smtp"`
	Mail    MailConfig    `yaml:"mail"`
	Logging LoggingConfig `yaml:"logging"`
}

// SMTPConfig holds the server connection settings.
type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Security   string `yaml:"security"` // tls, ssl or none
	VerifyCert bool   `yaml:"verify_cert"`
}

// MailConfig holds the fixed message settings.
type MailConfig struct {
	From string `yaml:"from"`
	BCC  string `yaml:"bcc"` // semicolon-separated hidden recipients
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case c.SMTP.Host == "":
		return fmt.Errorf("smtp.host is required")
	case c.SMTP.Username == "":
		return fmt.Errorf("smtp.username is required")
	case c.SMTP.Password == "":
		return fmt.Errorf("smtp.password is required")
	case c.Mail.From == "":
		return fmt.Errorf("mail.from is required")
	}
	return nil
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.SMTP.Security = "tls"
	c.SMTP.VerifyCert = true
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_SECURITY"); v != "" {
		c.SMTP.Security = strings.ToLower(v)
	}
	if v := os.Getenv("SMTP_VERIFY_CERT"); v != "" {
		if verify, err := strconv.ParseBool(v); err == nil {
			c.SMTP.VerifyCert = verify
		}
	}

	if v := os.Getenv("MAIL_FROM"); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv("MAIL_BCC"); v != "" {
		c.Mail.BCC = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
