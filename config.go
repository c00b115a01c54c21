package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Settings are the plain configuration values, kept free of lock state
// so readers can hold copies.
type Settings struct {
	Host              string `yaml:"host" envconfig:"HOST"`
	WebPort           int    `yaml:"webPort" envconfig:"WEB_PORT"`
	SMSPort           int    `yaml:"smsPort" envconfig:"SMS_PORT"`
	Timeout           int    `yaml:"timeout" envconfig:"TIMEOUT"` // request timeout in seconds
	MaxConnections    int    `yaml:"maxConnections" envconfig:"MAX_CONNECTIONS"`
	LogLevel          string `yaml:"logLevel" envconfig:"LOG_LEVEL"`
	LogFile           string `yaml:"logFile,omitempty" envconfig:"LOG_FILE"`
	MaxStoredMessages int    `yaml:"maxStoredMessages,omitempty" envconfig:"MAX_STORED_MESSAGES"`
	AuditDSN          string `yaml:"auditDSN,omitempty" envconfig:"AUDIT_DSN"` // MySQL DSN, empty disables the audit log
}

// Config holds the mutable simulator settings. The core only reads
// Snapshot copies; the /config endpoints mutate the values under the lock.
type Config struct {
	Settings `yaml:",inline"`

	filename string
	mu       sync.Mutex
}

// ParseConfig parses the configuration and fills in default values.
// Environment variables with the SMSC_ prefix override the file.
func ParseConfig(data []byte) (*Config, error) {
	config := &Config{Settings: Settings{
		Host:              "localhost",
		WebPort:           8080,
		SMSPort:           8081,
		Timeout:           30,
		MaxConnections:    100,
		LogLevel:          "info",
		MaxStoredMessages: 100,
	}}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if err := envconfig.Process("smsc", config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig loads and parses the configuration from a file. A missing
// file yields the defaults, so the simulator starts without any setup.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		data = nil
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	config.filename = filename
	return config, nil
}

// Save writes the active values back to the configuration file.
func (c *Config) Save() error {
	c.mu.Lock()
	data, err := yaml.Marshal(c)
	filename := c.filename
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if filename == "" {
		return nil
	}
	return os.WriteFile(filename, data, 0644)
}

// Snapshot returns a copy of the active values.
func (c *Config) Snapshot() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Settings
}

// SetLogLevel switches the active log level at runtime.
func (c *Config) SetLogLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level must be one of panic, fatal, error, warn, info, debug, trace: %w", err)
	}
	c.mu.Lock()
	c.LogLevel = level
	c.mu.Unlock()
	logrus.SetLevel(parsed)
	return nil
}

// SetTimeout updates the request timeout, applied to new connections.
func (c *Config) SetTimeout(seconds int) error {
	if seconds < 1 || seconds > 300 {
		return fmt.Errorf("timeout must be between 1 and 300 seconds")
	}
	c.mu.Lock()
	c.Timeout = seconds
	c.mu.Unlock()
	return nil
}

func (c *Config) SetMaxConnections(n int) error {
	if n < 1 || n > 1000 {
		return fmt.Errorf("max connections must be between 1 and 1000")
	}
	c.mu.Lock()
	c.MaxConnections = n
	c.mu.Unlock()
	return nil
}

func (c *Config) SetHost(host string) error {
	if host == "" {
		return fmt.Errorf("host must not be empty")
	}
	c.mu.Lock()
	c.Host = host
	c.mu.Unlock()
	return nil
}
