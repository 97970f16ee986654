// Package config provides configuration management for the invaudit tool.
// It supports loading configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultDataDir       = "data"
	DefaultReportsDir    = "reports"
	DefaultWorkerCount   = 5
	DefaultDebounceDelay = 1 * time.Second
	DefaultERPBaseURL    = "http://127.0.0.1:8000"
	DefaultERPTimeout    = 5 * time.Second
	DefaultReviewerName  = "human_reviewer"
	DefaultEventLogFile  = "pipeline_history.jsonl"
	DefaultHashStoreFile = "processed_hashes.db"
	DefaultRulesFile     = "rules.yaml"
)

// DefaultExtensions are the recognized invoice document extensions.
var DefaultExtensions = []string{".pdf", ".docx", ".png", ".jpg", ".jpeg", ".json", ".txt"}

// DirectoryConfig holds the directory taxonomy invoices move through.
type DirectoryConfig struct {
	// Incoming is the inbox watched by the ingestion monitor.
	Incoming string `yaml:"incoming"`

	// Processed is the terminal directory for auto-accepted invoices.
	Processed string `yaml:"processed"`

	// Review is where invoices awaiting a human decision are filed.
	Review string `yaml:"review"`

	// Approved is the terminal directory for human-approved invoices.
	Approved string `yaml:"approved"`

	// Rejected is the terminal directory for human-rejected invoices.
	Rejected string `yaml:"rejected"`
}

// All returns every directory in the taxonomy.
func (d DirectoryConfig) All() []string {
	return []string{d.Incoming, d.Processed, d.Review, d.Approved, d.Rejected}
}

// MonitorConfig holds ingestion monitor settings.
type MonitorConfig struct {
	// WorkerCount bounds the number of invoices processed concurrently.
	WorkerCount int `yaml:"worker_count"`

	// DebounceDelay is how long to wait after a create event before
	// reading the file, to let slow writers finish.
	DebounceDelay time.Duration `yaml:"debounce_delay"`

	// Extensions is the recognized document extension set (lowercase).
	Extensions []string `yaml:"extensions"`

	// HashStorePath is the SQLite file backing the processed-hash set.
	HashStorePath string `yaml:"hash_store_path"`
}

// ERPConfig holds ERP service connection settings.
type ERPConfig struct {
	// BaseURL is the ERP HTTP service base URL.
	BaseURL string `yaml:"base_url"`

	// Timeout is the hard per-request timeout for ERP lookups.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logger and audit log settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// JSONFormat enables JSON log output.
	JSONFormat bool `yaml:"json_format"`

	// EventLogPath is the JSONL audit event log file.
	EventLogPath string `yaml:"event_log_path"`
}

// Config is the full invaudit configuration.
type Config struct {
	Directories DirectoryConfig `yaml:"directories"`
	Monitor     MonitorConfig   `yaml:"monitor"`
	ERP         ERPConfig       `yaml:"erp"`
	Logging     LoggingConfig   `yaml:"logging"`

	// RulesPath is the YAML validation rules document.
	RulesPath string `yaml:"rules_path"`

	// ReviewerName is stamped onto finalized reports.
	ReviewerName string `yaml:"reviewer_name"`
}

// DefaultConfig returns a Config with sensible default values, rooted at
// the given base directory.
func DefaultConfig(baseDir string) *Config {
	dataDir := filepath.Join(baseDir, DefaultDataDir)
	reportsDir := filepath.Join(baseDir, DefaultReportsDir)

	return &Config{
		Directories: DirectoryConfig{
			Incoming:  filepath.Join(dataDir, "incoming"),
			Processed: filepath.Join(reportsDir, "auto-processed"),
			Review:    filepath.Join(reportsDir, "pending_review"),
			Approved:  filepath.Join(reportsDir, "approved"),
			Rejected:  filepath.Join(reportsDir, "rejected"),
		},
		Monitor: MonitorConfig{
			WorkerCount:   DefaultWorkerCount,
			DebounceDelay: DefaultDebounceDelay,
			Extensions:    append([]string(nil), DefaultExtensions...),
			HashStorePath: filepath.Join(dataDir, DefaultHashStoreFile),
		},
		ERP: ERPConfig{
			BaseURL: DefaultERPBaseURL,
			Timeout: DefaultERPTimeout,
		},
		Logging: LoggingConfig{
			Level:        "info",
			JSONFormat:   false,
			EventLogPath: filepath.Join(baseDir, DefaultEventLogFile),
		},
		RulesPath:    filepath.Join(baseDir, "config", DefaultRulesFile),
		ReviewerName: DefaultReviewerName,
	}
}

// fileConfig mirrors Config for YAML decoding. Durations are strings in the
// file ("3s", "500ms") and parsed with time.ParseDuration.
type fileConfig struct {
	Directories DirectoryConfig `yaml:"directories"`
	Monitor     struct {
		WorkerCount   int      `yaml:"worker_count"`
		DebounceDelay string   `yaml:"debounce_delay"`
		Extensions    []string `yaml:"extensions"`
		HashStorePath string   `yaml:"hash_store_path"`
	} `yaml:"monitor"`
	ERP struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"erp"`
	Logging      LoggingConfig `yaml:"logging"`
	RulesPath    string        `yaml:"rules_path"`
	ReviewerName string        `yaml:"reviewer_name"`
}

// Load reads configuration from a YAML file, applying defaults for any
// unset fields and environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig(".")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if err := cfg.applyFile(&fc); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile copies set fields from a decoded YAML file onto the config.
func (c *Config) applyFile(fc *fileConfig) error {
	if fc.Directories.Incoming != "" {
		c.Directories.Incoming = fc.Directories.Incoming
	}
	if fc.Directories.Processed != "" {
		c.Directories.Processed = fc.Directories.Processed
	}
	if fc.Directories.Review != "" {
		c.Directories.Review = fc.Directories.Review
	}
	if fc.Directories.Approved != "" {
		c.Directories.Approved = fc.Directories.Approved
	}
	if fc.Directories.Rejected != "" {
		c.Directories.Rejected = fc.Directories.Rejected
	}

	if fc.Monitor.WorkerCount != 0 {
		c.Monitor.WorkerCount = fc.Monitor.WorkerCount
	}
	if fc.Monitor.DebounceDelay != "" {
		d, err := time.ParseDuration(fc.Monitor.DebounceDelay)
		if err != nil {
			return fmt.Errorf("parsing monitor.debounce_delay: %w", err)
		}
		c.Monitor.DebounceDelay = d
	}
	if len(fc.Monitor.Extensions) > 0 {
		c.Monitor.Extensions = fc.Monitor.Extensions
	}
	if fc.Monitor.HashStorePath != "" {
		c.Monitor.HashStorePath = fc.Monitor.HashStorePath
	}

	if fc.ERP.BaseURL != "" {
		c.ERP.BaseURL = fc.ERP.BaseURL
	}
	if fc.ERP.Timeout != "" {
		d, err := time.ParseDuration(fc.ERP.Timeout)
		if err != nil {
			return fmt.Errorf("parsing erp.timeout: %w", err)
		}
		c.ERP.Timeout = d
	}

	if fc.Logging.Level != "" {
		c.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.JSONFormat {
		c.Logging.JSONFormat = true
	}
	if fc.Logging.EventLogPath != "" {
		c.Logging.EventLogPath = fc.Logging.EventLogPath
	}

	if fc.RulesPath != "" {
		c.RulesPath = fc.RulesPath
	}
	if fc.ReviewerName != "" {
		c.ReviewerName = fc.ReviewerName
	}
	return nil
}

// applyEnv overrides configuration from environment variables.
// Environment variables:
//   - INVAUDIT_INCOMING_DIR: inbox directory
//   - INVAUDIT_ERP_URL: ERP service base URL
//   - INVAUDIT_WORKERS: worker pool size
//   - INVAUDIT_RULES: validation rules file
//   - INVAUDIT_LOG_LEVEL: minimum log level
func (c *Config) applyEnv() {
	if v := os.Getenv("INVAUDIT_INCOMING_DIR"); v != "" {
		c.Directories.Incoming = v
	}
	if v := os.Getenv("INVAUDIT_ERP_URL"); v != "" {
		c.ERP.BaseURL = v
	}
	if v := os.Getenv("INVAUDIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Monitor.WorkerCount = n
		}
	}
	if v := os.Getenv("INVAUDIT_RULES"); v != "" {
		c.RulesPath = v
	}
	if v := os.Getenv("INVAUDIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the workflows cannot run with.
func (c *Config) Validate() error {
	if c.Monitor.WorkerCount < 1 {
		return fmt.Errorf("monitor.worker_count must be at least 1, got %d", c.Monitor.WorkerCount)
	}
	if c.ERP.Timeout <= 0 {
		return fmt.Errorf("erp.timeout must be positive, got %v", c.ERP.Timeout)
	}
	if len(c.Monitor.Extensions) == 0 {
		return fmt.Errorf("monitor.extensions must not be empty")
	}
	return nil
}

// EnsureDirectories creates every directory in the taxonomy if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range c.Directories.All() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
