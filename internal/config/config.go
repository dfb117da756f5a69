package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Extension bridge that relays highlight/focus requests to tabs.
	BridgeURL    string `yaml:"bridge_url"`
	BridgeAPIKey string `yaml:"bridge_api_key"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Scan state
	ScanTTL     time.Duration `yaml:"scan_ttl"`
	StatsWindow time.Duration `yaml:"stats_window"`

	// Preferences
	PrefsPath              string `yaml:"prefs_path"`
	DefaultIncludeHiddenAT bool   `yaml:"default_include_hidden_at"`

	// MCP endpoint
	MCPEnabled bool `yaml:"mcp_enabled"`
}

func defaults() Config {
	return Config{
		Port:           "8091",
		WorkerCount:    2,
		MaxQueueSize:   100,
		MaxUploadBytes: 10485760, // 10MB
		ScanTTL:        30 * time.Minute,
		StatsWindow:    time.Hour,
		PrefsPath:      "outliner.db",
		MCPEnabled:     true,
	}
}

// Load reads the optional YAML file named by OUTLINER_CONFIG, then applies
// environment overrides.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("OUTLINER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("OUTLINER_API_KEY", cfg.APIKey)
	cfg.BridgeURL = envOr("BRIDGE_URL", cfg.BridgeURL)
	cfg.BridgeAPIKey = envOr("BRIDGE_API_KEY", cfg.BridgeAPIKey)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.ScanTTL = envDuration("SCAN_TTL", cfg.ScanTTL)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.PrefsPath = envOr("PREFS_PATH", cfg.PrefsPath)
	cfg.DefaultIncludeHiddenAT = envBool("DEFAULT_INCLUDE_HIDDEN_AT", cfg.DefaultIncludeHiddenAT)
	cfg.MCPEnabled = envBool("MCP_ENABLED", cfg.MCPEnabled)

	d := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.ScanTTL <= 0 {
		cfg.ScanTTL = d.ScanTTL
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = d.StatsWindow
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OUTLINER_API_KEY is required")
	}
	if c.PrefsPath == "" {
		return fmt.Errorf("PREFS_PATH must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
