// Package config decodes the agent core runtime's on-disk configuration.
package config

// Config is the root configuration structure for the agent core runtime.
type Config struct {
	Version       int                 `yaml:"version"`
	LLM           LLMConfig           `yaml:"llm"`
	Session       SessionConfig       `yaml:"session"`
	Compaction    CompactionConfig    `yaml:"compaction"`
	Steering      SteeringConfig      `yaml:"steering"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// LLMConfig selects and authenticates the default model provider.
type LLMConfig struct {
	DefaultProvider string                       `yaml:"default_provider"`
	DefaultModel    string                       `yaml:"default_model"`
	ThinkingLevel   string                       `yaml:"thinking_level"`
	MaxRetryDelayMs int                          `yaml:"max_retry_delay_ms"`
	Providers       map[string]LLMProviderConfig `yaml:"providers"`
}

// LLMProviderConfig holds per-provider credentials and overrides.
type LLMProviderConfig struct {
	APIKeyEnv    string `yaml:"api_key_env"`
	DefaultModel string `yaml:"default_model"`
	BaseURL      string `yaml:"base_url"`
}

// SessionConfig configures the on-disk session store (§4.5).
type SessionConfig struct {
	// Directory is the root under which per-cwd session files are kept.
	// Defaults to "~/.agentcore/sessions".
	Directory string `yaml:"directory"`
}

// CompactionConfig mirrors the enumerated options of §4.4.
type CompactionConfig struct {
	Enabled          bool `yaml:"enabled"`
	ReserveTokens    int  `yaml:"reserve_tokens"`
	KeepRecentTokens int  `yaml:"keep_recent_tokens"`
	ContextWindow    int  `yaml:"context_window"`
}

// SteeringConfig selects the drain mode for both queues (§4.6).
type SteeringConfig struct {
	SteeringMode string `yaml:"steering_mode"`
	FollowUpMode string `yaml:"follow_up_mode"`
}

// Default returns a Config populated with the defaults named throughout §4 and §10.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		LLM: LLMConfig{
			DefaultProvider: "anthropic",
			ThinkingLevel:   "off",
			MaxRetryDelayMs: 60000,
		},
		Session: SessionConfig{
			Directory: "~/.agentcore/sessions",
		},
		Compaction: CompactionConfig{
			Enabled:          true,
			ReserveTokens:    16384,
			KeepRecentTokens: 20000,
			ContextWindow:    100000,
		},
		Steering: SteeringConfig{
			SteeringMode: "one-at-a-time",
			FollowUpMode: "one-at-a-time",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and decodes a configuration file, applying defaults for anything unset.
func Load(path string) (*Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := ValidateVersion(cfg.Version); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.Version == 0 {
		cfg.Version = d.Version
	}
	if cfg.LLM.DefaultProvider == "" {
		cfg.LLM.DefaultProvider = d.LLM.DefaultProvider
	}
	if cfg.LLM.ThinkingLevel == "" {
		cfg.LLM.ThinkingLevel = d.LLM.ThinkingLevel
	}
	if cfg.LLM.MaxRetryDelayMs == 0 {
		cfg.LLM.MaxRetryDelayMs = d.LLM.MaxRetryDelayMs
	}
	if cfg.Session.Directory == "" {
		cfg.Session.Directory = d.Session.Directory
	}
	if cfg.Compaction.ReserveTokens == 0 {
		cfg.Compaction.ReserveTokens = d.Compaction.ReserveTokens
	}
	if cfg.Compaction.KeepRecentTokens == 0 {
		cfg.Compaction.KeepRecentTokens = d.Compaction.KeepRecentTokens
	}
	if cfg.Compaction.ContextWindow == 0 {
		cfg.Compaction.ContextWindow = d.Compaction.ContextWindow
	}
	if cfg.Steering.SteeringMode == "" {
		cfg.Steering.SteeringMode = d.Steering.SteeringMode
	}
	if cfg.Steering.FollowUpMode == "" {
		cfg.Steering.FollowUpMode = d.Steering.FollowUpMode
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
}
