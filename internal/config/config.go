// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures the text-generation collaborator
type LLMConfig struct {
	APIKey           string  `yaml:"api_key,omitempty"`
	BaseURL          string  `yaml:"base_url,omitempty"`
	Model            string  `yaml:"model,omitempty"`
	JudgeModel       string  `yaml:"judge_model,omitempty"`
	Temperature      float64 `yaml:"temperature,omitempty"`
	JudgeTemperature float64 `yaml:"judge_temperature,omitempty"`
	TimeoutSeconds   int     `yaml:"timeout_seconds,omitempty"`
}

// DebateConfig configures the controller
type DebateConfig struct {
	Participants      []string `yaml:"participants,omitempty"`
	MaxRounds         int      `yaml:"max_rounds,omitempty"`
	FailurePolicy     string   `yaml:"failure_policy,omitempty"` // skip | abort
	RejectLimit       int      `yaml:"reject_limit,omitempty"`
	GenerationRetries int      `yaml:"generation_retries,omitempty"`
	JudgeRetries      int      `yaml:"judge_retries,omitempty"`
}

// ValidatorConfig configures the argument gate thresholds
type ValidatorConfig struct {
	MinWords      int     `yaml:"min_words,omitempty"`
	MinChars      int     `yaml:"min_chars,omitempty"`
	MaxSimilarity float64 `yaml:"max_similarity,omitempty"`
	NoveltyWindow int     `yaml:"novelty_window,omitempty"`
}

// MemoryConfig configures per-agent memory pruning
type MemoryConfig struct {
	Window         int     `yaml:"window,omitempty"`
	RelevanceFloor float64 `yaml:"relevance_floor,omitempty"`
}

// Config is the fully-resolved configuration the core receives. It is built
// once at startup; nothing merges partial configs at runtime.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Debate    DebateConfig    `yaml:"debate"`
	Validator ValidatorConfig `yaml:"validator"`
	Memory    MemoryConfig    `yaml:"memory"`
}

// Load reads the config file, expands environment variables, and applies
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.JudgeModel == "" {
		cfg.LLM.JudgeModel = "gpt-4o"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.JudgeTemperature == 0 {
		cfg.LLM.JudgeTemperature = 0.3
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 60
	}

	if len(cfg.Debate.Participants) == 0 {
		cfg.Debate.Participants = []string{"scientist", "philosopher"}
	}
	if cfg.Debate.MaxRounds == 0 {
		cfg.Debate.MaxRounds = 3
	}
	if cfg.Debate.FailurePolicy == "" {
		cfg.Debate.FailurePolicy = "skip"
	}
	if cfg.Debate.RejectLimit == 0 {
		cfg.Debate.RejectLimit = 2
	}
	if cfg.Debate.GenerationRetries == 0 {
		cfg.Debate.GenerationRetries = 2
	}
	if cfg.Debate.JudgeRetries == 0 {
		cfg.Debate.JudgeRetries = 2
	}

	if cfg.Validator.MinWords == 0 {
		cfg.Validator.MinWords = 10
	}
	if cfg.Validator.MinChars == 0 {
		cfg.Validator.MinChars = 20
	}
	if cfg.Validator.MaxSimilarity == 0 {
		cfg.Validator.MaxSimilarity = 0.7
	}
	if cfg.Validator.NoveltyWindow == 0 {
		cfg.Validator.NoveltyWindow = 5
	}

	if cfg.Memory.Window == 0 {
		cfg.Memory.Window = 6
	}
	if cfg.Memory.RelevanceFloor == 0 {
		cfg.Memory.RelevanceFloor = 0.5
	}
}

// ConfigPath returns the default config file location
func ConfigPath() string {
	configDir, _ := os.UserConfigDir()
	if configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return filepath.Join(configDir, "podium", "config.yaml")
}

// DataDir returns the directory for the debate database and reports
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "podium"), nil
}
