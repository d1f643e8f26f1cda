package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// Duration decodes yaml scalars like "30s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: invalid duration: %w", err)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Models     map[string]ModelConfig `yaml:"models"`
	Evaluation EvaluationConfig       `yaml:"evaluation"`
	Datasets   DatasetConfig          `yaml:"datasets"`
	Storage    StorageConfig          `yaml:"storage"`
}

// ModelConfig describes one entry in the model registry.
type ModelConfig struct {
	Provider     string  `yaml:"provider"` // "openai", "claude", or any OpenAI-compatible endpoint
	Model        string  `yaml:"model,omitempty"`
	APIKey       string  `yaml:"api_key,omitempty"`
	BaseURL      string  `yaml:"base_url,omitempty"`
	SystemPrompt string  `yaml:"system_prompt,omitempty"`
	Temperature  float64 `yaml:"temperature,omitempty"`
	MaxTokens    int     `yaml:"max_tokens,omitempty"`
	Parallelism  int     `yaml:"parallelism,omitempty"` // per-model cap on in-flight calls
}

type EvaluationConfig struct {
	MaxWorkers int      `yaml:"max_workers,omitempty"`
	NoCache    bool     `yaml:"no_cache,omitempty"`
	Timeout    Duration `yaml:"timeout,omitempty"`
	Retries    int      `yaml:"retries,omitempty"`
}

type DatasetConfig struct {
	Dir         string `yaml:"dir,omitempty"`
	Version     string `yaml:"version,omitempty"`
	NumExamples int    `yaml:"num_examples,omitempty"`
}

type StorageConfig struct {
	CachePath       string `yaml:"cache_path,omitempty"`
	LeaderboardPath string `yaml:"leaderboard_path,omitempty"`
}

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if cfg.Models == nil {
		cfg.Models = make(map[string]ModelConfig)
	}

	applyDefaults(&cfg)
	applyEnvKeys(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Evaluation.MaxWorkers <= 0 {
		cfg.Evaluation.MaxWorkers = 4
	}
	if cfg.Evaluation.Timeout <= 0 {
		cfg.Evaluation.Timeout = Duration(2 * time.Minute)
	}
	if cfg.Evaluation.Retries <= 0 {
		cfg.Evaluation.Retries = 3
	}
	if strings.TrimSpace(cfg.Datasets.Version) == "" {
		cfg.Datasets.Version = "v1"
	}
	if strings.TrimSpace(cfg.Storage.CachePath) == "" {
		cfg.Storage.CachePath = "data/cache.db"
	}
	if strings.TrimSpace(cfg.Storage.LeaderboardPath) == "" {
		cfg.Storage.LeaderboardPath = "data/leaderboard.db"
	}

	for id, mc := range cfg.Models {
		if strings.TrimSpace(mc.Provider) == "" {
			mc.Provider = "openai"
		}
		if mc.MaxTokens <= 0 {
			mc.MaxTokens = 1024
		}
		cfg.Models[id] = mc
	}
}

func applyEnvKeys(cfg *Config) {
	openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	claudeKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if claudeKey == "" {
		claudeKey = strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN"))
	}

	for id, mc := range cfg.Models {
		if strings.TrimSpace(mc.APIKey) != "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(mc.Provider)) {
		case "claude", "anthropic":
			mc.APIKey = claudeKey
		default:
			mc.APIKey = openaiKey
		}
		cfg.Models[id] = mc
	}
}
