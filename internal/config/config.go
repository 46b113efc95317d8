package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codegangsta/cardfetcher/internal/match"
	"github.com/codegangsta/cardfetcher/internal/types"
)

// TelegramConfig holds Telegram-specific settings
type TelegramConfig struct {
	Token string `yaml:"token"` // Bot token from @BotFather
}

// ScryfallConfig holds card API settings
type ScryfallConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// MatchConfig selects the match policy, optionally per target
type MatchConfig struct {
	Policy    string            `yaml:"policy"`    // strict | lenient
	Threshold float32           `yaml:"threshold"` // Jaro-Winkler cutoff for strict
	Targets   map[string]string `yaml:"targets"`   // target name -> policy
}

// MetricsConfig holds the ops endpoint settings
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables /metrics and /healthz
}

// Config holds the cardfetcher configuration
type Config struct {
	Telegram     TelegramConfig `yaml:"telegram"`
	Allowlist    []int64        `yaml:"allowlist"`     // Telegram user IDs; empty allows everyone
	LogFile      string         `yaml:"log_file"`      // path to log file
	ChatLogFile  string         `yaml:"chat_log_file"` // path to inbound chat log
	Debug        bool           `yaml:"debug"`         // enable debug logging
	KeywordsFile string         `yaml:"keywords_file"` // keyword -> rules text mapping
	Scryfall     ScryfallConfig `yaml:"scryfall"`
	Match        MatchConfig    `yaml:"match"`
	Metrics      MetricsConfig  `yaml:"metrics"`
}

// Load reads and parses the config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Match.Policy == "" {
		c.Match.Policy = match.Strict.String()
	}
	if c.Match.Threshold == 0 {
		c.Match.Threshold = match.DefaultThreshold
	}
}

// Validate checks required fields and policy names
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}

	if c.KeywordsFile == "" {
		return fmt.Errorf("keywords_file is required")
	}

	if c.Scryfall.Timeout < 0 {
		return fmt.Errorf("scryfall.timeout cannot be negative")
	}

	if c.Match.Threshold <= 0 || c.Match.Threshold >= 1 {
		return fmt.Errorf("match.threshold must be between 0 and 1, got %v", c.Match.Threshold)
	}

	if _, err := c.Policies(); err != nil {
		return err
	}

	return nil
}

// Policies builds the per-target matchers described by the match section
func (c *Config) Policies() (match.Policies, error) {
	threshold := c.Match.Threshold
	if threshold == 0 {
		threshold = match.DefaultThreshold
	}

	def, err := match.ParsePolicy(c.Match.Policy)
	if err != nil {
		return match.Policies{}, fmt.Errorf("match.policy: %w", err)
	}

	p := match.Policies{
		Default:   match.Matcher{Policy: def, Threshold: threshold},
		PerTarget: make(map[types.Target]match.Matcher, len(c.Match.Targets)),
	}
	for name, policy := range c.Match.Targets {
		target, err := types.ParseTarget(name)
		if err != nil {
			return match.Policies{}, fmt.Errorf("match.targets: %w", err)
		}
		pol, err := match.ParsePolicy(policy)
		if err != nil {
			return match.Policies{}, fmt.Errorf("match.targets.%s: %w", name, err)
		}
		p.PerTarget[target] = match.Matcher{Policy: pol, Threshold: threshold}
	}

	return p, nil
}

// IsAllowed checks if the given Telegram user ID may use the bot
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.Allowlist) == 0 {
		return true
	}
	for _, allowed := range c.Allowlist {
		if allowed == userID {
			return true
		}
	}
	return false
}
