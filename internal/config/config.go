package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of the planning service. Values resolve in
// order: defaults, then the optional YAML file, then environment variables.
type Config struct {
	Port    string `yaml:"port"`
	Model   string `yaml:"model"`
	Offline bool   `yaml:"offline"` // use the fake planner client

	MaxIterations        int `yaml:"max_iterations"`
	MaxToolCallsPerRound int `yaml:"max_tool_calls_per_round"`

	ToolTimeout  time.Duration `yaml:"tool_timeout"`
	VisaCacheTTL time.Duration `yaml:"visa_cache_ttl"`

	LLMRetries int     `yaml:"llm_retries"`
	LLMRPS     float64 `yaml:"llm_rps"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Port:                 ":8080",
		Model:                "gemini-2.5-flash",
		MaxIterations:        5,
		MaxToolCallsPerRound: 4,
		ToolTimeout:          10 * time.Second,
		VisaCacheTTL:         30 * time.Minute,
		LLMRetries:           2,
	}
}

// Load reads the optional YAML file at path (empty path skips the file) and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TRIPFLOW_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("TRIPFLOW_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("TRIPFLOW_OFFLINE"); v != "" {
		c.Offline, _ = strconv.ParseBool(v)
	}
	if n := envInt("TRIPFLOW_MAX_ITERATIONS"); n > 0 {
		c.MaxIterations = n
	}
	if n := envInt("TRIPFLOW_MAX_TOOL_CALLS"); n > 0 {
		c.MaxToolCallsPerRound = n
	}
	if d := envDuration("TRIPFLOW_TOOL_TIMEOUT"); d > 0 {
		c.ToolTimeout = d
	}
	if d := envDuration("TRIPFLOW_VISA_CACHE_TTL"); d > 0 {
		c.VisaCacheTTL = d
	}
	if n := envInt("TRIPFLOW_LLM_RETRIES"); n > 0 {
		c.LLMRetries = n
	}
	if v := os.Getenv("TRIPFLOW_LLM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.LLMRPS = f
		}
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, _ := strconv.Atoi(v)
	return n
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, _ := time.ParseDuration(v)
	return d
}
