// Package config loads ThreatLens settings from the environment, an optional
// .env file, and an optional YAML file. Environment values win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/acheong08/threatlens/internal/analysis"
	"github.com/acheong08/threatlens/internal/registry"
)

// DefaultFile is read when THREATLENS_CONFIG is unset
const DefaultFile = "threatlens.yaml"

// Config holds all environment configuration
type Config struct {
	// Server
	Port      string `yaml:"port"`
	Env       string `yaml:"env"`
	StaticDir string `yaml:"static_dir"`

	// Model
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
	LLMBaseURL   string `yaml:"llm_base_url"`

	// Registry
	RegistryURL string `yaml:"npm_registry_url"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Port:        "3001",
		Env:         "development",
		StaticDir:   "public",
		GeminiModel: analysis.DefaultModel,
		LLMBaseURL:  analysis.DefaultBaseURL,
		RegistryURL: registry.DefaultRegistryURL,
	}
}

// Load reads .env (if present), the YAML file named by THREATLENS_CONFIG
// (if present), and the environment, in increasing priority.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	path := getEnv("THREATLENS_CONFIG", DefaultFile)
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("APP_ENV", getEnv("NODE_ENV", cfg.Env))
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.RegistryURL = getEnv("NPM_REGISTRY_URL", cfg.RegistryURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a YAML config over the defaults. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return merge(cfg, file), nil
}

// merge overlays non-empty values from override onto base
func merge(base, override Config) Config {
	result := base
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&result.Port, override.Port)
	set(&result.Env, override.Env)
	set(&result.StaticDir, override.StaticDir)
	set(&result.GeminiAPIKey, override.GeminiAPIKey)
	set(&result.GeminiModel, override.GeminiModel)
	set(&result.LLMBaseURL, override.LLMBaseURL)
	set(&result.RegistryURL, override.RegistryURL)
	return result
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	return nil
}

// Production reports whether internal error details must be hidden
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
