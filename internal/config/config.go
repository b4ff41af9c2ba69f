// Package config loads the YAML configuration of the résumé matcher.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fmuoria/resume-matcher/internal/logger"
)

// Annotator backends
const (
	BackendGazetteer = "gazetteer"
	BackendVertexAI  = "vertexai"
	BackendOpenAI    = "openai"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logger     logger.Config    `yaml:"logger"`
	Annotators AnnotatorsConfig `yaml:"annotators"`
	Google     GoogleConfig     `yaml:"google"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AnnotatorsConfig selects the generic and the skill annotator
type AnnotatorsConfig struct {
	Generic AnnotatorConfig `yaml:"generic"`
	Skill   AnnotatorConfig `yaml:"skill"`
}

// AnnotatorConfig configures one annotator instance
type AnnotatorConfig struct {
	Backend       string        `yaml:"backend"`
	GazetteerPath string        `yaml:"gazetteer_path,omitempty"`
	Timeout       time.Duration `yaml:"timeout"`
	CacheSize     int           `yaml:"cache_size"`
}

// GoogleConfig holds Vertex AI settings
type GoogleConfig struct {
	Project         string `yaml:"project"`
	Location        string `yaml:"location"`
	Model           string `yaml:"model"`
	CredentialsPath string `yaml:"credentials_path"`
}

// OpenAIConfig holds OpenAI settings. The API key is read from the
// environment and never written back to disk.
type OpenAIConfig struct {
	APIKey  string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 4 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Logger: logger.Config{
			Level:  "info",
			Format: "json",
		},
		Annotators: AnnotatorsConfig{
			Generic: AnnotatorConfig{
				Backend:   BackendVertexAI,
				Timeout:   30 * time.Second,
				CacheSize: 256,
			},
			Skill: AnnotatorConfig{
				Backend:   BackendGazetteer,
				CacheSize: 256,
			},
		},
		Google: GoogleConfig{
			Location: "us-central1",
		},
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/ResumeMatcher/config.yaml
// On Unix: ~/.config/ResumeMatcher/config.yaml
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "ResumeMatcher")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "ResumeMatcher")
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path. A missing file yields
// the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment.
// Variables that are already set win; a missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides configuration values from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		c.Google.Project = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
		c.Google.Location = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		c.Google.CredentialsPath = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if err := c.validateAnnotator("generic", c.Annotators.Generic, true); err != nil {
		return err
	}
	if err := c.validateAnnotator("skill", c.Annotators.Skill, false); err != nil {
		return err
	}

	if c.Google.CredentialsPath != "" {
		if _, err := os.Stat(c.Google.CredentialsPath); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}

	return nil
}

func (c *Config) validateAnnotator(name string, a AnnotatorConfig, needsPath bool) error {
	if a.Timeout < 0 {
		return fmt.Errorf("annotators.%s.timeout must not be negative", name)
	}

	switch a.Backend {
	case BackendGazetteer:
		if a.GazetteerPath == "" {
			if needsPath {
				return fmt.Errorf("annotators.%s.gazetteer_path is required", name)
			}
			return nil
		}
		if _, err := os.Stat(a.GazetteerPath); err != nil {
			return fmt.Errorf("%s gazetteer not found: %w", name, err)
		}
	case BackendVertexAI:
		if c.Google.Project == "" {
			return fmt.Errorf("google.project is required for the %s annotator", name)
		}
		if c.Google.Location == "" {
			return fmt.Errorf("google.location is required for the %s annotator", name)
		}
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the %s annotator", name)
		}
	default:
		return fmt.Errorf("annotators.%s.backend %q is not supported", name, a.Backend)
	}

	return nil
}
