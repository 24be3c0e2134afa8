package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for clinsight-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values.
// Secrets (API keys, warehouse tokens) must only come from environment
// variables.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// LLM endpoint configuration
	LLM LLMConfig `yaml:"llm"`

	// SQL warehouse configuration
	Warehouse WarehouseConfig `yaml:"warehouse"`

	// Data and asset paths
	Paths PathsConfig `yaml:"paths"`
}

// LLMConfig holds the language model endpoint settings.
type LLMConfig struct {
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`
}

// WarehouseConfig holds Spark SQL warehouse connection settings.
type WarehouseConfig struct {
	ServerHostname string `yaml:"server_hostname" env:"WAREHOUSE_SERVER_HOSTNAME" env-default:""`
	HTTPPath       string `yaml:"http_path" env:"WAREHOUSE_HTTP_PATH" env-default:""`
	AccessToken    string `yaml:"-" env:"WAREHOUSE_ACCESS_TOKEN"` // Secret - not in YAML
	MaxRows        int    `yaml:"max_rows" env:"WAREHOUSE_MAX_ROWS" env-default:"10000"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"WAREHOUSE_TIMEOUT_SECONDS" env-default:"120"`
}

// PathsConfig holds locations of the file-backed data sources.
type PathsConfig struct {
	SchemaCSV    string `yaml:"schema_csv" env:"SCHEMA_CSV_PATH" env-default:"assets/schema/clinical_schema_rag.csv"`
	ReferenceDir string `yaml:"reference_dir" env:"REFERENCE_DIR" env-default:"assets/reference"`
	RecipesDir   string `yaml:"recipes_dir" env:"RECIPES_DIR" env-default:"recipes"`
	PromptsDir   string `yaml:"prompts_dir" env:"PROMPTS_DIR" env-default:"prompts"`
}

// IsConfigured returns true if warehouse credentials are present.
func (w *WarehouseConfig) IsConfigured() bool {
	return w.ServerHostname != "" && w.HTTPPath != "" && w.AccessToken != ""
}

// Load reads configuration from the given YAML file with environment
// variable overrides. Missing required fields or data paths are fatal:
// they represent unrecoverable misconfiguration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		// No config file; environment variables only.
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLM.Endpoint == "" {
		return fmt.Errorf("llm endpoint is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.Paths.SchemaCSV == "" {
		return fmt.Errorf("schema csv path is required")
	}
	return nil
}
