package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for a benchmark run.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Host        string  `json:"host" yaml:"host" toml:"host"`
	Port        int     `json:"port" yaml:"port" toml:"port"`
	Backend     string  `json:"backend" yaml:"backend" toml:"backend"`
	Model       string  `json:"model" yaml:"model" toml:"model"`
	Dataset     string  `json:"dataset" yaml:"dataset" toml:"dataset"`
	NumPrompts  int     `json:"num_prompts" yaml:"num_prompts" toml:"num_prompts"`
	RequestRate float64 `json:"request_rate" yaml:"request_rate" toml:"request_rate"`
	BestOf      int     `json:"best_of" yaml:"best_of" toml:"best_of"`
	Seed        int64   `json:"seed" yaml:"seed" toml:"seed"`
	TimeoutSec  int     `json:"timeout_sec" yaml:"timeout_sec" toml:"timeout_sec"`
	Concurrency int     `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	OutputPath  string  `json:"output_path" yaml:"output_path" toml:"output_path"`
	DBPath      string  `json:"db_path" yaml:"db_path" toml:"db_path"`
	LogLevel    string  `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
