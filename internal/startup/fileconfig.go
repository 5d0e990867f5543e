package startup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"photo-gallery/internal/logging"
)

// fileConfig is the optional YAML configuration file. Every key mirrors an
// environment variable and loses to it.
type fileConfig map[string]any

// loadFileConfig reads the YAML file at path. An empty path means no file;
// a named file that is missing or malformed is a startup error, not a
// silent fallback.
func loadFileConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CONFIG_FILE %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing CONFIG_FILE %s: %w", path, err)
	}
	logging.Info("Loaded configuration file %s (%d keys)", path, len(cfg))
	return cfg, nil
}

func (c fileConfig) str(key, def string) string {
	if v, ok := c[key].(string); ok && v != "" {
		return v
	}
	return def
}

func (c fileConfig) boolean(key string, def bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return def
}

func (c fileConfig) integer(key string, def int) int {
	if v, ok := c[key].(int); ok {
		return v
	}
	return def
}
