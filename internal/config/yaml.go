package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// InitConfig loads the YAML config at configPath over the defaults.
func InitConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %v", configPath, err)
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %v", configPath, err)
	}

	return conf, nil
}
