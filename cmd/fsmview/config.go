package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pflow-xyz/go-fsmview/client"
)

// defaultBaseURL is where client commands look for the engine when no
// flag or config file says otherwise.
const defaultBaseURL = "http://localhost:8000"

// config is the optional YAML configuration shared by all commands.
// Flags take precedence over file values.
type config struct {
	BaseURL string `yaml:"base_url"`
	Listen  string `yaml:"listen"`
	Journal string `yaml:"journal"`
}

func loadConfig(path string) (*config, error) {
	cfg := &config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// resolveClient builds a service client from flag and config values.
func resolveClient(flagURL, configPath string) (*client.Client, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	baseURL := defaultBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if flagURL != "" {
		baseURL = flagURL
	}
	return client.New(baseURL), nil
}
