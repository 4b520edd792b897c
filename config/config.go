package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/LanderU/rmf-core/core/metrics"
	"github.com/LanderU/rmf-core/infra/mqtt"
)

// Config is the top-level configuration for a schedule node: its MQTT
// reference transport, its changelog persistence backend, participant
// sync settings, metrics sinks, logging and monitoring.
type Config struct {
	MQTT      mqtt.Config     `json:"mqtt"`
	Changelog ChangelogConfig `json:"changelog"`
	Sync      SyncConfig      `json:"sync"`
	Metrics   metrics.Config  `json:"metrics"`
	Sentry    SentryConfig    `json:"sentry"`
	// APIAddr, when non-empty, serves the api/schedule HTTP reference
	// transport on this address alongside the MQTT one.
	APIAddr string `json:"api_addr"`
}

// Load reads a YAML or JSON config file at path, applies K_-prefixed
// environment overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Changelog.SetDefaults()
	if err := cfg.Changelog.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
