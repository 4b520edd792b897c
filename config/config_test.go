package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  response_topic: "schedule/+/response"
  use_tls: false
changelog:
  backend: "sqlite"
  path: "schedule.db"
sync:
  interval_seconds: 15
  timeout_seconds: 4
  participants:
    - "robot-1"
metrics:
  sinks:
    - type: "nop"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"response_topic", cfg.MQTT.ResponseTopic, "schedule/+/response"},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"changelog_backend", cfg.Changelog.Backend, "sqlite"},
		{"changelog_path", cfg.Changelog.Path, "schedule.db"},
		{"sync_interval", cfg.Sync.IntervalSeconds, 15},
		{"sync_timeout", cfg.Sync.TimeoutSeconds, 4},
		{"sync_participants", len(cfg.Sync.Participants) == 1 && cfg.Sync.Participants[0] == "robot-1", true},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x=1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
