package config

import "testing"

func TestSyncConfigDefaults(t *testing.T) {
	c := SyncConfig{}
	if c.Interval() != 10 {
		t.Errorf("expected default interval 10, got %d", c.Interval())
	}
	if c.Timeout() != 3 {
		t.Errorf("expected default timeout 3, got %d", c.Timeout())
	}
}

func TestSyncConfigValues(t *testing.T) {
	c := SyncConfig{IntervalSeconds: 30, TimeoutSeconds: 5, Participants: []string{"robot-1", "robot-2"}}
	if c.Interval() != 30 {
		t.Errorf("expected interval 30, got %d", c.Interval())
	}
	if c.Timeout() != 5 {
		t.Errorf("expected timeout 5, got %d", c.Timeout())
	}
	if len(c.Participants) != 2 {
		t.Errorf("expected 2 participants, got %d", len(c.Participants))
	}
}
