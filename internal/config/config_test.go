package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DefaultDayOff != time.Friday {
		t.Errorf("expected default day off Friday, got %s", cfg.DefaultDayOff)
	}
	if len(cfg.DefaultSlots) != 4 {
		t.Errorf("expected 4 default slots, got %d", len(cfg.DefaultSlots))
	}
	if len(cfg.PhonePrefixes) != 3 {
		t.Errorf("expected 3 phone prefixes, got %d", len(cfg.PhonePrefixes))
	}
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("DEFAULT_SLOTS", "09:00, 10:00 ,,11:00")
	cfg := Load()
	want := []string{"09:00", "10:00", "11:00"}
	if len(cfg.DefaultSlots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(cfg.DefaultSlots))
	}
	for i, s := range want {
		if cfg.DefaultSlots[i] != s {
			t.Errorf("slot %d: expected %q, got %q", i, s, cfg.DefaultSlots[i])
		}
	}
}

func TestGetEnvAsWeekday(t *testing.T) {
	t.Setenv("DEFAULT_DAY_OFF", "sunday")
	if cfg := Load(); cfg.DefaultDayOff != time.Sunday {
		t.Errorf("expected Sunday, got %s", cfg.DefaultDayOff)
	}

	t.Setenv("DEFAULT_DAY_OFF", "not-a-day")
	if cfg := Load(); cfg.DefaultDayOff != time.Friday {
		t.Errorf("expected fallback Friday, got %s", cfg.DefaultDayOff)
	}
}
