package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("SSE_HEARTBEAT", "")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := Config{HTTPAddr: ":8080", LogLevel: "info", Heartbeat: 15 * time.Second}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SSE_HEARTBEAT", "5s")
	cfg, err := Load([]string{"-addr", "127.0.0.1:7000"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:7000" {
		t.Fatalf("flag should override env, got %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" || cfg.Heartbeat != 5*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("SSE_HEARTBEAT", "soon")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Heartbeat != 15*time.Second {
		t.Fatalf("expected default heartbeat, got %v", cfg.Heartbeat)
	}
}

func TestLoadUnknownFlag(t *testing.T) {
	if _, err := Load([]string{"-nope"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
