package postgres

import (
	"testing"
	"time"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.URL == "" {
		t.Fatalf("expected default URL")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestConfigValidate_RejectsIdleOverOpen(t *testing.T) {
	cfg := Config{
		URL:          "postgres://x",
		PingTimeout:  time.Second,
		MaxOpenConns: 2,
		MaxIdleConns: 5,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for idle > open")
	}
}

func TestConfigFromEnv_InvalidInt(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "lots")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("expected error for invalid int")
	}
}
