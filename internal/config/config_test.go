package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.LoginTimeout != 20*time.Second {
		t.Errorf("LoginTimeout = %v, want 20s", cfg.LoginTimeout)
	}
	if cfg.SessionFile == "" {
		t.Error("SessionFile should have a default")
	}
	if cfg.GatewayURL == "" {
		t.Error("GatewayURL should have a default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("LOGIN_TIMEOUT", "5")

	cfg := Load()

	if cfg.ServerPort != "9999" {
		t.Errorf("ServerPort = %q, want 9999", cfg.ServerPort)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("DatabaseType = %q, want postgres", cfg.DatabaseType)
	}
	if cfg.LoginTimeout != 5*time.Second {
		t.Errorf("LoginTimeout = %v, want 5s", cfg.LoginTimeout)
	}
}

func TestLoginTimeoutRejectsGarbage(t *testing.T) {
	for _, value := range []string{"abc", "-3", "0"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("LOGIN_TIMEOUT", value)
			if cfg := Load(); cfg.LoginTimeout != 20*time.Second {
				t.Errorf("LoginTimeout = %v, want the 20s default", cfg.LoginTimeout)
			}
		})
	}
}
