package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if cfg.App.Port == "" {
		t.Error("Expected a default app port")
	}
	if cfg.JWT.AccessTTL <= 0 || cfg.JWT.RefreshTTL <= 0 {
		t.Error("Expected positive token lifetimes")
	}
	if cfg.JWT.AccessTTL >= cfg.JWT.RefreshTTL {
		t.Error("Expected the refresh token to outlive the access token")
	}
	if cfg.JWT.AccessSecret == cfg.JWT.RefreshSecret {
		t.Error("Expected independent token secrets")
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "5m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "48h")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("MEDIA_USE_SSL", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("Expected production environment")
	}
	if cfg.JWT.AccessTTL != 5*time.Minute {
		t.Errorf("Expected 5m access TTL, got %v", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.RefreshTTL != 48*time.Hour {
		t.Errorf("Expected 48h refresh TTL, got %v", cfg.JWT.RefreshTTL)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("Expected DB port 5433, got %d", cfg.Database.Port)
	}
	if !cfg.Media.UseSSL {
		t.Error("Expected media SSL enabled")
	}
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Expected the default port for a malformed value, got %d", cfg.Database.Port)
	}
	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Errorf("Expected the default TTL for a malformed value, got %v", cfg.JWT.AccessTTL)
	}
}

func TestConnectionStrings(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "db.internal",
			Port:     5432,
			Name:     "accounts",
			User:     "svc",
			Password: "pw",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{Host: "cache.internal", Port: 6380},
	}

	want := "host=db.internal port=5432 user=svc password=pw dbname=accounts sslmode=disable"
	if got := cfg.DatabaseConnectionString(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if got := cfg.RedisAddress(); got != "cache.internal:6380" {
		t.Errorf("Expected cache.internal:6380, got %q", got)
	}
}
