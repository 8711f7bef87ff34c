package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected missing file to be fine: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DBPath != "taskhive.db" {
		t.Errorf("Expected default db path, got %s", cfg.DBPath)
	}
	if cfg.JWT.TTL != 24*time.Hour {
		t.Errorf("Expected default TTL 24h, got %v", cfg.JWT.TTL)
	}
	if cfg.Email.Provider != "none" {
		t.Errorf("Expected default email provider none, got %s", cfg.Email.Provider)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("port: \"9090\"\ndbPath: /tmp/test.db\njwt:\n  secret: file-secret\nemail:\n  provider: smtp\n  smtp:\n    host: mail.example.com\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected db path from file, got %s", cfg.DBPath)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Errorf("Expected secret from file, got %s", cfg.JWT.Secret)
	}
	if cfg.Email.SMTP.Host != "mail.example.com" {
		t.Errorf("Expected smtp host from file, got %s", cfg.Email.SMTP.Host)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Expected env to win over file, got %s", cfg.Port)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("Expected secret from env, got %s", cfg.JWT.Secret)
	}
}
