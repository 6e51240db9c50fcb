package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Mode != ModeOffline || cfg.HTTPAddr != ":8080" || cfg.DBDriver != "memory" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.MaxUploadMB != 256 {
		t.Fatalf("max upload = %d", cfg.MaxUploadMB)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MAX_UPLOAD_MB", "64")
	t.Setenv("CORS_ORIGINS_ONLINE", "https://a.example, https://b.example")
	cfg := FromEnv()
	if cfg.Mode != ModeOnline || cfg.DBDriver != "sqlite" || cfg.MaxUploadMB != 64 {
		t.Fatalf("cfg = %+v", cfg)
	}
	origins := cfg.CORSOrigins()
	if len(origins) != 2 || origins[1] != "https://b.example" {
		t.Fatalf("origins = %v", origins)
	}
}

func TestYAMLOverlayThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "http_addr: \":9090\"\ndb_driver: postgres\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_DRIVER", "sqlite")
	cfg := FromEnv()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("yaml overlay not applied: %+v", cfg)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("env must override yaml: %+v", cfg)
	}
}
