package config

import (
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode   `yaml:"mode"`
	HTTPAddr  string `yaml:"http_addr"`
	PublicURL string `yaml:"public_url"`

	DBDriver string `yaml:"db_driver"` // memory|sqlite|postgres
	DBDSN    string `yaml:"db_dsn"`

	BlobBasePath string `yaml:"blob_base_path"`

	EnableLocalAuth bool   `yaml:"enable_local_auth"`
	AuthHMACSecret  string `yaml:"auth_hmac_secret"`
	AdminUser       string `yaml:"admin_user"`
	AdminPassHash   string `yaml:"admin_pass_hash"` // bcrypt

	MaxUploadMB int64 `yaml:"max_upload_mb"`

	CORSOriginsOnline  []string `yaml:"cors_origins_online"`
	CORSOriginsOffline []string `yaml:"cors_origins_offline"`
}

// FromEnv builds the config from environment variables. When CONFIG_FILE
// points at a YAML file it is loaded first and env vars override it.
func FromEnv() Config {
	cfg := Config{
		Mode:               ModeOffline,
		HTTPAddr:           ":8080",
		DBDriver:           "memory",
		BlobBasePath:       "./data",
		EnableLocalAuth:    true,
		AuthHMACSecret:     "supersecret-dev-key",
		AdminUser:          "admin",
		AdminPassHash:      "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji",
		MaxUploadMB:        256,
		CORSOriginsOnline:  []string{"https://inspect.mindengage.ai"},
		CORSOriginsOffline: []string{"http://localhost:3000", "http://localhost:3010"},
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &cfg)
		}
	}

	if v := os.Getenv("MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	cfg.HTTPAddr = envOr("HTTP_ADDR", cfg.HTTPAddr)
	cfg.PublicURL = envOr("PUBLIC_URL", cfg.PublicURL)
	cfg.DBDriver = envOr("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = envOr("DB_DSN", cfg.DBDSN)
	cfg.BlobBasePath = envOr("BLOB_BASE_PATH", cfg.BlobBasePath)
	cfg.EnableLocalAuth = envBool("ENABLE_LOCAL_AUTH", cfg.EnableLocalAuth)
	cfg.AuthHMACSecret = envOr("AUTH_HMAC_SECRET", cfg.AuthHMACSecret)
	cfg.AdminUser = envOr("ADMIN_USER", cfg.AdminUser)
	cfg.AdminPassHash = envOr("ADMIN_PASS_HASH", cfg.AdminPassHash)
	cfg.MaxUploadMB = envInt64("MAX_UPLOAD_MB", cfg.MaxUploadMB)
	cfg.CORSOriginsOnline = csvOr("CORS_ORIGINS_ONLINE", cfg.CORSOriginsOnline)
	cfg.CORSOriginsOffline = csvOr("CORS_ORIGINS_OFFLINE", cfg.CORSOriginsOffline)
	return cfg
}

func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
