package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp runs the test from an empty directory so a developer's .env
// cannot leak into the assertions.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE_BACKEND", "SPREADSHEET_NAME", "SPREADSHEET_ID", "GCP_SERVICE_ACCOUNT",
		"GOOGLE_APPLICATION_CREDENTIALS", "SUPABASE_URL", "SUPABASE_KEY", "STORE_TIMEOUT",
		"TELEGRAM_TOKEN", "PORT", "JWT_SECRET", "SESSION_TTL", "PASSWORD_HASHING",
		"CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StoreBackend != BackendSheets {
		t.Fatalf("expected sheets backend, got %q", cfg.StoreBackend)
	}
	if cfg.SpreadsheetName != "database_keuangan" {
		t.Fatalf("unexpected spreadsheet name %q", cfg.SpreadsheetName)
	}
	if cfg.StoreTimeout != 15*time.Second || cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected durations: %v %v", cfg.StoreTimeout, cfg.SessionTTL)
	}
	if cfg.Port != "8080" || cfg.PasswordHashing != HashingPlain {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.GoogleCredentials) != 0 {
		t.Fatalf("expected no credentials")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins %q", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOriginList(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dompet.example, ,https://www.dompet.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := []string{"https://dompet.example", "https://www.dompet.example"}
	if len(cfg.AllowedOrigins) != len(want) || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Fatalf("origins = %q", cfg.AllowedOrigins)
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	os.Unsetenv("STORE_BACKEND")
	os.Unsetenv("PORT")

	env := "STORE_BACKEND=memory\nPORT=9090\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StoreBackend != BackendMemory || cfg.Port != "9090" {
		t.Fatalf("values from .env not applied: %+v", cfg)
	}
}

func TestLoadConfigCredentialsFile(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)

	keyFile := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(keyFile, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", keyFile)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if string(cfg.GoogleCredentials) != `{"type":"service_account"}` {
		t.Fatalf("credentials not read: %q", cfg.GoogleCredentials)
	}

	t.Setenv("GCP_SERVICE_ACCOUNT", `{"inline":true}`)
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if string(cfg.GoogleCredentials) != `{"inline":true}` {
		t.Fatalf("inline credentials should win, got %q", cfg.GoogleCredentials)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	chdirTemp(t)

	cases := map[string][2]string{
		"backend":  {"STORE_BACKEND", "excel"},
		"hashing":  {"PASSWORD_HASHING", "md5"},
		"timeout":  {"STORE_TIMEOUT", "soon"},
		"negative": {"STORE_TIMEOUT", "-1s"},
		"ttl":      {"SESSION_TTL", "forever"},
		"zero ttl": {"SESSION_TTL", "0s"},
		"past ttl": {"SESSION_TTL", "-1h"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}
