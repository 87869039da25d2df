package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const fullConfig = `service:
  name: caby

http:
  port: 9000
  allowed_origins: ["http://localhost:3000", "https://app.example.com"]

database:
  host: db.internal
  port: 5433
  user: caby
  password: secret
  database: caby

redis:
  host: cache.internal
  port: 6380

rabbitmq:
  host: mq.internal
  port: 5673
  user: caby
  password: secret

maps:
  api_key: "test-key"

stripe:
  api_key: "sk_test_123"
  success_url: "https://app.example.com/ok"
  cancel_url: "https://app.example.com/no"
`

func TestLoadFromFile(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.HTTP.Port != 9000 {
		t.Errorf("http.port = %d, want 9000", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://app.example.com" {
		t.Errorf("allowed_origins = %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Database.Name != "caby" || cfg.Database.Port != 5433 {
		t.Errorf("database = %+v", cfg.Database)
	}
	if got := cfg.RedisAddr(); got != "cache.internal:6380" {
		t.Errorf("RedisAddr() = %q", got)
	}
	if cfg.Maps.APIKey != "test-key" {
		t.Errorf("maps.api_key = %q", cfg.Maps.APIKey)
	}
	if cfg.Stripe.SuccessURL != "https://app.example.com/ok" {
		t.Errorf("stripe.success_url = %q", cfg.Stripe.SuccessURL)
	}
}

func TestLoadFromFile_Defaults(t *testing.T) {
	minimal := `database:
  user: caby
  password: secret
  database: caby

rabbitmq:
  user: guest
  password: guest
`
	cfg, err := LoadFromFile(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.HTTP.Port != 8000 {
		t.Errorf("default http.port = %d, want 8000", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("default allowed_origins = %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.RedisAddr() != "" {
		t.Errorf("RedisAddr() = %q, want empty when redis unconfigured", cfg.RedisAddr())
	}
	if cfg.Stripe.SuccessURL == "" || cfg.Stripe.CancelURL == "" {
		t.Error("stripe redirect defaults must be applied")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "missing database credentials",
			content: "rabbitmq:\n  user: guest\n  password: guest\n",
			wantMsg: "database.user is required",
		},
		{
			name:    "missing rabbitmq credentials",
			content: "database:\n  user: caby\n  password: secret\n  database: caby\n",
			wantMsg: "rabbitmq.user is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("LoadFromFile() error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}

	t.Run("bad origin scheme", func(t *testing.T) {
		bad := strings.Replace(fullConfig, `["http://localhost:3000", "https://app.example.com"]`, `["localhost:3000"]`, 1)
		_, err := LoadFromFile(writeConfig(t, bad))
		if err == nil || !strings.Contains(err.Error(), "allowed_origins") {
			t.Errorf("LoadFromFile() error = %v, want allowed_origins complaint", err)
		}
	})

	t.Run("unknown top-level key", func(t *testing.T) {
		_, err := LoadFromFile(writeConfig(t, "nonsense:\n  a: b\n"))
		if err == nil || !strings.Contains(err.Error(), "unknown top-level key") {
			t.Errorf("LoadFromFile() error = %v, want unknown key complaint", err)
		}
	})
}
