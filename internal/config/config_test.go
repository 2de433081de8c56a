//go:build !integration

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"realestate-marketplace/internal/config"
)

const baseYAML = `
database:
  url: postgres://localhost/marketplace
redis:
  url: redis://localhost:6379
auth:
  jwt_secret: test-secret
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("requires a gateway secret outside dev mode", func(t *testing.T) {
		if _, err := config.LoadConfig(writeConfig(t, baseYAML), false); err == nil {
			t.Fatal("expected an error without payment.paystack.secret_key")
		}
	})

	t.Run("dev mode starts without a gateway secret", func(t *testing.T) {
		cfg, err := config.LoadConfig(writeConfig(t, baseYAML), true)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected the dev runtime flag to be set")
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		secret := baseYAML + "payment:\n  paystack:\n    secret_key: sk_test\n"
		cfg, err := config.LoadConfig(writeConfig(t, secret), false)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
		}
		if cfg.Payment.Currency != "NGN" {
			t.Errorf("expected default currency NGN, got %s", cfg.Payment.Currency)
		}
	})

	t.Run("rejects a missing database url", func(t *testing.T) {
		if _, err := config.LoadConfig(writeConfig(t, "redis:\n  url: redis://localhost\n"), true); err == nil {
			t.Fatal("expected an error without database.url")
		}
	})
}
