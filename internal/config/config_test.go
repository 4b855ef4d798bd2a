package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv は必須環境変数を設定する。
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/partyup_test")
	t.Setenv("BASE_URL", "https://app.example.com")
}

// TestLoad_Defaults は必須変数のみ設定した場合のデフォルト値を検証する。
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want 9090", cfg.MetricsPort)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.ResetTokenTTL != 2*time.Hour {
		t.Errorf("ResetTokenTTL = %v, want 2h", cfg.ResetTokenTTL)
	}
	if cfg.MailQueueSize != 64 {
		t.Errorf("MailQueueSize = %d, want 64", cfg.MailQueueSize)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitLogin != 10 {
		t.Errorf("RateLimitLogin = %d, want 10", cfg.RateLimitLogin)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want http://localhost:3000", cfg.CORSAllowedOrigin)
	}
}

// TestLoad_MissingRequired は必須変数の欠落でエラーになることを検証する。
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error = %v, want it to name DATABASE_URL", err)
	}
	if !strings.Contains(err.Error(), "BASE_URL") {
		t.Errorf("error = %v, want it to name BASE_URL", err)
	}
}

// TestLoad_Overrides は環境変数による上書きを検証する。
func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "3333")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("RESET_TOKEN_TTL", "30m")
	t.Setenv("SMTP_HOST", "mail.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != "3333" {
		t.Errorf("ServerPort = %q, want 3333", cfg.ServerPort)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.ResetTokenTTL != 30*time.Minute {
		t.Errorf("ResetTokenTTL = %v, want 30m", cfg.ResetTokenTTL)
	}
	if cfg.SMTPHost != "mail.example.com" {
		t.Errorf("SMTPHost = %q, want mail.example.com", cfg.SMTPHost)
	}
}

// TestLoad_InvalidOptionalValues は不正な値がデフォルトに
// フォールバックすることを検証する。
func TestLoad_InvalidOptionalValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("RESET_TOKEN_TTL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want default 10", cfg.BcryptCost)
	}
	if cfg.ResetTokenTTL != 2*time.Hour {
		t.Errorf("ResetTokenTTL = %v, want default 2h", cfg.ResetTokenTTL)
	}
}
