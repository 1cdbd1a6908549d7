package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv は必須環境変数を設定する。
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/remeet")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role-key")
}

func TestLoad_RequiredVariablesMissing_ReturnsError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when required variables are missing")
	}
	// 欠落した変数名がエラーメッセージに列挙されること
	for _, name := range []string{"DATABASE_URL", "SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_SERVICE_ROLE_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err.Error(), name)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_VISION_API_KEY", "")
	t.Setenv("GOOGLE_VISION_ENDPOINT", "")
	t.Setenv("OPENAI_ENDPOINT", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("ADMIN_TIMEOUT", "")
	t.Setenv("UPSTREAM_MAX_ATTEMPTS", "")
	t.Setenv("RATE_LIMIT_AI", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// AIエンジンのキーは起動時には任意
	if cfg.VisionAPIKey != "" {
		t.Errorf("VisionAPIKey = %q, want empty", cfg.VisionAPIKey)
	}
	if cfg.VisionEndpoint != "https://vision.googleapis.com" {
		t.Errorf("VisionEndpoint = %q, want default", cfg.VisionEndpoint)
	}
	if cfg.OpenAIEndpoint != "https://api.openai.com" {
		t.Errorf("OpenAIEndpoint = %q, want default", cfg.OpenAIEndpoint)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q, want default", cfg.OpenAIModel)
	}
	if cfg.StorageBucket != "business-cards" {
		t.Errorf("StorageBucket = %q, want default", cfg.StorageBucket)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 30s", cfg.UpstreamTimeout)
	}
	if cfg.AdminTimeout != 10*time.Second {
		t.Errorf("AdminTimeout = %v, want 10s", cfg.AdminTimeout)
	}
	if cfg.UpstreamMaxAttempts != 1 {
		t.Errorf("UpstreamMaxAttempts = %d, want 1", cfg.UpstreamMaxAttempts)
	}
	if cfg.RateLimitAI != 30 {
		t.Errorf("RateLimitAI = %d, want 30", cfg.RateLimitAI)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_VISION_API_KEY", "vision-key")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("UPSTREAM_TIMEOUT", "10s")
	t.Setenv("UPSTREAM_MAX_ATTEMPTS", "3")
	t.Setenv("RATE_LIMIT_AI", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.VisionAPIKey != "vision-key" {
		t.Errorf("VisionAPIKey = %q, want vision-key", cfg.VisionAPIKey)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want gpt-4o", cfg.OpenAIModel)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 10s", cfg.UpstreamTimeout)
	}
	if cfg.UpstreamMaxAttempts != 3 {
		t.Errorf("UpstreamMaxAttempts = %d, want 3", cfg.UpstreamMaxAttempts)
	}
	if cfg.RateLimitAI != 60 {
		t.Errorf("RateLimitAI = %d, want 60", cfg.RateLimitAI)
	}
}

func TestLoad_InvalidNumericValues_FallBackToDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPSTREAM_TIMEOUT", "not-a-duration")
	t.Setenv("UPSTREAM_MAX_ATTEMPTS", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %v, want default 30s", cfg.UpstreamTimeout)
	}
	if cfg.UpstreamMaxAttempts != 1 {
		t.Errorf("UpstreamMaxAttempts = %d, want default 1", cfg.UpstreamMaxAttempts)
	}
}
