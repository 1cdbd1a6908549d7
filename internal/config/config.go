// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// 認証プロバイダ（Supabase Auth）
	// ServiceRoleKeyは管理者削除専用。クライアントに露出してはならない。
	SupabaseURL     string
	SupabaseAnonKey string
	ServiceRoleKey  string

	// 外部AIエンジン
	// APIキーは起動時には任意。未設定のままリクエストが来た場合は
	// ConfigurationErrorとして応答する。
	VisionAPIKey   string
	VisionEndpoint string
	OpenAIAPIKey   string
	OpenAIEndpoint string
	OpenAIModel    string

	// オブジェクトストレージ
	StorageBucket string

	// 上流呼び出し
	UpstreamTimeout     time.Duration // OCR/LLM呼び出しのタイムアウト
	AdminTimeout        time.Duration // 認証プロバイダ・ストレージ呼び出しのタイムアウト
	UpstreamMaxAttempts int           // トランスポート失敗時の最大試行回数（デフォルト1 = リトライなし）

	// Rate Limit（AIプロキシエンドポイント、req/min/user）
	RateLimitAI int

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	if cfg.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}

	cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	if cfg.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}

	cfg.ServiceRoleKey = os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if cfg.ServiceRoleKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.VisionAPIKey = os.Getenv("GOOGLE_VISION_API_KEY")
	cfg.VisionEndpoint = getEnvString("GOOGLE_VISION_ENDPOINT", "https://vision.googleapis.com")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIEndpoint = getEnvString("OPENAI_ENDPOINT", "https://api.openai.com")
	cfg.OpenAIModel = getEnvString("OPENAI_MODEL", "gpt-4o-mini")
	cfg.StorageBucket = getEnvString("STORAGE_BUCKET", "business-cards")
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second)
	cfg.AdminTimeout = getEnvDuration("ADMIN_TIMEOUT", 10*time.Second)
	cfg.UpstreamMaxAttempts = getEnvInt("UPSTREAM_MAX_ATTEMPTS", 1)
	cfg.RateLimitAI = getEnvInt("RATE_LIMIT_AI", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
