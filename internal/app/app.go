// Package app はアプリケーションの初期化・依存関係のワイヤリング・起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/z5702god/remeet-server/internal/authn"
	"github.com/z5702god/remeet-server/internal/config"
	"github.com/z5702god/remeet-server/internal/database"
	"github.com/z5702god/remeet-server/internal/deletion"
	"github.com/z5702god/remeet-server/internal/handler"
	"github.com/z5702god/remeet-server/internal/logger"
	"github.com/z5702god/remeet-server/internal/metrics"
	"github.com/z5702god/remeet-server/internal/middleware"
	"github.com/z5702god/remeet-server/internal/ocr"
	"github.com/z5702god/remeet-server/internal/parser"
	"github.com/z5702god/remeet-server/internal/repository"
	"github.com/z5702god/remeet-server/internal/storage"
	"github.com/z5702god/remeet-server/internal/upstream"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
//
// BaaSクライアントはグローバルシングルトンにせず、ここで明示的に構築して
// 注入する。テストでのモック差し替えを妨げる隠れた共有状態を作らないため。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. 上流プロキシクライアントの初期化
	proxy := upstream.NewClient(
		&http.Client{},
		slog.Default(),
		collector,
		cfg.UpstreamMaxAttempts,
	)

	// 4. 外部サービスクライアントの初期化
	authClient := authn.NewClient(
		cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.ServiceRoleKey,
		proxy, slog.Default(), cfg.AdminTimeout,
	)
	storageClient := storage.NewClient(
		cfg.SupabaseURL, cfg.ServiceRoleKey, cfg.StorageBucket,
		proxy, slog.Default(), cfg.AdminTimeout,
	)
	ocrService := ocr.NewService(
		cfg.VisionEndpoint, cfg.VisionAPIKey,
		proxy, slog.Default(), cfg.UpstreamTimeout,
	)
	parserService := parser.NewService(
		cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIModel,
		proxy, slog.Default(), cfg.UpstreamTimeout,
	)

	// 5. リポジトリの初期化
	meetingRepo := repository.NewPostgresMeetingContextRepo(db)
	cardRepo := repository.NewPostgresBusinessCardRepo(db)
	contactRepo := repository.NewPostgresContactRepo(db)
	profileRepo := repository.NewPostgresProfileRepo(db)

	// 6. 削除サーガの初期化
	saga := deletion.NewSaga(
		meetingRepo, cardRepo, contactRepo, profileRepo,
		storageClient, authClient,
		slog.Default(), collector,
	)

	// 7. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitAI))
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Verifier:    authClient,
		RateLimiter: rateLimiter,
		Logger:      slog.Default(),

		OCRService:     ocrService,
		ParserService:  parserService,
		AccountDeleter: saga,

		HealthChecker:  db,
		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行して終了する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations")

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed")
	return nil
}

// runHealthcheck はローカルのAPIサーバーにヘルスチェックリクエストを送る。
// /healthz エンドポイントにHTTPリクエストを送り、200以外は失敗として扱う。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}

	return nil
}
