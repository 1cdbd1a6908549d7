package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/z5702god/remeet-server/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Verifier    middleware.TokenVerifier
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger

	// サービス
	OCRService     OCRServiceInterface
	ParserService  ParserServiceInterface
	AccountDeleter AccountDeleterInterface

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → LoggingMiddleware
//
// OCR・フィールド抽出ルートにはさらに AuthMiddleware → RateLimitMiddleware(AI) を
// 適用する。delete-userはモバイル契約上、認証失敗も400で返すため
// 認証ミドルウェアの外に置き、ハンドラー内で検証する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	ocrHandler := NewOCRHandler(deps.OCRService)
	parseHandler := NewParseHandler(deps.ParserService)
	deleteHandler := NewDeleteHandler(deps.Verifier, deps.AccountDeleter)

	// --- 運用エンドポイント ---

	r.Get("/healthz", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- AIプロキシ（認証必須 + レート制限） ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Verifier))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AIMiddleware())
		}

		r.Post("/ocr-scan", ocrHandler.Scan)
		r.Post("/parse-card", parseHandler.Parse)
	})

	// --- アカウント削除（ハンドラー内で認証） ---

	r.Post("/delete-user", deleteHandler.DeleteUser)

	return r
}
