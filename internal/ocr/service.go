// Package ocr は名刺画像のOCRプロキシサービスを提供する。
// base64画像を視覚認識エンジン（Google Vision互換API）に転送し、
// 検出されたテキストを返す。
package ocr

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/z5702god/remeet-server/internal/model"
	"github.com/z5702god/remeet-server/internal/upstream"
)

// defaultLanguageHints は言語ヒント未指定時のデフォルト。
// 主要ユーザー層を反映して繁体字・簡体字中国語を先頭に置く。
var defaultLanguageHints = []string{"zh-TW", "zh-CN", "en", "ja"}

// visionRequest は視覚認識エンジンへの一括アノテーションリクエスト。
type visionRequest struct {
	Requests []visionAnnotateRequest `json:"requests"`
}

type visionAnnotateRequest struct {
	Image        visionImage        `json:"image"`
	Features     []visionFeature    `json:"features"`
	ImageContext visionImageContext `json:"imageContext"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type visionImageContext struct {
	LanguageHints []string `json:"languageHints"`
}

// visionResponse は視覚認識エンジンのレスポンス。
// 必要なのは responses[0].textAnnotations[0].description のみ。
type visionResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
	} `json:"responses"`
}

// Service はOCRプロキシのサービス層。
// ステートレスで、同一画像に対して何度呼び出しても安全。
type Service struct {
	endpoint string
	apiKey   string
	proxy    *upstream.Client
	logger   *slog.Logger
	timeout  time.Duration
}

// NewService はServiceの新しいインスタンスを生成する。
// apiKeyが空の場合、Scanは設定エラーを返す（起動は妨げない）。
func NewService(endpoint, apiKey string, proxy *upstream.Client, logger *slog.Logger, timeout time.Duration) *Service {
	return &Service{
		endpoint: endpoint,
		apiKey:   apiKey,
		proxy:    proxy,
		logger:   logger,
		timeout:  timeout,
	}
}

// Scan はbase64画像を視覚認識エンジンに転送し、検出テキストを返す。
// テキストが検出されなかった画像は空文字列の正常結果であり、エラーではない。
// 上流の失敗はOCRError（502相当）として返す。
func (s *Service) Scan(ctx context.Context, image string, languageHints []string) (string, error) {
	if s.apiKey == "" {
		return "", model.NewOCRNotConfiguredError()
	}
	if strings.TrimSpace(image) == "" {
		return "", model.NewMissingImageError()
	}

	hints := languageHints
	if len(hints) == 0 {
		hints = defaultLanguageHints
	}

	body := visionRequest{
		Requests: []visionAnnotateRequest{
			{
				Image: visionImage{Content: image},
				Features: []visionFeature{
					{Type: "TEXT_DETECTION", MaxResults: 1},
				},
				ImageContext: visionImageContext{LanguageHints: hints},
			},
		},
	}

	resp, err := s.proxy.Do(ctx, upstream.Request{
		Method:  http.MethodPost,
		URL:     s.endpoint + "/v1/images:annotate?key=" + s.apiKey,
		Body:    body,
		Timeout: s.timeout,
	})
	if err != nil {
		if ue, ok := err.(*upstream.UpstreamError); ok {
			return "", model.NewOCRFailedError(ue.Message)
		}
		return "", model.NewOCRFailedError(err.Error())
	}

	var result visionResponse
	if err := resp.DecodeJSON(&result); err != nil {
		return "", model.NewOCRFailedError(err.Error())
	}

	// テキスト未検出は正常な空結果として扱う
	if len(result.Responses) == 0 || len(result.Responses[0].TextAnnotations) == 0 {
		s.logger.Info("画像からテキストが検出されませんでした",
			slog.Int("image_bytes", len(image)),
		)
		return "", nil
	}

	text := result.Responses[0].TextAnnotations[0].Description
	s.logger.Info("OCR処理が完了しました",
		slog.Int("image_bytes", len(image)),
		slog.Int("text_length", len(text)),
	)

	return text, nil
}
