// Package parser はOCRテキストからの連絡先フィールド抽出サービスを提供する。
// 補完エンジン（OpenAI互換API）にtemperature 0で固定指示を送り、
// 制約付きJSONオブジェクトとして結果を解釈する。
package parser

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/z5702god/remeet-server/internal/model"
	"github.com/z5702god/remeet-server/internal/upstream"
)

// maxCompletionTokens は固定8フィールドスキーマに十分なトークン上限。
const maxCompletionTokens = 500

// chatRequest は補完エンジンへのリクエスト。
// Temperatureは決定的抽出のため常に0（omitemptyにしないこと）。
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse は補完エンジンのレスポンス。
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Service はフィールド抽出のサービス層。ステートレス。
type Service struct {
	endpoint string
	apiKey   string
	model    string
	proxy    *upstream.Client
	logger   *slog.Logger
	timeout  time.Duration
}

// NewService はServiceの新しいインスタンスを生成する。
// apiKeyが空の場合、Parseは設定エラーを返す（起動は妨げない）。
func NewService(endpoint, apiKey, modelName string, proxy *upstream.Client, logger *slog.Logger, timeout time.Duration) *Service {
	return &Service{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    modelName,
		proxy:    proxy,
		logger:   logger,
		timeout:  timeout,
	}
}

// Parse はOCRテキストを補完エンジンに送り、構造化フィールドを返す。
// 補完結果がJSONとして解釈できない場合は全フィールドnullの結果を返す。
// 抽出は助言的な処理であり、劣化した正常結果のほうがハードエラーより望ましい。
// 上流の失敗はParseError（502相当）として返す。
func (s *Service) Parse(ctx context.Context, rawText string) (*model.StructuredFields, error) {
	if s.apiKey == "" {
		return nil, model.NewParserNotConfiguredError()
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, model.NewMissingTextError()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.apiKey)

	body := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: rawText},
		},
		Temperature: 0,
		MaxTokens:   maxCompletionTokens,
	}

	resp, err := s.proxy.Do(ctx, upstream.Request{
		Method:  http.MethodPost,
		URL:     s.endpoint + "/v1/chat/completions",
		Header:  header,
		Body:    body,
		Timeout: s.timeout,
	})
	if err != nil {
		if ue, ok := err.(*upstream.UpstreamError); ok {
			return nil, model.NewParseFailedError(ue.Message)
		}
		return nil, model.NewParseFailedError(err.Error())
	}

	var completion chatResponse
	if err := resp.DecodeJSON(&completion); err != nil {
		return nil, model.NewParseFailedError(err.Error())
	}
	if len(completion.Choices) == 0 {
		s.logger.Warn("補完エンジンがchoicesを返しませんでした")
		return &model.StructuredFields{}, nil
	}

	content := stripCodeFences(completion.Choices[0].Message.Content)

	fields := &model.StructuredFields{}
	if err := json.Unmarshal([]byte(content), fields); err != nil {
		// パース不能な補完結果は全フィールドnullとして返す
		s.logger.Warn("補完結果をJSONとして解釈できませんでした",
			slog.Int("content_length", len(content)),
		)
		return &model.StructuredFields{}, nil
	}

	s.logger.Info("フィールド抽出が完了しました",
		slog.Int("text_length", len(rawText)),
	)

	return fields, nil
}

// stripCodeFences はMarkdownコードフェンス（```json ... ```）を取り除く。
// 補完エンジンは指示に反してフェンス付きで返すことがある。
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// 先頭フェンス行（```または```json）を除去
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		return strings.TrimPrefix(trimmed, "```")
	}

	// 末尾フェンスを除去
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")

	return strings.TrimSpace(trimmed)
}
