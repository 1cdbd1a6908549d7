// Package upstream はサードパーティHTTP APIへの汎用プロキシ呼び出しを提供する。
// トランスポート失敗・非2xxレスポンス・パース不能レスポンスを統一的に分類し、
// 呼び出し元がそれぞれ異なる扱いをできるようにする。
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// NetworkError はDNS・TLS・接続拒否などのトランスポート層の失敗を表す。
// MaxAttempts > 1 の場合のみ再試行の対象になる。
type NetworkError struct {
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap は内包するエラーを返す。
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamError は上流APIが返した非2xxレスポンスを表す。
// Messageはエラーボディから抽出した人間可読メッセージで、
// ボディがパース不能な場合は "HTTP <code>" になる。
type UpstreamError struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// Request は上流APIへの1回の呼び出しを表す。
// BodyはJSONにエンコードされて送信される。nilの場合はボディなし。
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    any
	Timeout time.Duration
}

// Response は上流APIからの2xxレスポンスを表す。
type Response struct {
	StatusCode int
	Body       []byte
}

// DecodeJSON はレスポンスボディをJSONとしてデコードする。
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// MetricsRecorder は上流呼び出しのメトリクス収集インターフェース。
type MetricsRecorder interface {
	RecordUpstreamRequest(target string, statusCode int, duration time.Duration)
	RecordUpstreamTransportError(target string)
}

// Client は上流APIへの汎用プロキシクライアント。
// リトライポリシーは明示的な設定値であり、デフォルトは単発呼び出し
// （maxAttempts = 1）。リトライ対象はトランスポート失敗のみで、
// 非2xxレスポンスは一切再試行しない。
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     MetricsRecorder
	maxAttempts int
}

// NewClient はClientの新しいインスタンスを生成する。
// maxAttemptsが1未満の場合は1として扱う。metricsはnil可。
func NewClient(httpClient *http.Client, logger *slog.Logger, metrics MetricsRecorder, maxAttempts int) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		httpClient:  httpClient,
		logger:      logger,
		metrics:     metrics,
		maxAttempts: maxAttempts,
	}
}

// Do は上流APIを呼び出し、結果を3種類に分類して返す。
//  1. トランスポート失敗 → NetworkError（maxAttemptsまで再試行）
//  2. 非2xxレスポンス → UpstreamError
//  3. 2xxレスポンス → Response
//
// ペイロードの内容（画像・PII）はログに残さない。記録するのはサイズとステータスのみ。
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	target := targetHost(req.URL)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.doOnce(ctx, req, payload, target)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// 再試行するのはトランスポート失敗のみ
		if _, ok := err.(*NetworkError); !ok {
			return nil, err
		}
		if attempt < c.maxAttempts {
			c.logger.Warn("上流呼び出しのトランスポート失敗を再試行します",
				slog.String("target", target),
				slog.Int("attempt", attempt),
			)
		}
	}

	return nil, lastErr
}

// doOnce は1回分の上流呼び出しを実行する。
func (c *Client) doOnce(ctx context.Context, req Request, payload []byte, target string) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamTransportError(target)
		}
		c.logger.Error("上流APIの呼び出しに失敗しました",
			slog.String("target", target),
			slog.String("error", err.Error()),
			slog.Int("request_bytes", len(payload)),
		)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamTransportError(target)
		}
		return nil, &NetworkError{Err: fmt.Errorf("failed to read upstream response: %w", err)}
	}

	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(target, resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractErrorMessage(body, resp.StatusCode)
		c.logger.Error("上流APIがエラーステータスを返しました",
			slog.String("target", target),
			slog.Int("http_status", resp.StatusCode),
			slog.Int("response_bytes", len(body)),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// extractErrorMessage は上流エラーボディから人間可読メッセージを抽出する。
// Google系の {"error":{"message":...}}、OpenAI系の同形、GoTrue系の
// {"msg":...}、素朴な {"error":...} / {"message":...} に対応し、
// どれにも当てはまらない場合は "HTTP <code>" を返す。
func extractErrorMessage(body []byte, statusCode int) string {
	fallback := fmt.Sprintf("HTTP %d", statusCode)

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	if nested, ok := payload["error"].(map[string]any); ok {
		if msg, ok := nested["message"].(string); ok && msg != "" {
			return msg
		}
	}
	for _, key := range []string{"error", "message", "msg", "error_description"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return msg
		}
	}

	return fallback
}

// targetHost はログ・メトリクス用に呼び出し先ホスト名を抽出する。
// クエリパラメータ（APIキーを含みうる）は含めない。
func targetHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
