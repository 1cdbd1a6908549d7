// Package storage はオブジェクトストア（Supabase Storage互換API）の
// クライアントを提供する。ユーザープレフィックス配下の一覧取得と
// 一括削除のみを扱う。
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/z5702god/remeet-server/internal/upstream"
)

// listLimit は1回の一覧取得で返す最大オブジェクト数。
// 1ユーザーの名刺画像数はこれを大きく下回る想定。
const listLimit = 1000

// listRequest はプレフィックス配下のオブジェクト一覧リクエスト。
type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
}

// removeRequest はオブジェクトの一括削除リクエスト。
type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// listedObject は一覧レスポンスの1オブジェクト。
type listedObject struct {
	Name string `json:"name"`
}

// Client はオブジェクトストアのAPIクライアント。
// サービスロールキーで認証する（ユーザートークンでは呼び出さない）。
type Client struct {
	baseURL        string
	serviceRoleKey string
	bucket         string
	proxy          *upstream.Client
	logger         *slog.Logger
	timeout        time.Duration
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(baseURL, serviceRoleKey, bucket string, proxy *upstream.Client, logger *slog.Logger, timeout time.Duration) *Client {
	return &Client{
		baseURL:        baseURL,
		serviceRoleKey: serviceRoleKey,
		bucket:         bucket,
		proxy:          proxy,
		logger:         logger,
		timeout:        timeout,
	}
}

// header はサービスロール認証ヘッダーを構築する。
func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.serviceRoleKey)
	h.Set("apikey", c.serviceRoleKey)
	return h
}

// ListPrefix は指定プレフィックス配下のオブジェクトパス一覧を返す。
// オブジェクトが存在しない場合は空スライスを返す（エラーではない）。
func (c *Client) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	resp, err := c.proxy.Do(ctx, upstream.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/storage/v1/object/list/" + c.bucket,
		Header:  c.header(),
		Body:    listRequest{Prefix: prefix, Limit: listLimit},
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
	}

	var objects []listedObject
	if err := resp.DecodeJSON(&objects); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(objects))
	for _, obj := range objects {
		paths = append(paths, path.Join(prefix, obj.Name))
	}

	return paths, nil
}

// Remove は指定パスのオブジェクトを一括削除する。
// 空リストの場合は何もしない。
func (c *Client) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	_, err := c.proxy.Do(ctx, upstream.Request{
		Method:  http.MethodDelete,
		URL:     c.baseURL + "/storage/v1/object/" + c.bucket,
		Header:  c.header(),
		Body:    removeRequest{Prefixes: paths},
		Timeout: c.timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to remove %d objects: %w", len(paths), err)
	}

	c.logger.Info("オブジェクトを削除しました",
		slog.String("bucket", c.bucket),
		slog.Int("object_count", len(paths)),
	)

	return nil
}
