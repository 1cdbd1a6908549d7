// Package authn は認証プロバイダ（GoTrue互換API）との連携を提供する。
// ユーザートークンの検証と、サービスロール資格情報による管理者削除を含む。
package authn

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5702god/remeet-server/internal/model"
	"github.com/z5702god/remeet-server/internal/upstream"
)

// Client は認証プロバイダのAPIクライアント。
// VerifyTokenはユーザー自身のトークンで、DeleteUserはサービスロールキーで呼び出す。
// 2つの資格情報のスコープは明確に分離されており、サービスロールキーが
// レスポンスやログに出ることはない。
type Client struct {
	baseURL        string
	anonKey        string
	serviceRoleKey string
	proxy          *upstream.Client
	logger         *slog.Logger
	timeout        time.Duration
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(baseURL, anonKey, serviceRoleKey string, proxy *upstream.Client, logger *slog.Logger, timeout time.Duration) *Client {
	return &Client{
		baseURL:        baseURL,
		anonKey:        anonKey,
		serviceRoleKey: serviceRoleKey,
		proxy:          proxy,
		logger:         logger,
		timeout:        timeout,
	}
}

// VerifyToken はベアラートークンを認証プロバイダに転送し、ユーザー識別情報を解決する。
// トークンが無効・期限切れ・失効済みの場合はAuthError（再試行不可）を返す。
// 副作用はない。
func (c *Client) VerifyToken(ctx context.Context, token string) (*model.UserIdentity, error) {
	if token == "" {
		return nil, model.NewMissingAuthorizationError()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("apikey", c.anonKey)

	resp, err := c.proxy.Do(ctx, upstream.Request{
		Method:  http.MethodGet,
		URL:     c.baseURL + "/auth/v1/user",
		Header:  header,
		Timeout: c.timeout,
	})
	if err != nil {
		// 失敗理由によらず、呼び出し元には401相当として扱わせる。
		// トークン自体はログに残さない。
		c.logger.Warn("トークン検証に失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewNotAuthenticatedError()
	}

	var identity model.UserIdentity
	if err := resp.DecodeJSON(&identity); err != nil {
		return nil, model.NewNotAuthenticatedError()
	}
	if identity.ID == "" {
		return nil, model.NewNotAuthenticatedError()
	}

	return &identity, nil
}

// DeleteUser は認証プロバイダの管理者APIでユーザーレコードを削除する。
// サービスロールキーを使用するため、ユーザー自身のトークンでは呼び出せない。
// 対象ユーザーが既に存在しない場合（404）は削除済みとして成功扱いにする。
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.serviceRoleKey)
	header.Set("apikey", c.serviceRoleKey)

	_, err := c.proxy.Do(ctx, upstream.Request{
		Method:  http.MethodDelete,
		URL:     c.baseURL + "/auth/v1/admin/users/" + userID,
		Header:  header,
		Timeout: c.timeout,
	})
	if err != nil {
		if ue, ok := err.(*upstream.UpstreamError); ok && ue.StatusCode == http.StatusNotFound {
			c.logger.Info("認証レコードは既に削除されています",
				slog.String("user_id", userID),
			)
			return nil
		}
		return fmt.Errorf("failed to delete identity record: %w", err)
	}

	return nil
}
