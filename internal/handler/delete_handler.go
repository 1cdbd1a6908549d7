package handler

import (
	"context"
	"net/http"

	"github.com/z5702god/remeet-server/internal/middleware"
	"github.com/z5702god/remeet-server/internal/model"
)

// AccountDeleterInterface はアカウント削除ハンドラーが必要とするサーガインターフェース。
type AccountDeleterInterface interface {
	// Run は認証済みユーザーの削除サーガを実行する。
	// ベストエフォートステップの失敗ではエラーを返さない。
	Run(ctx context.Context, userID string) error
}

// deleteUserResponse はアカウント削除のレスポンス。
type deleteUserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// DeleteHandler はアカウント削除のHTTPハンドラー。
// トークンのsubjectが削除対象であり、対象ユーザーのパラメータ指定は
// 受け付けない（任意アカウント削除の防止）。
type DeleteHandler struct {
	verifier middleware.TokenVerifier
	saga     AccountDeleterInterface
}

// NewDeleteHandler はDeleteHandlerを生成する。
func NewDeleteHandler(verifier middleware.TokenVerifier, saga AccountDeleterInterface) *DeleteHandler {
	return &DeleteHandler{
		verifier: verifier,
		saga:     saga,
	}
}

// DeleteUser はアカウント削除サーガを実行する。
// POST /delete-user
//
// モバイルクライアントの契約上、認証失敗を含むすべての終端失敗は
// success:false の400で返す。
func (h *DeleteHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		h.writeFailure(w, model.NewMissingAuthorizationError())
		return
	}

	identity, err := h.verifier.VerifyToken(r.Context(), token)
	if err != nil {
		h.writeFailure(w, model.NewNotAuthenticatedError())
		return
	}

	if err := h.saga.Run(r.Context(), identity.ID); err != nil {
		var apiErr *model.APIError
		if e, ok := err.(*model.APIError); ok {
			apiErr = e
		} else {
			apiErr = model.NewDeletionFailedError(err.Error())
		}
		h.writeFailure(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, deleteUserResponse{
		Success: true,
		Message: "Account successfully deleted",
	})
}

// writeFailure は削除エンドポイント固有の失敗レスポンスを書き込む。
func (h *DeleteHandler) writeFailure(w http.ResponseWriter, apiErr *model.APIError) {
	writeJSON(w, http.StatusBadRequest, deleteUserResponse{
		Success: false,
		Error:   apiErr.Message,
		Kind:    string(apiErr.Kind),
	})
}
