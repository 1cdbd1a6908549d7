package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/z5702god/remeet-server/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// kindはクライアントが表示切り替えに使う安定タグ。
type ErrorResponseBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details string `json:"details,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:   apiErr.Message,
		Kind:    string(apiErr.Kind),
		Details: apiErr.Details,
	})
}
