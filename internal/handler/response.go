// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/z5702god/remeet-server/internal/middleware"
	"github.com/z5702god/remeet-server/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// statusForKind はエラー分類タグをHTTPステータスコードに対応させる。
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindConfiguration:
		return http.StatusInternalServerError
	case model.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// 上流エラーの生ボディやスタックトレースはクライアントに渡さない。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, statusForKind(apiErr.Kind), apiErr)
		return
	}

	writeAPIErrorResponse(w, http.StatusInternalServerError,
		model.NewInternalError(err.Error()))
}
