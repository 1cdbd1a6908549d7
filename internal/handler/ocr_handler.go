package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/z5702god/remeet-server/internal/model"
)

// OCRServiceInterface はOCRハンドラーが必要とするサービスインターフェース。
type OCRServiceInterface interface {
	// Scan はbase64画像を視覚認識エンジンに転送し、検出テキストを返す。
	// テキスト未検出は空文字列の正常結果。
	Scan(ctx context.Context, image string, languageHints []string) (string, error)
}

// ocrScanRequest はOCRスキャンリクエストのボディ。
type ocrScanRequest struct {
	Image         string   `json:"image"`
	LanguageHints []string `json:"languageHints,omitempty"`
}

// ocrScanResponse はOCRスキャンの成功レスポンス。
type ocrScanResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

// OCRHandler はOCRプロキシのHTTPハンドラー。
type OCRHandler struct {
	service OCRServiceInterface
}

// NewOCRHandler はOCRHandlerを生成する。
func NewOCRHandler(service OCRServiceInterface) *OCRHandler {
	return &OCRHandler{service: service}
}

// Scan は名刺画像のOCRスキャンを実行する。
// POST /ocr-scan
func (h *OCRHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ocrScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingImageError())
		return
	}
	if req.Image == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingImageError())
		return
	}

	text, err := h.service.Scan(r.Context(), req.Image, req.LanguageHints)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ocrScanResponse{Success: true, Text: text})
}
