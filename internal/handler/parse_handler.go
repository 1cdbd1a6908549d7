package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/z5702god/remeet-server/internal/model"
)

// ParserServiceInterface はフィールド抽出ハンドラーが必要とするサービスインターフェース。
type ParserServiceInterface interface {
	// Parse はOCRテキストから構造化フィールドを抽出する。
	// 判定できなかったフィールドはnilになる。
	Parse(ctx context.Context, rawText string) (*model.StructuredFields, error)
}

// parseCardRequest はフィールド抽出リクエストのボディ。
type parseCardRequest struct {
	Text string `json:"text"`
}

// parseCardResponse はフィールド抽出の成功レスポンス。
type parseCardResponse struct {
	Success bool                    `json:"success"`
	Parsed  *model.StructuredFields `json:"parsed"`
}

// ParseHandler はフィールド抽出のHTTPハンドラー。
type ParseHandler struct {
	service ParserServiceInterface
}

// NewParseHandler はParseHandlerを生成する。
func NewParseHandler(service ParserServiceInterface) *ParseHandler {
	return &ParseHandler{service: service}
}

// Parse はOCRテキストからの連絡先フィールド抽出を実行する。
// POST /parse-card
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingTextError())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingTextError())
		return
	}

	fields, err := h.service.Parse(r.Context(), req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, parseCardResponse{Success: true, Parsed: fields})
}
