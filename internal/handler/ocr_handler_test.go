package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/z5702god/remeet-server/internal/model"
)

// fakeOCRService はOCRServiceInterfaceのモック。
type fakeOCRService struct {
	calls    int
	gotImage string
	gotHints []string
	text     string
	err      error
}

func (f *fakeOCRService) Scan(ctx context.Context, image string, languageHints []string) (string, error) {
	f.calls++
	f.gotImage = image
	f.gotHints = languageHints
	return f.text, f.err
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestOCRScan_Success_ReturnsText(t *testing.T) {
	service := &fakeOCRService{text: "John Doe\nAcme Corp"}
	h := NewOCRHandler(service)

	rec := postJSON(h.Scan, "/ocr-scan", `{"image":"aW1hZ2U="}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp ocrScanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Text != "John Doe\nAcme Corp" {
		t.Errorf("text = %q, want %q", resp.Text, "John Doe\nAcme Corp")
	}
	if service.gotImage != "aW1hZ2U=" {
		t.Errorf("image passed to service = %q, want %q", service.gotImage, "aW1hZ2U=")
	}
}

func TestOCRScan_NoTextDetected_ReturnsEmptyTextSuccess(t *testing.T) {
	// テキスト未検出でも200の正常レスポンス
	service := &fakeOCRService{text: ""}
	h := NewOCRHandler(service)

	rec := postJSON(h.Scan, "/ocr-scan", `{"image":"aW1hZ2U="}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp ocrScanResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Success || resp.Text != "" {
		t.Errorf("response = %+v, want success with empty text", resp)
	}
}

func TestOCRScan_InvalidBody_Returns400(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"不正なJSON", `{not json`},
		{"imageフィールドの欠落", `{}`},
		{"空のimage", `{"image":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeOCRService{}
			h := NewOCRHandler(service)

			rec := postJSON(h.Scan, "/ocr-scan", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if service.calls != 0 {
				t.Errorf("service calls = %d, want 0", service.calls)
			}

			var resp map[string]string
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"] != "Missing image data" {
				t.Errorf("error = %q, want %q", resp["error"], "Missing image data")
			}
		})
	}
}

func TestOCRScan_ServiceErrors_MapToStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"設定エラーは500", model.NewOCRNotConfiguredError(), http.StatusInternalServerError},
		{"上流エラーは502", model.NewOCRFailedError("API key not valid"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOCRHandler(&fakeOCRService{err: tt.err})

			rec := postJSON(h.Scan, "/ocr-scan", `{"image":"aW1hZ2U="}`)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestOCRScan_ForwardsLanguageHints(t *testing.T) {
	service := &fakeOCRService{}
	h := NewOCRHandler(service)

	postJSON(h.Scan, "/ocr-scan", `{"image":"aW1hZ2U=","languageHints":["ja","en"]}`)

	if len(service.gotHints) != 2 || service.gotHints[0] != "ja" || service.gotHints[1] != "en" {
		t.Errorf("languageHints = %v, want [ja en]", service.gotHints)
	}
}
