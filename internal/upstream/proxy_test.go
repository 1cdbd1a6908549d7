package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingTransport は呼び出し回数を記録し、常にトランスポートエラーを返す。
type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls++
	return nil, errors.New("connection refused")
}

func TestClient_Do_Success_Returns2xxResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	c := NewClient(server.Client(), discardLogger(), nil, 1)

	resp, err := c.Do(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]bool
	if err := resp.DecodeJSON(&body); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if !body["ok"] {
		t.Error("expected ok=true in decoded body")
	}
}

func TestClient_Do_SendsJSONBodyAndHeaders(t *testing.T) {
	var gotContentType, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("Authorization")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer test-key")

	c := NewClient(server.Client(), discardLogger(), nil, 1)
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		URL:    server.URL,
		Header: header,
		Body:   map[string]string{"field": "value"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
	if gotCustom != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", gotCustom, "Bearer test-key")
	}
}

func TestClient_Do_Non2xxWithParsableBody_ReturnsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"API key not valid"}}`)
	}))
	defer server.Close()

	c := NewClient(server.Client(), discardLogger(), nil, 1)
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL})

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T (%v)", err, err)
	}
	if ue.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want %d", ue.StatusCode, http.StatusForbidden)
	}
	if ue.Message != "API key not valid" {
		t.Errorf("Message = %q, want %q", ue.Message, "API key not valid")
	}
}

func TestClient_Do_Non2xxWithUnparsableBody_ReturnsHTTPCodeMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `<html>Internal Server Error</html>`)
	}))
	defer server.Close()

	c := NewClient(server.Client(), discardLogger(), nil, 1)
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL})

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T (%v)", err, err)
	}
	if ue.Message != "HTTP 500" {
		t.Errorf("Message = %q, want %q", ue.Message, "HTTP 500")
	}
}

func TestClient_Do_TransportFailure_ReturnsNetworkError(t *testing.T) {
	transport := &countingTransport{}
	c := NewClient(&http.Client{Transport: transport}, discardLogger(), nil, 1)

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: "http://example.invalid/"})

	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %T (%v)", err, err)
	}
	// デフォルト（maxAttempts=1）は単発呼び出し
	if transport.calls != 1 {
		t.Errorf("transport calls = %d, want 1", transport.calls)
	}
}

func TestClient_Do_TransportFailure_RetriedUpToMaxAttempts(t *testing.T) {
	transport := &countingTransport{}
	c := NewClient(&http.Client{Transport: transport}, discardLogger(), nil, 3)

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: "http://example.invalid/"})

	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %T (%v)", err, err)
	}
	if transport.calls != 3 {
		t.Errorf("transport calls = %d, want 3", transport.calls)
	}
}

func TestClient_Do_UpstreamError_NeverRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	// maxAttemptsが大きくても非2xxは再試行しない
	c := NewClient(server.Client(), discardLogger(), nil, 5)
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL})

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T (%v)", err, err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		want       string
	}{
		{"Google形式のネストされたエラー", `{"error":{"message":"quota exceeded"}}`, 429, "quota exceeded"},
		{"フラットなerrorフィールド", `{"error":"bad request"}`, 400, "bad request"},
		{"messageフィールド", `{"message":"not found"}`, 404, "not found"},
		{"GoTrue形式のmsgフィールド", `{"msg":"invalid token"}`, 401, "invalid token"},
		{"パース不能なボディ", `<html></html>`, 500, "HTTP 500"},
		{"空のJSONオブジェクト", `{}`, 503, "HTTP 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractErrorMessage([]byte(tt.body), tt.statusCode)
			if got != tt.want {
				t.Errorf("extractErrorMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTargetHost_StripsQueryParams(t *testing.T) {
	got := targetHost("https://vision.googleapis.com/v1/images:annotate?key=secret-key")
	if got != "vision.googleapis.com" {
		t.Errorf("targetHost = %q, want %q", got, "vision.googleapis.com")
	}
}
