package model

import "fmt"

// ErrorKind はAPIエラーの安定した分類タグを表す。
// モバイルクライアントはエラーメッセージ文字列ではなくこのタグで
// ユーザー向け表示を切り替える。
type ErrorKind string

const (
	// KindAuth は認証エラー（トークン欠落・無効・期限切れ）。再試行不可。
	KindAuth ErrorKind = "auth"
	// KindValidation はリクエストフィールドの欠落・不正。クライアント側で修正可能。
	KindValidation ErrorKind = "validation"
	// KindConfiguration は外部APIの認証情報が環境に未設定。オペレーター側で修正可能。
	KindConfiguration ErrorKind = "configuration"
	// KindUpstream はサードパーティAPIの呼び出し失敗。
	KindUpstream ErrorKind = "upstream"
	// KindInternal は予期しない内部エラー。
	KindInternal ErrorKind = "internal"
)

// APIError は統一エラーフォーマットを表す。
// Kindはクライアントがマッピングに使う安定タグ、Messageはユーザー提示用、
// Detailsは上流エラーから抽出した人間可読メッセージ（secretは含めない）。
type APIError struct {
	Kind    ErrorKind
	Message string
	Details string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// NewMissingAuthorizationError はAuthorizationヘッダー欠落エラーを生成する。
func NewMissingAuthorizationError() *APIError {
	return &APIError{
		Kind:    KindAuth,
		Message: "Missing authorization header",
	}
}

// NewNotAuthenticatedError はトークン検証失敗エラーを生成する。
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Kind:    KindAuth,
		Message: "User not authenticated",
	}
}

// NewMissingImageError は画像データ欠落エラーを生成する。
func NewMissingImageError() *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: "Missing image data",
	}
}

// NewMissingTextError はテキストデータ欠落エラーを生成する。
func NewMissingTextError() *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: "Missing text data",
	}
}

// NewOCRNotConfiguredError はOCRエンジンの認証情報未設定エラーを生成する。
func NewOCRNotConfiguredError() *APIError {
	return &APIError{
		Kind:    KindConfiguration,
		Message: "OCR service not configured",
	}
}

// NewParserNotConfiguredError は補完エンジンの認証情報未設定エラーを生成する。
func NewParserNotConfiguredError() *APIError {
	return &APIError{
		Kind:    KindConfiguration,
		Message: "AI parser not configured",
	}
}

// NewOCRFailedError はOCR上流呼び出し失敗エラーを生成する。
func NewOCRFailedError(details string) *APIError {
	return &APIError{
		Kind:    KindUpstream,
		Message: "OCR processing failed",
		Details: details,
	}
}

// NewParseFailedError はフィールド抽出の上流呼び出し失敗エラーを生成する。
func NewParseFailedError(details string) *APIError {
	return &APIError{
		Kind:    KindUpstream,
		Message: "Card parsing failed",
		Details: details,
	}
}

// NewDeletionFailedError はアカウント削除の致命的失敗エラーを生成する。
func NewDeletionFailedError(details string) *APIError {
	return &APIError{
		Kind:    KindUpstream,
		Message: "Failed to delete account",
		Details: details,
	}
}

// NewInternalError は予期しない内部エラーを生成する。
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}
