// Package model はドメインモデルを定義する。
package model

import "time"

// UserIdentity は認証プロバイダが解決したユーザー識別情報を表す。
type UserIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// StructuredFields は名刺テキストから抽出された構造化フィールドを表す。
// すべてのフィールドはnullableで、判定できなかった項目はnilになる。
type StructuredFields struct {
	FullName   *string `json:"fullName"`
	Title      *string `json:"title"`
	Department *string `json:"department"`
	Company    *string `json:"company"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Website    *string `json:"website"`
	Address    *string `json:"address"`
}

// OCRStatus は名刺画像のOCR処理状態を表す。
type OCRStatus string

const (
	// OCRStatusPending はOCR処理待ちを示す。
	OCRStatusPending OCRStatus = "pending"
	// OCRStatusProcessing はOCR処理中を示す。
	OCRStatusProcessing OCRStatus = "processing"
	// OCRStatusCompleted はOCR処理完了を示す。
	OCRStatusCompleted OCRStatus = "completed"
	// OCRStatusFailed はOCR処理失敗を示す。
	OCRStatusFailed OCRStatus = "failed"
)

// Profile はusersテーブルのプロフィール行を表す。
// 認証プロバイダのレコードをミラーしたもので、サインアップ時に作成される。
type Profile struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact は連絡先を表す。1人のユーザーに属し、任意で会社と名刺を参照する。
type Contact struct {
	ID             string
	UserID         string
	CompanyID      *string
	BusinessCardID *string
	FullName       string
	Title          string
	Department     string
	Phone          string
	Email          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BusinessCard は名刺を表す。オブジェクトストア上の画像パスとOCR状態を保持する。
type BusinessCard struct {
	ID        string
	UserID    string
	ImagePath string
	OCRStatus OCRStatus
	RawText   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MeetingContext は連絡先との面会メモを表す。
type MeetingContext struct {
	ID        string
	UserID    string
	ContactID string
	MetAt     time.Time
	Location  string
	Notes     string
	CreatedAt time.Time
}
