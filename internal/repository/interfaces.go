// Package repository はリレーショナルストアへのアクセスを提供する。
package repository

import "context"

// MeetingContextRepository は面会メモの永続化インターフェース。
type MeetingContextRepository interface {
	// DeleteByUserID は指定ユーザーの面会メモをすべて削除する。
	// 対象行が存在しない場合もエラーにしない。
	DeleteByUserID(ctx context.Context, userID string) error
}

// BusinessCardRepository は名刺の永続化インターフェース。
type BusinessCardRepository interface {
	// DeleteByUserID は指定ユーザーの名刺をすべて削除する。
	// 対象行が存在しない場合もエラーにしない。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ContactRepository は連絡先の永続化インターフェース。
type ContactRepository interface {
	// DeleteByUserID は指定ユーザーの連絡先をすべて削除する。
	// 対象行が存在しない場合もエラーにしない。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileRepository はプロフィール行の永続化インターフェース。
type ProfileRepository interface {
	// DeleteByID は指定IDのプロフィール行を削除する。
	// 行が存在しない場合もエラーにしない（delete-if-exists）。
	DeleteByID(ctx context.Context, id string) error
}
