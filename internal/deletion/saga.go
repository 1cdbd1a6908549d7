// Package deletion はアカウント削除サーガを提供する。
// リレーショナルストア（3テーブル）・オブジェクトストア（1プレフィックス）・
// 認証プロバイダにまたがる順序付き削除を、ステップごとの失敗ポリシー付きで
// 実行する。ロールバックは行わない（ベストエフォート削除 + 認証レコード
// 削除必須のポリシー）。
package deletion

import (
	"context"
	"fmt"
	"log/slog"
)

// FailurePolicy はステップ失敗時の扱いを表す。
type FailurePolicy string

const (
	// FailureLog は失敗をログに記録してサーガを続行する。
	FailureLog FailurePolicy = "log"
	// FailureAbort は失敗時にサーガ全体を失敗として中断する。
	FailureAbort FailurePolicy = "abort"
)

// Step はサーガの1ステップを表す。
// 致命的/非致命的の区別はコードのtry-catch構造ではなく
// データとして宣言し、ドライバーループが解釈する。
type Step struct {
	Name      string
	Run       func(ctx context.Context) error
	OnFailure FailurePolicy
}

// UserDataDeleter はユーザー単位の一括削除インターフェース。
// repositoryパッケージの各リポジトリが満たす。
type UserDataDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileDeleter はプロフィール行の削除インターフェース。
type ProfileDeleter interface {
	DeleteByID(ctx context.Context, id string) error
}

// ObjectRemover はオブジェクトストアの一覧・削除インターフェース。
type ObjectRemover interface {
	ListPrefix(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, paths []string) error
}

// IdentityDeleter は認証プロバイダの管理者削除インターフェース。
type IdentityDeleter interface {
	DeleteUser(ctx context.Context, userID string) error
}

// StepRecorder はステップ実行結果のメトリクス収集インターフェース。
type StepRecorder interface {
	RecordSagaStep(step string, succeeded bool)
}

// Saga はアカウント削除サーガの実装。
// 認証はこのサーガの手前（ハンドラー層）で完了している前提。
type Saga struct {
	meetings UserDataDeleter
	cards    UserDataDeleter
	contacts UserDataDeleter
	profiles ProfileDeleter
	objects  ObjectRemover
	identity IdentityDeleter
	logger   *slog.Logger
	metrics  StepRecorder
}

// NewSaga はSagaの新しいインスタンスを生成する。metricsはnil可。
func NewSaga(
	meetings UserDataDeleter,
	cards UserDataDeleter,
	contacts UserDataDeleter,
	profiles ProfileDeleter,
	objects ObjectRemover,
	identity IdentityDeleter,
	logger *slog.Logger,
	metrics StepRecorder,
) *Saga {
	return &Saga{
		meetings: meetings,
		cards:    cards,
		contacts: contacts,
		profiles: profiles,
		objects:  objects,
		identity: identity,
		logger:   logger,
		metrics:  metrics,
	}
}

// steps は指定ユーザーに対する削除ステップ列を構築する。
//
// 順序は外部キー依存（子→親）と資格情報スコープで固定:
// 面会メモと名刺は連絡先を、連絡先はユーザーを参照する。
// 認証レコードの削除はサービスロール資格情報を使う唯一のステップであり、
// データ削除後にゴーストアカウントでログインできてしまう事態を防ぐため
// 必ず最後に置き、唯一の致命的ステップとする。
func (s *Saga) steps(userID string) []Step {
	return []Step{
		{
			Name: "delete_meeting_contexts",
			Run: func(ctx context.Context) error {
				return s.meetings.DeleteByUserID(ctx, userID)
			},
			OnFailure: FailureLog,
		},
		{
			Name: "delete_business_cards",
			Run: func(ctx context.Context) error {
				return s.cards.DeleteByUserID(ctx, userID)
			},
			OnFailure: FailureLog,
		},
		{
			Name: "delete_contacts",
			Run: func(ctx context.Context) error {
				return s.contacts.DeleteByUserID(ctx, userID)
			},
			OnFailure: FailureLog,
		},
		{
			// ストレージクリーンアップはコスト・プライバシー上の問題であって
			// 正確性の問題ではない。一覧取得の失敗もアカウント削除を妨げない。
			Name: "remove_storage_objects",
			Run: func(ctx context.Context) error {
				paths, err := s.objects.ListPrefix(ctx, userID+"/")
				if err != nil {
					return fmt.Errorf("list failed: %w", err)
				}
				return s.objects.Remove(ctx, paths)
			},
			OnFailure: FailureLog,
		},
		{
			Name: "delete_profile_row",
			Run: func(ctx context.Context) error {
				return s.profiles.DeleteByID(ctx, userID)
			},
			OnFailure: FailureLog,
		},
		{
			Name: "delete_identity_record",
			Run: func(ctx context.Context) error {
				return s.identity.DeleteUser(ctx, userID)
			},
			OnFailure: FailureAbort,
		},
	}
}

// Run は削除ステップを宣言順に逐次実行する。
// OnFailure=FailureLogのステップの失敗はログに記録して続行し、
// クライアント向けレスポンスには一切現れない。
// OnFailure=FailureAbortのステップが失敗した場合のみエラーを返す。
// 各削除は冪等であり、同一ユーザーに対する再実行は安全。
func (s *Saga) Run(ctx context.Context, userID string) error {
	s.logger.Info("アカウント削除を開始します",
		slog.String("user_id", userID),
	)

	for _, step := range s.steps(userID) {
		err := step.Run(ctx)

		if s.metrics != nil {
			s.metrics.RecordSagaStep(step.Name, err == nil)
		}

		if err == nil {
			s.logger.Info("削除ステップが完了しました",
				slog.String("user_id", userID),
				slog.String("step", step.Name),
			)
			continue
		}

		if step.OnFailure == FailureAbort {
			s.logger.Error("致命的な削除ステップが失敗しました",
				slog.String("user_id", userID),
				slog.String("step", step.Name),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("deletion step %s failed: %w", step.Name, err)
		}

		// ベストエフォートステップの失敗。記録して続行する。
		s.logger.Warn("削除ステップが失敗しました（続行します）",
			slog.String("user_id", userID),
			slog.String("step", step.Name),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("アカウント削除が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
