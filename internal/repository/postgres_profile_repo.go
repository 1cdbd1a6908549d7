package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
// usersテーブルは認証プロバイダのレコードをミラーしたプロフィール行を保持する。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// DeleteByID は指定IDのプロフィール行を削除する。
// サインアップが非トランザクショナルなため、プロフィール行が存在しない
// ユーザーもありうる。行が存在しない場合もエラーにしない。
func (r *PostgresProfileRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil {
		slog.Info("プロフィール行を削除しました",
			slog.String("user_id", id),
			slog.Int64("rows", rows),
		)
	}

	return nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
