package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresBusinessCardRepo はPostgreSQLを使用した名刺リポジトリ。
type PostgresBusinessCardRepo struct {
	db *sql.DB
}

// NewPostgresBusinessCardRepo はPostgresBusinessCardRepoを生成する。
func NewPostgresBusinessCardRepo(db *sql.DB) *PostgresBusinessCardRepo {
	return &PostgresBusinessCardRepo{db: db}
}

// DeleteByUserID は指定ユーザーの名刺をすべて削除する。
// オブジェクトストア上の画像は削除しない（ストレージクリーンアップは別ステップ）。
// 対象行が0件でもエラーにしない（再実行に対して冪等）。
func (r *PostgresBusinessCardRepo) DeleteByUserID(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM business_cards WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete business cards: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil {
		slog.Info("名刺を削除しました",
			slog.String("user_id", userID),
			slog.Int64("rows", rows),
		)
	}

	return nil
}

// compile-time interface check
var _ BusinessCardRepository = (*PostgresBusinessCardRepo)(nil)
