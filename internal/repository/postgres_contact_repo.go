package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresContactRepo はPostgreSQLを使用した連絡先リポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

// DeleteByUserID は指定ユーザーの連絡先をすべて削除する。
// 参照先のcompaniesは共有レコードのため削除しない。
// 対象行が0件でもエラーにしない（再実行に対して冪等）。
func (r *PostgresContactRepo) DeleteByUserID(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete contacts: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil {
		slog.Info("連絡先を削除しました",
			slog.String("user_id", userID),
			slog.Int64("rows", rows),
		)
	}

	return nil
}

// compile-time interface check
var _ ContactRepository = (*PostgresContactRepo)(nil)
