package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresMeetingContextRepo はPostgreSQLを使用した面会メモリポジトリ。
type PostgresMeetingContextRepo struct {
	db *sql.DB
}

// NewPostgresMeetingContextRepo はPostgresMeetingContextRepoを生成する。
func NewPostgresMeetingContextRepo(db *sql.DB) *PostgresMeetingContextRepo {
	return &PostgresMeetingContextRepo{db: db}
}

// DeleteByUserID は指定ユーザーの面会メモをすべて削除する。
// 対象行が0件でもエラーにしない（再実行に対して冪等）。
func (r *PostgresMeetingContextRepo) DeleteByUserID(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM meeting_contexts WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete meeting contexts: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil {
		slog.Info("面会メモを削除しました",
			slog.String("user_id", userID),
			slog.Int64("rows", rows),
		)
	}

	return nil
}

// compile-time interface check
var _ MeetingContextRepository = (*PostgresMeetingContextRepo)(nil)
