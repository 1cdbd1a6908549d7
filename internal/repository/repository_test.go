package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"github.com/z5702god/remeet-server/internal/deletion"
)

// 削除サーガの消費者インターフェースを各リポジトリが満たすことを
// コンパイル時に検証する。
var (
	_ deletion.UserDataDeleter = (*PostgresMeetingContextRepo)(nil)
	_ deletion.UserDataDeleter = (*PostgresBusinessCardRepo)(nil)
	_ deletion.UserDataDeleter = (*PostgresContactRepo)(nil)
	_ deletion.ProfileDeleter  = (*PostgresProfileRepo)(nil)
)

// execLog はフェイクドライバーが受け取ったSQL文と引数を記録する。
type execLog struct {
	queries []string
	args    [][]driver.Value
	rows    int64
	err     error
}

func (l *execLog) record(query string, args []driver.Value) {
	l.queries = append(l.queries, query)
	l.args = append(l.args, args)
}

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	return nil, errors.New("open via connector")
}

type fakeConnector struct {
	log *execLog
}

func (c *fakeConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return &fakeConn{log: c.log}, nil
}

func (c *fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeConn struct {
	log *execLog
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{query: query, log: c.log}, nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

type fakeStmt struct {
	query string
	log   *execLog
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.log.record(s.query, args)
	if s.log.err != nil {
		return nil, s.log.err
	}
	return driver.RowsAffected(s.log.rows), nil
}

func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return nil, errors.New("queries not supported")
}

// newFakeDB は実行されたSQL文を記録するsql.DBを生成する。
func newFakeDB(log *execLog) *sql.DB {
	return sql.OpenDB(&fakeConnector{log: log})
}

func TestRepositories_DeleteByUserID_BuildsParameterizedDelete(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		deleteRun func(db *sql.DB) error
	}{
		{
			"面会メモ", "meeting_contexts",
			func(db *sql.DB) error {
				return NewPostgresMeetingContextRepo(db).DeleteByUserID(context.Background(), "user-123")
			},
		},
		{
			"名刺", "business_cards",
			func(db *sql.DB) error {
				return NewPostgresBusinessCardRepo(db).DeleteByUserID(context.Background(), "user-123")
			},
		},
		{
			"連絡先", "contacts",
			func(db *sql.DB) error {
				return NewPostgresContactRepo(db).DeleteByUserID(context.Background(), "user-123")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &execLog{rows: 2}
			db := newFakeDB(log)
			defer db.Close()

			if err := tt.deleteRun(db); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(log.queries) != 1 {
				t.Fatalf("executed queries = %d, want 1", len(log.queries))
			}
			// user_idのプレースホルダ付きDELETE文であること
			want := "DELETE FROM " + tt.table + " WHERE user_id = $1"
			if !strings.Contains(log.queries[0], want) {
				t.Errorf("query = %q, want to contain %q", log.queries[0], want)
			}
			if len(log.args[0]) != 1 || log.args[0][0] != "user-123" {
				t.Errorf("args = %v, want [user-123]", log.args[0])
			}
		})
	}
}

func TestPostgresProfileRepo_DeleteByID_BuildsParameterizedDelete(t *testing.T) {
	log := &execLog{rows: 1}
	db := newFakeDB(log)
	defer db.Close()

	if err := NewPostgresProfileRepo(db).DeleteByID(context.Background(), "user-123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(log.queries) != 1 {
		t.Fatalf("executed queries = %d, want 1", len(log.queries))
	}
	if !strings.Contains(log.queries[0], "DELETE FROM users WHERE id = $1") {
		t.Errorf("query = %q, want users delete by id", log.queries[0])
	}
	if len(log.args[0]) != 1 || log.args[0][0] != "user-123" {
		t.Errorf("args = %v, want [user-123]", log.args[0])
	}
}

func TestRepositories_DeleteWithZeroRows_IsIdempotent(t *testing.T) {
	// 対象行が存在しない再実行（0行削除）はエラーにならない
	log := &execLog{rows: 0}
	db := newFakeDB(log)
	defer db.Close()

	if err := NewPostgresContactRepo(db).DeleteByUserID(context.Background(), "user-123"); err != nil {
		t.Errorf("contacts: expected no error for zero rows, got %v", err)
	}
	if err := NewPostgresProfileRepo(db).DeleteByID(context.Background(), "user-123"); err != nil {
		t.Errorf("users: expected no error for zero rows, got %v", err)
	}
}

func TestRepositories_DeleteFailure_ReturnsWrappedError(t *testing.T) {
	log := &execLog{err: errors.New("connection reset")}
	db := newFakeDB(log)
	defer db.Close()

	err := NewPostgresBusinessCardRepo(db).DeleteByUserID(context.Background(), "user-123")
	if err == nil {
		t.Fatal("expected error for driver failure")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error = %q, want to wrap driver error", err)
	}
}
