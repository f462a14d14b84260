package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeRows struct {
	rows []fakeRow
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return r.rows[r.pos-1].Scan(dest...)
}

// fakeDB records the last statement and answers from its function fields.
type fakeDB struct {
	lastSQL  string
	lastArgs []any

	exec     func(sql string, args ...any) (pgconn.CommandTag, error)
	query    func(sql string, args ...any) (pgx.Rows, error)
	queryRow func(sql string, args ...any) pgx.Row
}

func (f *fakeDB) record(sql string, args []any) {
	f.lastSQL = sql
	f.lastArgs = args
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	return f.query(sql, args...)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	return f.queryRow(sql, args...)
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	return f.exec(sql, args...)
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) { return nil, nil }
func (f *fakeDB) Ping(context.Context) error            { return nil }
func (f *fakeDB) Close()                                {}
