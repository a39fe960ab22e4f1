// Package store is the table-agnostic data access layer. Every read decodes
// rows through a codec and every write encodes through one, so the shapes
// stored and the shapes served are the same validated types.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tracker/internal/codec"
	"tracker/internal/domain"

	"github.com/hashicorp/go-hclog"
)

type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite3"
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(s))) {
	case MySQL:
		return MySQL, nil
	case SQLite, "sqlite":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

// insertedIDs derives the ids of a multi-row insert. MySQL reports the id of
// the first row of the batch, SQLite the id of the last one. Both allocate
// ids of a single statement consecutively.
func (d Dialect) insertedIDs(res sql.Result, n int) ([]int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	first := id
	if d != MySQL {
		first = id - int64(n) + 1
	}
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = first + int64(i)
	}
	return ids, nil
}

// Store runs statements on one shared *sql.DB. It adds no transactions: a
// write followed by a read from a handler is not atomic.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     hclog.Logger
}

func New(db *sql.DB, dialect Dialect, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{db: db, dialect: dialect, log: logger.Named("store")}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.dialect }

// detach keeps request values but drops cancellation: once issued, a
// statement runs to completion even if the client goes away.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// fail logs an engine failure in full and returns the opaque internal error
// that is safe to show a client.
func (s *Store) fail(op, table string, err error) error {
	s.log.Error("statement failed", "op", op, "table", table, "error", err)
	return domain.Internal(fmt.Sprintf("store: %s %s", op, table), err)
}

func (s *Store) query(ctx context.Context, op, table, query string, args []any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(detach(ctx), query, args...)
	if err != nil {
		return nil, s.fail(op, table, err)
	}
	defer rows.Close()
	out, err := scanMaps(rows)
	if err != nil {
		return nil, s.fail(op, table, err)
	}
	return out, nil
}

func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			m[c] = vals[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// decodeRow turns a stored row into S. A stored row that does not satisfy
// its codec is a server defect, reported as internal and always logged.
func decodeRow[S any](s *Store, table string, obj *codec.Object[S], row map[string]any) (S, error) {
	v, err := obj.Decode(row)
	if err != nil {
		s.log.Error("stored row does not match codec", "table", table, "codec", obj.Name(), "error", err)
		var zero S
		return zero, domain.Internal("store: decode "+table, err)
	}
	return v, nil
}

func buildSelect(t Table, criteria Criteria) *Select {
	q := From(t)
	if criteria != nil {
		criteria.Apply(q)
	}
	return q
}

// Get returns the first row matching criteria, or None.
func Get[S any](ctx context.Context, s *Store, t Table, obj *codec.Object[S], criteria Criteria) (domain.Option[S], error) {
	query, args, err := buildSelect(t, criteria).Limit(1).SQL()
	if err != nil {
		return domain.None[S](), s.fail("get", t.Name, err)
	}
	rows, err := s.query(ctx, "get", t.Name, query, args)
	if err != nil || len(rows) == 0 {
		return domain.None[S](), err
	}
	v, err := decodeRow(s, t.Name, obj, rows[0])
	if err != nil {
		return domain.None[S](), err
	}
	return domain.Some(v), nil
}

// GetAll returns every row matching criteria.
func GetAll[S any](ctx context.Context, s *Store, t Table, obj *codec.Object[S], criteria Criteria) ([]S, error) {
	query, args, err := buildSelect(t, criteria).SQL()
	if err != nil {
		return nil, s.fail("get_all", t.Name, err)
	}
	rows, err := s.query(ctx, "get_all", t.Name, query, args)
	if err != nil {
		return nil, err
	}
	out := make([]S, 0, len(rows))
	for _, row := range rows {
		v, err := decodeRow(s, t.Name, obj, row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Insert writes rows and returns their generated ids in order. Fields that
// encode to codec.Undefined are left for the store to default. Rows that
// share the same set of fields go out as one multi-row statement.
func Insert[S any](ctx context.Context, s *Store, t Table, obj *codec.Object[S], rows ...S) ([]int64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	encoded := make([]map[string]any, len(rows))
	for i, r := range rows {
		encoded[i] = obj.Encode(r)
	}
	cols := sortedKeys(encoded[0])
	uniform := true
	for _, m := range encoded[1:] {
		if strings.Join(sortedKeys(m), ",") != strings.Join(cols, ",") {
			uniform = false
			break
		}
	}
	if !uniform || (len(cols) == 0 && len(rows) > 1) {
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			id, err := Insert(ctx, s, t, obj, r)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id...)
		}
		return ids, nil
	}
	if err := t.checkColumns(cols); err != nil {
		return nil, s.fail("insert", t.Name, err)
	}

	values := make([]string, len(encoded))
	args := make([]any, 0, len(cols)*len(encoded))
	for i, m := range encoded {
		values[i] = placeholders(len(cols))
		for _, c := range cols {
			args = append(args, m[c])
		}
	}
	var query string
	switch {
	case len(cols) == 0 && s.dialect == MySQL:
		query = "INSERT INTO " + t.Name + " () VALUES ()"
	case len(cols) == 0:
		query = "INSERT INTO " + t.Name + " DEFAULT VALUES"
	default:
		query = "INSERT INTO " + t.Name + " (" + strings.Join(cols, ", ") + ") VALUES " + strings.Join(values, ", ")
	}

	res, err := s.db.ExecContext(detach(ctx), query, args...)
	if err != nil {
		return nil, s.fail("insert", t.Name, err)
	}
	ids, err := s.dialect.insertedIDs(res, len(encoded))
	if err != nil {
		return nil, s.fail("insert", t.Name, err)
	}
	return ids, nil
}

// Update writes the supplied fields of patch to row id and returns the
// number of rows affected. The id column itself is never written.
func Update[S any](ctx context.Context, s *Store, t Table, id int64, patch codec.Partial[S], obj *codec.Object[S]) (int64, error) {
	values := obj.EncodePartial(patch)
	delete(values, "id")
	if len(values) == 0 {
		return 0, nil
	}
	cols := sortedKeys(values)
	if err := t.checkColumns(cols); err != nil {
		return 0, s.fail("update", t.Name, err)
	}
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, values[c])
	}
	args = append(args, id)

	query := "UPDATE " + t.Name + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(detach(ctx), query, args...)
	if err != nil {
		return 0, s.fail("update", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("update", t.Name, err)
	}
	return n, nil
}

// Remove deletes the rows matching criteria. A nil criteria deletes every
// row of the table: that is what it means, and it is not guarded here.
func Remove(ctx context.Context, s *Store, t Table, criteria Criteria) (int64, error) {
	q := buildSelect(t, criteria)
	if q.err != nil {
		return 0, s.fail("remove", t.Name, q.err)
	}
	if len(q.joins) > 0 {
		return 0, s.fail("remove", t.Name, fmt.Errorf("joins are not supported in deletes"))
	}
	query := "DELETE FROM " + t.Name
	if len(q.where) > 0 {
		query += " WHERE " + strings.Join(q.where, " AND ")
	}
	res, err := s.db.ExecContext(detach(ctx), query, q.whereArgs...)
	if err != nil {
		return 0, s.fail("remove", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("remove", t.Name, err)
	}
	return n, nil
}
