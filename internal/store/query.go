package store

import (
	"fmt"
	"sort"
	"strings"
)

// Table names a table and the only columns statements may reference on it.
// Identifiers never come from request input; they are fixed here in code.
type Table struct {
	Name    string
	Columns []string
}

func (t Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Column returns the qualified name of an allow-listed column.
func (t Table) Column(column string) string {
	return t.Name + "." + column
}

func (t Table) checkColumns(columns []string) error {
	for _, c := range columns {
		if !t.Has(c) {
			return fmt.Errorf("column %q is not allowed on %s", c, t.Name)
		}
	}
	return nil
}

// Select builds a parameterized SELECT over one table plus optional joins.
// Values always travel as arguments; the SQL text only holds identifiers and
// fragments written in this codebase.
type Select struct {
	table     Table
	columns   []string
	joins     []string
	joinArgs  []any
	where     []string
	whereArgs []any
	orderBy   []string
	limit     int
	err       error
}

// From selects every allow-listed column of t, aliased to its bare name.
func From(t Table) *Select {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = t.Column(c) + " AS " + c
	}
	return &Select{table: t, columns: cols}
}

func (q *Select) Table() Table { return q.table }

func (q *Select) Join(clause string, args ...any) *Select {
	q.joins = append(q.joins, clause)
	q.joinArgs = append(q.joinArgs, args...)
	return q
}

// Where adds a condition; conditions are joined with AND.
func (q *Select) Where(cond string, args ...any) *Select {
	q.where = append(q.where, "("+cond+")")
	q.whereArgs = append(q.whereArgs, args...)
	return q
}

// Eq matches an allow-listed column of the base table. A nil value matches NULL.
func (q *Select) Eq(column string, value any) *Select {
	if !q.table.Has(column) {
		q.err = fmt.Errorf("column %q is not allowed on %s", column, q.table.Name)
		return q
	}
	if value == nil {
		return q.Where(q.table.Column(column) + " IS NULL")
	}
	return q.Where(q.table.Column(column)+" = ?", value)
}

func (q *Select) OrderBy(exprs ...string) *Select {
	q.orderBy = append(q.orderBy, exprs...)
	return q
}

func (q *Select) Limit(n int) *Select {
	q.limit = n
	return q
}

// body renders FROM, JOIN and WHERE with their arguments.
func (q *Select) body() (string, []any) {
	var b strings.Builder
	b.WriteString(" FROM ")
	b.WriteString(q.table.Name)
	for _, j := range q.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	args := make([]any, 0, len(q.joinArgs)+len(q.whereArgs))
	args = append(args, q.joinArgs...)
	args = append(args, q.whereArgs...)
	return b.String(), args
}

func (q *Select) SQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	body, args := q.body()
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.columns, ", "))
	b.WriteString(body)
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}
	if q.limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.limit)
	}
	return b.String(), args, nil
}

// Criteria narrows a read or delete.
type Criteria interface {
	Apply(q *Select)
}

// Match is an exact-match criteria on base-table columns.
type Match map[string]any

func (m Match) Apply(q *Select) {
	for _, k := range sortedKeys(m) {
		q.Eq(k, m[k])
	}
}

// Build is the escape hatch: it edits the statement directly.
type Build func(q *Select)

func (b Build) Apply(q *Select) { b(q) }

// ByID matches the primary key.
func ByID(id int64) Criteria { return Match{"id": id} }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func placeholders(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
