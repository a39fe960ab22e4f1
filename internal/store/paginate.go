package store

import (
	"context"
	"database/sql"
	"strings"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/pagination"
)

// Bookkeeping columns added to the ordered relation, never part of a node.
const (
	positionColumn   = "_position"
	totalCountColumn = "_total_count"
)

// Page describes what a list endpoint paginates: a base query (table, joins
// and filters; its own ordering and limit are ignored) and the allow-list of
// orderBy values mapped to the expressions they sort by.
type Page struct {
	Query    *Select
	Sortable map[string]string
}

func (p Page) orderClause(args pagination.Args) (string, error) {
	key := p.Query.table.Column("id")
	dir := string(args.OrderDirection.OrElse(pagination.Asc))
	by, ok := args.OrderBy.Get()
	if !ok {
		return key + " " + dir, nil
	}
	expr, ok := p.Sortable[by]
	if !ok {
		return "", domain.BadRequest("cannot order by " + by)
	}
	// Ties fall back to the primary key so positions are stable.
	return expr + " " + dir + ", " + key + " ASC", nil
}

// ordered renders the CTE that numbers every filtered row in order.
func (p Page) ordered(order string) (string, []any, error) {
	q := p.Query
	if q.err != nil {
		return "", nil, q.err
	}
	body, args := q.body()
	var b strings.Builder
	b.WriteString("WITH ordered AS (SELECT ")
	b.WriteString(strings.Join(q.columns, ", "))
	b.WriteString(", ROW_NUMBER() OVER (ORDER BY " + order + ") AS " + positionColumn)
	b.WriteString(", COUNT(*) OVER () AS " + totalCountColumn)
	b.WriteString(body)
	b.WriteString(") ")
	return b.String(), args, nil
}

type summary struct {
	total     int64
	firstID   sql.NullInt64
	lastID    sql.NullInt64
	cursorPos sql.NullInt64
}

// Paginate turns the ordered, filtered relation of page into a connection.
// It issues at most two statements: a one-row summary (count, first and
// last id, position of the cursor row) and the page itself.
func Paginate[S any](ctx context.Context, s *Store, args pagination.Args, page Page, node *codec.Object[S]) (pagination.Connection[S], error) {
	table := page.Query.table.Name
	if err := args.Validate(); err != nil {
		return pagination.Connection[S]{}, err
	}
	order, err := page.orderClause(args)
	if err != nil {
		return pagination.Connection[S]{}, err
	}
	cte, cteArgs, err := page.ordered(order)
	if err != nil {
		return pagination.Connection[S]{}, s.fail("paginate", table, err)
	}

	var cursorID any
	cursor, hasCursor := args.After.Get()
	if !hasCursor {
		cursor, hasCursor = args.Before.Get()
	}
	if hasCursor {
		id, err := pagination.FromCursor(cursor)
		if err != nil {
			return pagination.Connection[S]{}, domain.BadRequest("invalid cursor")
		}
		cursorID = id
	}

	var sum summary
	summarySQL := cte + "SELECT COUNT(*)," +
		" MAX(CASE WHEN " + positionColumn + " = 1 THEN id END)," +
		" MAX(CASE WHEN " + positionColumn + " = " + totalCountColumn + " THEN id END)," +
		" MAX(CASE WHEN id = ? THEN " + positionColumn + " END)" +
		" FROM ordered"
	row := s.db.QueryRowContext(detach(ctx), summarySQL, append(append([]any{}, cteArgs...), cursorID)...)
	if err := row.Scan(&sum.total, &sum.firstID, &sum.lastID, &sum.cursorPos); err != nil {
		return pagination.Connection[S]{}, s.fail("paginate", table, err)
	}
	if sum.total == 0 {
		return pagination.Empty[S](), nil
	}
	if hasCursor && !sum.cursorPos.Valid {
		return pagination.Connection[S]{}, domain.BadRequest("cursor does not belong to this result set")
	}

	pageSQL := cte + "SELECT * FROM ordered"
	pageArgs := append([]any{}, cteArgs...)
	switch {
	case args.After.IsSome():
		pageSQL += " WHERE " + positionColumn + " > ?"
		pageArgs = append(pageArgs, sum.cursorPos.Int64)
	case args.Before.IsSome():
		pageSQL += " WHERE " + positionColumn + " < ?"
		pageArgs = append(pageArgs, sum.cursorPos.Int64)
	}
	reverse := args.Before.IsSome()
	if reverse {
		pageSQL += " ORDER BY " + positionColumn + " DESC"
	} else {
		pageSQL += " ORDER BY " + positionColumn + " ASC"
	}
	limit, hasLimit := args.First.Get()
	if !hasLimit {
		limit, hasLimit = args.Last.Get()
	}
	if hasLimit {
		pageSQL += " LIMIT ?"
		pageArgs = append(pageArgs, limit.Int64())
	}

	rows, err := s.query(ctx, "paginate", table, pageSQL, pageArgs)
	if err != nil {
		return pagination.Connection[S]{}, err
	}
	if reverse {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	conn := pagination.Connection[S]{TotalCount: sum.total, Edges: make([]pagination.Edge[S], 0, len(rows))}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		id, err := codec.Int64().Decode(r["id"])
		if err != nil {
			return pagination.Connection[S]{}, s.fail("paginate", table, err)
		}
		delete(r, positionColumn)
		delete(r, totalCountColumn)
		v, err := decodeRow(s, table, node, r)
		if err != nil {
			return pagination.Connection[S]{}, err
		}
		ids = append(ids, id)
		conn.Edges = append(conn.Edges, pagination.Edge[S]{Node: v, Cursor: pagination.ToCursor(id)})
	}

	if len(ids) == 0 {
		// Nothing on this side of the cursor; the rest of the set is on the other.
		conn.PageInfo.HasPreviousPage = args.After.IsSome()
		conn.PageInfo.HasNextPage = args.Before.IsSome()
		return conn, nil
	}
	first, last := ids[0], ids[len(ids)-1]
	conn.PageInfo = pagination.PageInfo{
		StartCursor:     domain.Some(pagination.ToCursor(first)),
		EndCursor:       domain.Some(pagination.ToCursor(last)),
		HasPreviousPage: first != sum.firstID.Int64,
		HasNextPage:     last != sum.lastID.Int64,
	}
	return conn, nil
}
