package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"mysql": MySQL, " MySQL ": MySQL, "sqlite3": SQLite, "sqlite": SQLite} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseDialect("postgres")
	assert.Error(t, err)
}

func TestInsertThenGet(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	row := newTestItem("alpha", 7, 1)
	row.Note = domain.Some("hello")
	ids := seedItems(t, s, row)
	require.Len(t, ids, 1)

	got, err := Get(ctx, s, itemTable, itemCodec, ByID(ids[0]))
	require.NoError(t, err)
	v, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, ids[0], v.ID)
	assert.Equal(t, "alpha", v.Label.String())
	assert.Equal(t, int64(7), v.Value)
	assert.Equal(t, domain.Some("hello"), v.Note)
	assert.Equal(t, int64(1), v.GroupID)
	assert.False(t, v.CreatedAt.IsZero(), "created_at defaulted by the store")
}

func TestInsert_SuppliedTimestampWins(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	row := newTestItem("alpha", 1, 1)
	row.CreatedAt = domain.Some(at)
	ids := seedItems(t, s, row)

	got, err := Get(ctx, s, itemTable, itemCodec, ByID(ids[0]))
	require.NoError(t, err)
	v, _ := got.Get()
	assert.True(t, at.Equal(v.CreatedAt), "got %v", v.CreatedAt)
}

func TestInsert_BatchReturnsEveryID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	ids := seedItems(t, s, newTestItem("a", 1, 1), newTestItem("b", 2, 1), newTestItem("c", 3, 1))
	assert.Equal(t, []int64{1, 2, 3}, ids)

	all, err := GetAll(ctx, s, itemTable, itemCodec, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, v := range all {
		assert.Equal(t, ids[i], v.ID)
	}
}

func TestInsert_MixedFieldSetsFallBackToOneStatementPerRow(t *testing.T) {
	s := createTestStore(t)

	dated := newTestItem("b", 2, 1)
	dated.CreatedAt = domain.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ids := seedItems(t, s, newTestItem("a", 1, 1), dated, newTestItem("c", 3, 1))
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestInsert_BatchStatementShape(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO items (group_id, label, note, value) VALUES (?, ?, ?, ?), (?, ?, ?, ?)").
		WithArgs(int64(1), "a", nil, int64(1), int64(1), "b", nil, int64(2)).
		WillReturnResult(sqlmock.NewResult(10, 2))

	s := New(db, MySQL, nil)
	ids, err := Insert(context.Background(), s, itemTable, newItemCodec, newTestItem("a", 1, 1), newTestItem("b", 2, 1))
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids, "mysql reports the first id of the batch")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertedIDs_PerDialect(t *testing.T) {
	res := sqlmock.NewResult(12, 3)

	ids, err := MySQL.insertedIDs(res, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 13, 14}, ids)

	ids, err = SQLite.insertedIDs(res, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, ids)
}

func TestGet_MissingRowIsNone(t *testing.T) {
	s := createTestStore(t)
	got, err := Get(context.Background(), s, itemTable, itemCodec, ByID(42))
	require.NoError(t, err)
	assert.True(t, got.IsNone())
}

func TestGetAll_MatchAndBuild(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedItems(t, s, newTestItem("a", 1, 1), newTestItem("b", 2, 2), newTestItem("c", 3, 2))

	byGroup, err := GetAll(ctx, s, itemTable, itemCodec, Match{"group_id": 2})
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)

	big, err := GetAll(ctx, s, itemTable, itemCodec, Build(func(q *Select) {
		q.Where(itemTable.Column("value")+" >= ?", 2).OrderBy(itemTable.Column("value") + " DESC")
	}))
	require.NoError(t, err)
	require.Len(t, big, 2)
	assert.Equal(t, "c", big[0].Label.String())

	nulls, err := GetAll(ctx, s, itemTable, itemCodec, Match{"note": nil})
	require.NoError(t, err)
	assert.Len(t, nulls, 3)
}

func TestGetAll_RejectsUnlistedColumn(t *testing.T) {
	s := createTestStore(t)
	_, err := GetAll(context.Background(), s, itemTable, itemCodec, Match{"password": "x"})
	assert.True(t, domain.IsInternal(err))
}

func TestUpdate_ChangesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	row := newTestItem("alpha", 1, 1)
	row.Note = domain.Some("keep me")
	ids := seedItems(t, s, row)

	patch := codec.Partial[item]{Value: item{ID: 999, Value: 10}, Fields: []string{"id", "value"}}
	n, err := Update(ctx, s, itemTable, ids[0], patch, itemCodec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := Get(ctx, s, itemTable, itemCodec, ByID(ids[0]))
	require.NoError(t, err)
	v, ok := got.Get()
	require.True(t, ok, "id must not be rewritten")
	assert.Equal(t, int64(10), v.Value)
	assert.Equal(t, "alpha", v.Label.String())
	assert.Equal(t, domain.Some("keep me"), v.Note)
}

func TestUpdate_ClearsOptionalField(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	row := newTestItem("alpha", 1, 1)
	row.Note = domain.Some("drop me")
	ids := seedItems(t, s, row)

	patch, err := itemCodec.DecodePartial(map[string]any{"note": nil})
	require.NoError(t, err)
	_, err = Update(ctx, s, itemTable, ids[0], patch, itemCodec)
	require.NoError(t, err)

	got, _ := Get(ctx, s, itemTable, itemCodec, ByID(ids[0]))
	v, _ := got.Get()
	assert.True(t, v.Note.IsNone())
}

func TestUpdate_EmptyPatchIssuesNoStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	n, err := Update(context.Background(), New(db, MySQL, nil), itemTable, 1, codec.Partial[item]{}, itemCodec)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedItems(t, s, newTestItem("a", 1, 1), newTestItem("b", 2, 2), newTestItem("c", 3, 2))

	n, err := Remove(ctx, s, itemTable, Match{"group_id": 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Unscoped criteria removes every row.
	n, err = Remove(ctx, s, itemTable, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := GetAll(ctx, s, itemTable, itemCodec, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRemove_RejectsJoins(t *testing.T) {
	s := createTestStore(t)
	_, err := Remove(context.Background(), s, itemTable, Build(func(q *Select) {
		q.Join("JOIN other ON other.id = items.group_id")
	}))
	assert.True(t, domain.IsInternal(err))
}

func TestEngineFailureIsInternal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .* FROM items").WillReturnError(errors.New("connection refused"))

	_, err = Get(context.Background(), New(db, MySQL, nil), itemTable, itemCodec, ByID(1))
	require.Error(t, err)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.KindInternal, derr.Kind)
	assert.NotContains(t, derr.Message, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoredRowThatFailsDecodeIsInternal(t *testing.T) {
	s := createTestStore(t)
	_, err := s.DB().Exec(`INSERT INTO items (label, value) VALUES ('', 1)`)
	require.NoError(t, err)

	_, err = GetAll(context.Background(), s, itemTable, itemCodec, nil)
	assert.True(t, domain.IsInternal(err))
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, Migrate(ctx, db, SQLite))
	require.NoError(t, Migrate(ctx, db, SQLite))

	for _, table := range []string{"users", "tax_rates", "clients", "projects", "tasks", "sessions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestSchema_MySQL(t *testing.T) {
	stmts, err := Schema(MySQL)
	require.NoError(t, err)
	assert.Len(t, stmts, 6)
	for _, stmt := range stmts {
		assert.Contains(t, stmt, "ENGINE=InnoDB")
	}
}
