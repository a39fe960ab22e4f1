package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type item struct {
	ID        int64
	Label     domain.NonEmptyString
	Value     int64
	Note      domain.Option[string]
	GroupID   int64
	CreatedAt time.Time
}

type newItem struct {
	Label     domain.NonEmptyString
	Value     int64
	Note      domain.Option[string]
	GroupID   int64
	CreatedAt domain.Option[time.Time]
}

var itemTable = Table{
	Name:    "items",
	Columns: []string{"id", "label", "value", "note", "group_id", "created_at"},
}

var itemCodec = codec.NewObject("Item",
	codec.Prop("id", codec.Int64(), func(i *item) *int64 { return &i.ID }),
	codec.Prop("label", codec.NonEmptyString(), func(i *item) *domain.NonEmptyString { return &i.Label }),
	codec.Prop("value", codec.Int64(), func(i *item) *int64 { return &i.Value }),
	codec.Prop("note", codec.Optional(codec.String()), func(i *item) *domain.Option[string] { return &i.Note }),
	codec.Prop("group_id", codec.Int64(), func(i *item) *int64 { return &i.GroupID }),
	codec.Prop("created_at", codec.Time(), func(i *item) *time.Time { return &i.CreatedAt }),
)

var newItemCodec = codec.NewObject("NewItem",
	codec.Prop("label", codec.NonEmptyString(), func(i *newItem) *domain.NonEmptyString { return &i.Label }),
	codec.Prop("value", codec.Int64(), func(i *newItem) *int64 { return &i.Value }),
	codec.Prop("note", codec.Optional(codec.String()), func(i *newItem) *domain.Option[string] { return &i.Note }),
	codec.Prop("group_id", codec.Int64(), func(i *newItem) *int64 { return &i.GroupID }),
	codec.Prop("created_at", codec.Defaulted(codec.Time()), func(i *newItem) *domain.Option[time.Time] { return &i.CreatedAt }),
)

const itemsDDL = `CREATE TABLE items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL,
    value INTEGER NOT NULL,
    note TEXT,
    group_id INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestStore opens a temp-dir SQLite database holding an empty items table.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec(itemsDDL); err != nil {
		t.Fatalf("create items: %v", err)
	}
	return New(db, SQLite, nil)
}

func newTestItem(label string, value, group int64) newItem {
	return newItem{Label: domain.UnsafeNonEmptyString(label), Value: value, GroupID: group}
}

func seedItems(t *testing.T, s *Store, rows ...newItem) []int64 {
	t.Helper()
	ids, err := Insert(context.Background(), s, itemTable, newItemCodec, rows...)
	if err != nil {
		t.Fatalf("seed items: %v", err)
	}
	return ids
}
