package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tracker/internal/store"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens and pings the database named by e. The caller owns the
// handle and closes it on shutdown.
func OpenDB(ctx context.Context, e Env) (*sql.DB, store.Dialect, error) {
	dialect, err := store.ParseDialect(e.DBDriver)
	if err != nil {
		return nil, "", err
	}

	var db *sql.DB
	switch dialect {
	case store.MySQL:
		db, err = sql.Open("mysql", MySQLDSN(e))
		if err != nil {
			return nil, "", fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	default:
		db, err = sql.Open("sqlite3", SQLiteDSN(e))
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		// One writer at a time avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// MySQLDSN builds the DSN with times parsed into UTC and RowsAffected
// counting matched rather than changed rows.
func MySQLDSN(e Env) string {
	cfg := mysql.NewConfig()
	cfg.User = e.DBUser
	cfg.Passwd = e.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = e.DBHost
	cfg.DBName = e.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func SQLiteDSN(e Env) string {
	return e.DBPath + "?_foreign_keys=on&_busy_timeout=5000"
}
