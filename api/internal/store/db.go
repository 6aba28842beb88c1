package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists credentials (
	name       text primary key,
	value      text not null,
	updated_at timestamp not null default CURRENT_TIMESTAMP
)`

// Open connects to Postgres when dsn is set, otherwise to a SQLite file at path.
// The schema is created on first use.
func Open(ctx context.Context, dsn, path string) (*sql.DB, string, error) {
	driver, source := "pgx", strings.TrimSpace(dsn)
	if source == "" {
		driver = "sqlite"
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, "", fmt.Errorf("store: mkdir: %w", err)
		}
		source = path
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", fmt.Errorf("sql.Open: %w", err)
	}
	if driver == "sqlite" {
		// one writer; the file is local to this process
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(time.Hour)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := db.ExecContext(pctx, schema); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("store: migrate: %w", err)
	}
	return db, Summary(driver, source), nil
}

// Summary describes a connection without leaking the password.
func Summary(driver, source string) string {
	if driver != "pgx" {
		return driver + ":" + source
	}
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return "pgx:<dsn>"
	}
	return fmt.Sprintf("pgx:%s@%s%s", u.User.Username(), u.Host, u.Path)
}
