package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect abstracts the differences between the supported drivers so
// repository code can be written once with ? placeholders.
type Dialect interface {
	DriverName() string
	DSN() string
	// Rewrite converts ? placeholders when the driver needs numbered ones.
	Rewrite(query string) string
	SupportsLastInsertID() bool
	Configure(db *sql.DB) error
	// MigrationsSubdir names the per-dialect migrations directory.
	MigrationsSubdir() string
}

// SQLiteDialect is the default, file-backed store.
type SQLiteDialect struct {
	path string
}

func (d SQLiteDialect) DriverName() string          { return "sqlite3" }
func (d SQLiteDialect) DSN() string                 { return d.path + "?_foreign_keys=on&_busy_timeout=5000" }
func (d SQLiteDialect) Rewrite(query string) string { return query }
func (d SQLiteDialect) SupportsLastInsertID() bool  { return true }
func (d SQLiteDialect) MigrationsSubdir() string    { return "sqlite" }
func (d SQLiteDialect) Configure(db *sql.DB) error {
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)
	return nil
}

// PostgresDialect connects via a URL and rewrites placeholders to $N.
type PostgresDialect struct {
	url string
}

func (d PostgresDialect) DriverName() string { return "postgres" }
func (d PostgresDialect) DSN() string        { return d.url }
func (d PostgresDialect) Rewrite(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
func (d PostgresDialect) SupportsLastInsertID() bool { return false }
func (d PostgresDialect) MigrationsSubdir() string   { return "postgres" }
func (d PostgresDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(10)
	return nil
}

// MySQLDialect connects via a DSN URL; ? placeholders pass through.
type MySQLDialect struct {
	url string
}

func (d MySQLDialect) DriverName() string          { return "mysql" }
func (d MySQLDialect) DSN() string                 { return d.url }
func (d MySQLDialect) Rewrite(query string) string { return query }
func (d MySQLDialect) SupportsLastInsertID() bool  { return true }
func (d MySQLDialect) MigrationsSubdir() string    { return "mysql" }
func (d MySQLDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(10)
	return nil
}
