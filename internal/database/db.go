package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// DB wraps the sql connection with dialect-aware query rewriting. Only the
// identity tables (users, sessions) live in the database; roster and report
// state is volatile and never persisted.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects using the configured database type. SQLite is the default
// and needs nothing but a file path.
func Open(databaseType, path, url string) (*DB, error) {
	var dialect Dialect
	switch strings.ToLower(databaseType) {
	case "postgres", "postgresql":
		dialect = PostgresDialect{url: url}
	case "mysql":
		dialect = MySQLDialect{url: url}
	case "sqlite", "sqlite3", "":
		dialect = SQLiteDialect{path: path}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", databaseType)
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := dialect.Configure(db); err != nil {
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// Query runs a query after dialect placeholder rewriting.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.Dialect.Rewrite(query), args...)
}

// QueryRow runs a single-row query after dialect placeholder rewriting.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.Dialect.Rewrite(query), args...)
}

// Exec runs a statement after dialect placeholder rewriting.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.Dialect.Rewrite(query), args...)
}

// ExecReturningID inserts a row and returns its id, papering over the
// LastInsertId / RETURNING split between drivers.
func (db *DB) ExecReturningID(query string, args ...interface{}) (int64, error) {
	rewritten := db.Dialect.Rewrite(query)

	if db.Dialect.SupportsLastInsertID() {
		result, err := db.DB.Exec(rewritten, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	rewritten = strings.TrimSuffix(strings.TrimSpace(rewritten), ";") + " RETURNING id"
	var id int64
	if err := db.DB.QueryRow(rewritten, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
