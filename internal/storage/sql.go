package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type dialect struct {
	driver  string
	pragmas string
	schema  string
	upsert  string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	// Reasonable pragmas for an app server
	pragmas: `
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`,
	schema: `
CREATE TABLE IF NOT EXISTS kv_entries (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
	`,
	upsert: `
		INSERT INTO kv_entries (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
}

var mysqlDialect = dialect{
	driver: "mysql",
	schema: `
CREATE TABLE IF NOT EXISTS kv_entries (
	name VARCHAR(191) NOT NULL PRIMARY KEY,
	value LONGTEXT NOT NULL,
	updated_at VARCHAR(40) NOT NULL
) CHARACTER SET utf8mb4
	`,
	upsert: `
		INSERT INTO kv_entries (name, value, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)
	`,
}

// SQLStore keeps entries in a kv_entries table on sqlite or mysql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func NewSQLiteStore(dsn string) (*SQLStore, error) {
	return newSQLStore(sqliteDialect, dsn)
}

func NewMySQLStore(dsn string) (*SQLStore, error) {
	return newSQLStore(mysqlDialect, dsn)
}

func newSQLStore(d dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if d.pragmas != "" {
		if _, err := db.Exec(d.pragmas); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// ApplyMigrations ensures schema exists
func (s *SQLStore) ApplyMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.schema)
	return err
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE name = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, now)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE name = ?`, key)
	return err
}

// Helper to build DSN like: file:/absolute/path?_pragma=busy_timeout(5000)
func SQLiteFileDSN(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)", nil
}
