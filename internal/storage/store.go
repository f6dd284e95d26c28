// Package storage provides the key-value stores the task list and theme
// preference are persisted to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrClosed = errors.New("store closed")

// Store is a string key-value store. Get reports ok=false for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Open builds the store for driver and prepares it for use.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverFile:
		fs, err := NewFileStore(dsn)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverSQLite:
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			fileDSN, err := SQLiteFileDSN(dsn)
			if err != nil {
				return nil, fmt.Errorf("sqlite dsn: %w", err)
			}
			dsn = fileDSN
		}
		return openSQL(ctx, sqliteDialect, dsn)
	case DriverMySQL:
		return openSQL(ctx, mysqlDialect, dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func openSQL(ctx context.Context, d dialect, dsn string) (Store, error) {
	s, err := newSQLStore(d, dsn)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyMigrations(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate %s: %w", d.driver, err)
	}
	return s, nil
}
