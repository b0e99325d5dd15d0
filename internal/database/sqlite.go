package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		built, err := buildSQLiteDSN(cfg)
		if err != nil {
			return nil, err
		}
		dsn = built
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	if err := enableForeignKeys(db); err != nil {
		return nil, err
	}

	return db, nil
}

// buildSQLiteDSN assembles a file DSN for the configured path. An empty or
// ":memory:" path yields a process-shared in-memory database; file databases
// run in WAL mode. Extra driver parameters come from cfg.Options, matching
// how the postgres and mysql builders treat them.
func buildSQLiteDSN(cfg Config) (string, error) {
	params := map[string]string{"_foreign_keys": "1"}
	for key, value := range cfg.Options {
		params[key] = value
	}

	path := strings.TrimSpace(cfg.Path)
	base := "file::memory:"
	if path != "" && !strings.EqualFold(path, ":memory:") {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create database directory: %w", err)
			}
		}
		base = "file:" + filepath.ToSlash(path)
		if _, ok := params["_journal_mode"]; !ok {
			params["_journal_mode"] = "WAL"
		}
	} else {
		params["cache"] = "shared"
	}

	pairs := make([]string, 0, len(params))
	for _, key := range sortedKeys(params) {
		pairs = append(pairs, key+"="+params[key])
	}
	return base + "?" + strings.Join(pairs, "&"), nil
}

func enableForeignKeys(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil && err != sql.ErrConnDone {
		return err
	}
	return nil
}
