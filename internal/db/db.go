package db

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const commonParams = "_busy_timeout=5000&_foreign_keys=on"

// IsMemory reports whether path names an in-memory database. Those cannot be
// shared between handles, so callers read through the writer instead.
func IsMemory(path string) bool {
	return path == MemoryPath || strings.HasPrefix(path, "file::memory:")
}

// InitDB opens the SQLite database at path. Write transactions take the
// database lock up front so concurrent writers queue on the busy timeout
// instead of failing on lock upgrade.
func InitDB(path string) (*sqlx.DB, error) {
	memory := IsMemory(path)
	dsn := dsnFor(path, memory)

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	}

	slog.Info("database connected", "path", path)
	return db, nil
}

// InitReadDB opens a read-only handle on the file database at path. Its
// transactions are deferred, so under WAL a snapshot never holds the write
// lock and never queues a writer. The database must already exist.
func InitReadDB(path string) (*sqlx.DB, error) {
	if IsMemory(path) {
		return nil, fmt.Errorf("in-memory database %q has no separate read handle", path)
	}

	db, err := sqlx.Connect("sqlite3", readerDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to connect read handle to DB: %w", err)
	}

	slog.Info("database read handle connected", "path", path)
	return db, nil
}

func dsnFor(path string, memory bool) string {
	params := commonParams + "&_txlock=immediate"
	if memory {
		return "file::memory:?" + params
	}
	return path + "?_journal_mode=WAL&" + params
}

// readerDSN is a URI so that SQLite itself sees mode=ro.
func readerDSN(path string) string {
	params := "mode=ro&" + commonParams + "&_txlock=deferred"
	if strings.HasPrefix(path, "file:") {
		return path + "?" + params
	}
	return "file:" + path + "?" + params
}
