package tier

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
	"k8s.io/utils/env"
)

type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"

	driverSQLite   = "sqlite3"
	driverPostgres = "pgx"

	sqliteMemory = ":memory:"
)

// sqlitePragmas tune file-backed databases for a single writer with concurrent readers.
const sqlitePragmas = "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"

// parseConnectionString maps a storage URL onto a database type, driver name and DSN.
// postgres:// and postgresql:// URLs go to PostgreSQL; sqlite:// (empty path for memory),
// :memory: and bare .db paths go to SQLite.
func parseConnectionString(connStr string) (DBType, string, string, error) {
	connStr = strings.TrimSpace(connStr)

	switch {
	case strings.HasPrefix(connStr, "postgres://"), strings.HasPrefix(connStr, "postgresql://"):
		return DBTypePostgres, driverPostgres, connStr, nil
	case connStr == sqliteMemory:
		return DBTypeSQLite, driverSQLite, sqliteMemory, nil
	case strings.HasSuffix(connStr, ".db"):
		return DBTypeSQLite, driverSQLite, connStr + sqlitePragmas, nil
	}

	path, found := strings.CutPrefix(connStr, "sqlite://")
	if !found {
		return "", "", "", fmt.Errorf("unrecognized database URL %q: want postgres://, sqlite://, :memory: or a .db path", connStr)
	}
	if path == "" || path == sqliteMemory {
		return DBTypeSQLite, driverSQLite, sqliteMemory, nil
	}
	return DBTypeSQLite, driverSQLite, path + sqlitePragmas, nil
}

// rebind rewrites ? placeholders into $1, $2, ... for PostgreSQL.
func rebind(dbType DBType, query string) string {
	if dbType != DBTypePostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Pool sizing for PostgreSQL, overridable through the environment.
const (
	poolMaxOpenEnv     = "DB_MAX_OPEN_CONNS"
	poolMaxIdleEnv     = "DB_MAX_IDLE_CONNS"
	poolMaxLifetimeEnv = "DB_CONN_MAX_LIFETIME_SECONDS"
)

// configureConnectionPool sizes the pool. SQLite gets one long-lived connection so an
// in-memory database survives and writers never contend for the file lock.
func configureConnectionPool(db *sql.DB, dbType DBType) {
	if dbType != DBTypePostgres {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	maxOpen, _ := env.GetInt(poolMaxOpenEnv, 25)
	maxIdle, _ := env.GetInt(poolMaxIdleEnv, 5)
	lifetime, _ := env.GetInt(poolMaxLifetimeEnv, 300)

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(maxIdle, maxOpen))
	db.SetConnMaxLifetime(time.Duration(lifetime) * time.Second)
}
