package tier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	tests := []struct {
		connStr    string
		wantType   DBType
		wantDriver string
		wantDSN    string
	}{
		{"postgresql://u:p@db:5432/shelfmark", DBTypePostgres, driverPostgres, "postgresql://u:p@db:5432/shelfmark"},
		{"postgres://db/shelfmark", DBTypePostgres, driverPostgres, "postgres://db/shelfmark"},
		{"sqlite://", DBTypeSQLite, driverSQLite, sqliteMemory},
		{"sqlite:///data/shelfmark.db", DBTypeSQLite, driverSQLite, "/data/shelfmark.db?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"},
		{"sqlite://:memory:", DBTypeSQLite, driverSQLite, sqliteMemory},
		{":memory:", DBTypeSQLite, driverSQLite, sqliteMemory},
		{" /data/shelfmark.db ", DBTypeSQLite, driverSQLite, "/data/shelfmark.db" + sqlitePragmas},
	}

	for _, tt := range tests {
		t.Run(tt.connStr, func(t *testing.T) {
			dbType, driver, dsn, err := parseConnectionString(tt.connStr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, dbType)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}

	for _, connStr := range []string{"redis://cache", "file:test.db", "/data/shelfmark.sqlite3", ""} {
		_, _, _, err := parseConnectionString(connStr)
		assert.Error(t, err, connStr)
	}
}

func TestRebind(t *testing.T) {
	query := `UPDATE tier_limits SET limit_value = ? WHERE tier = ? AND limit_key = ?`

	assert.Equal(t, query, rebind(DBTypeSQLite, query))
	assert.Equal(t,
		`UPDATE tier_limits SET limit_value = $1 WHERE tier = $2 AND limit_key = $3`,
		rebind(DBTypePostgres, query),
	)
}

type stubResult struct {
	rows int64
	err  error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRequireRowOr(t *testing.T) {
	driverErr := errors.New("driver does not report affected rows")

	tests := []struct {
		name    string
		result  stubResult
		errNone error
		wantErr error
	}{
		{"row touched", stubResult{rows: 1}, ErrAlreadyExists, nil},
		{"no row on insert", stubResult{}, ErrAlreadyExists, ErrAlreadyExists},
		{"no row on update", stubResult{}, ErrNotFound, ErrNotFound},
		{"driver error is not a conflict", stubResult{err: driverErr}, ErrAlreadyExists, driverErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requireRowOr(tt.result, tt.errNone)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := requireRowOr(stubResult{err: driverErr}, ErrAlreadyExists)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
}
