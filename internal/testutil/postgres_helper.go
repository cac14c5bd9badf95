package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
)

// NewTestPostgresDB creates a PostgresDB backed by sqlmock for testing.
// The connection is closed automatically when the test finishes, and
// unfulfilled expectations fail the test.
func NewTestPostgresDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unfulfilled sqlmock expectations: %v", err)
		}
		conn.Close()
	})

	return database.NewPostgresDBFromConn(conn), mock
}
