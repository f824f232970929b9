// internal/visit/repository_test.go
//
// Unit-tests for visit repository helpers using sqlmock.
//
// Run: go test ./internal/visit -v

package visit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// The handler sets Timestamp on the record, so the INSERT must bind it;
// otherwise the stored row and the struct can disagree on the visit time.
func TestInsertBindsEveryColumnIncludingTimestamp(t *testing.T) {
	db, mock := newMockDB(t)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	v := &Record{
		SiteID:    7,
		IPAddress: "203.0.113.9",
		Country:   "MX",
		Browser:   "Chrome",
		OS:        "Android",
		Device:    "Phone",
		IsBot:     false,
		UserAgent: "Mozilla/5.0",
		Referer:   "https://google.com",
		Timestamp: at,
	}

	mock.ExpectExec(`(?s)INSERT INTO visit`).
		WithArgs(uint64(7), "203.0.113.9", "MX", "Chrome", "Android", "Phone",
			false, "Mozilla/5.0", "https://google.com", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := Insert(context.Background(), db, v); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
