package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MakeNoopLogger returns a logger that discards everything.
func MakeNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// NewGormMock opens GORM on the MySQL dialector over a sqlmock connection.
// Queries are matched as regular expressions.
func NewGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	return newGormMock(t, false)
}

// NewGormMockWithPings is NewGormMock with ping expectations enabled.
func NewGormMockWithPings(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	return newGormMock(t, true)
}

func newGormMock(t *testing.T, monitorPings bool) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(monitorPings),
	)
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open error: %v", err)
	}

	return gdb, mock
}
