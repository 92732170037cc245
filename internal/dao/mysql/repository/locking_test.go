package repository_test

import (
	"context"
	"regexp"
	"testing"

	"skillswap_server/internal/dao/mysql/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysqldriver.New(mysqldriver.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestSessionForUpdateEmitsRowLock(t *testing.T) {
	db, mock := newMockDB(t)
	repos := repository.NewRepositories(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `learning_session` WHERE uuid = ?") + ".*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "status"}).AddRow(1, "L1", "PENDING"))

	session, err := repos.Session.FindByUuidForUpdate(context.Background(), "L1")
	require.NoError(t, err)
	require.Equal(t, "PENDING", session.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileForUpdateEmitsRowLock(t *testing.T) {
	db, mock := newMockDB(t)
	repos := repository.NewRepositories(db)

	mock.ExpectQuery("SELECT .* FROM `user_profile` WHERE uuid = .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "review_count"}).AddRow(1, "U1", 2))

	profile, err := repos.Profile.FindByUuidForUpdate(context.Background(), "U1")
	require.NoError(t, err)
	require.Equal(t, 2, profile.ReviewCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
